package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/ZetoOfficial/engagement-analytics/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// PostgreSQL error codes that point at a missing relation or column.
const (
	undefinedTable  = "42P01"
	undefinedColumn = "42703"
)

type PostgresStorage struct {
	Pool *pgxpool.Pool
}

// NewPostgresStorage opens a connection pool.
func NewPostgresStorage(ctx context.Context, connString string) (*PostgresStorage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &PostgresStorage{Pool: pool}, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	if err := s.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close(_ context.Context) error {
	s.Pool.Close()
	return nil
}

// LoadSnapshot reads every relation inside one read-only repeatable-read
// transaction.
func (s *PostgresStorage) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logrus.Warnf("rollback snapshot: %v", err)
		}
	}()

	snapshot := &models.Snapshot{}

	err = scanAll(ctx, tx, "users",
		`SELECT id, username, created_at FROM users ORDER BY id`,
		func(rows pgx.Rows) error {
			var (
				id        *int
				username  *string
				createdAt *time.Time
			)
			if err := rows.Scan(&id, &username, &createdAt); err != nil {
				return err
			}
			snapshot.Users = append(snapshot.Users, models.User{
				ID:        orZero(id),
				Username:  orZero(username),
				CreatedAt: orZero(createdAt),
			})
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = scanAll(ctx, tx, "photos",
		`SELECT id, user_id, COALESCE(image_url, ''), created_at FROM photos ORDER BY id`,
		func(rows pgx.Rows) error {
			var (
				id, userID *int
				imageURL   string
				createdAt  *time.Time
			)
			if err := rows.Scan(&id, &userID, &imageURL, &createdAt); err != nil {
				return err
			}
			snapshot.Photos = append(snapshot.Photos, models.Photo{
				ID:        orZero(id),
				UserID:    orZero(userID),
				ImageURL:  imageURL,
				CreatedAt: orZero(createdAt),
			})
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = scanAll(ctx, tx, "likes",
		`SELECT user_id, photo_id, created_at FROM likes`,
		func(rows pgx.Rows) error {
			var (
				userID, photoID *int
				createdAt       *time.Time
			)
			if err := rows.Scan(&userID, &photoID, &createdAt); err != nil {
				return err
			}
			snapshot.Likes = append(snapshot.Likes, models.Like{
				UserID:    orZero(userID),
				PhotoID:   orZero(photoID),
				CreatedAt: orZero(createdAt),
			})
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = scanAll(ctx, tx, "comments",
		`SELECT id, COALESCE(comment_text, ''), user_id, photo_id, created_at FROM comments`,
		func(rows pgx.Rows) error {
			var (
				id, userID, photoID *int
				text                string
				createdAt           *time.Time
			)
			if err := rows.Scan(&id, &text, &userID, &photoID, &createdAt); err != nil {
				return err
			}
			snapshot.Comments = append(snapshot.Comments, models.Comment{
				ID:        orZero(id),
				Text:      text,
				UserID:    orZero(userID),
				PhotoID:   orZero(photoID),
				CreatedAt: orZero(createdAt),
			})
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = scanAll(ctx, tx, "follows",
		`SELECT follower_id, followee_id, created_at FROM follows`,
		func(rows pgx.Rows) error {
			var (
				followerID, followeeID *int
				createdAt              *time.Time
			)
			if err := rows.Scan(&followerID, &followeeID, &createdAt); err != nil {
				return err
			}
			snapshot.Follows = append(snapshot.Follows, models.Follow{
				FollowerID: orZero(followerID),
				FolloweeID: orZero(followeeID),
				CreatedAt:  orZero(createdAt),
			})
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = scanAll(ctx, tx, "tags",
		`SELECT id, COALESCE(tag_name, '') FROM tags ORDER BY id`,
		func(rows pgx.Rows) error {
			var (
				id   *int
				name string
			)
			if err := rows.Scan(&id, &name); err != nil {
				return err
			}
			snapshot.Tags = append(snapshot.Tags, models.Tag{ID: orZero(id), Name: name})
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = scanAll(ctx, tx, "photo_tags",
		`SELECT photo_id, tag_id FROM photo_tags`,
		func(rows pgx.Rows) error {
			var photoID, tagID *int
			if err := rows.Scan(&photoID, &tagID); err != nil {
				return err
			}
			snapshot.PhotoTags = append(snapshot.PhotoTags, models.PhotoTag{
				PhotoID: orZero(photoID),
				TagID:   orZero(tagID),
			})
			return nil
		})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	logrus.WithFields(toFields(snapshot.Rows())).Info("snapshot loaded from postgres")
	return snapshot, nil
}

// orZero maps a NULL column to the zero value, the same way the graph
// decoder does. The validator reports the row instead of the scan failing.
func orZero[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func scanAll(ctx context.Context, tx pgx.Tx, relation, query string, scan func(pgx.Rows) error) error {
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return classify(relation, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return classify(relation, err)
		}
	}
	if err := rows.Err(); err != nil {
		return classify(relation, err)
	}
	return nil
}

// classify turns a missing table or column into a StructuralError.
func classify(relation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case undefinedTable:
			return &analytics.StructuralError{Relation: relation, Reason: "relation does not exist", Err: err}
		case undefinedColumn:
			return &analytics.StructuralError{Relation: relation, Column: pgErr.ColumnName, Reason: pgErr.Message, Err: err}
		}
	}
	return fmt.Errorf("read %s: %w", relation, err)
}
