package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/ZetoOfficial/engagement-analytics/internal/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/sirupsen/logrus"
)

type Neo4jStorage struct {
	Driver   neo4j.DriverWithContext
	Database string
}

func NewNeo4jStorage(uri, username, password, database string) (*Neo4jStorage, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("connect to driver: %w", err)
	}
	return &Neo4jStorage{Driver: driver, Database: database}, nil
}

func (s *Neo4jStorage) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

func (s *Neo4jStorage) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.Database})
}

func closeSession(ctx context.Context, session neo4j.SessionWithContext) {
	if err := session.Close(ctx); err != nil {
		logrus.Warnf("close session: %v", err)
	}
}

// LoadSnapshot reads every relation inside one read transaction.
func (s *Neo4jStorage) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer closeSession(ctx, session)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		relations := make(map[string][]map[string]any, len(snapshotQueries))
		for relation, query := range snapshotQueries {
			rows, err := collect(ctx, tx, query)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", relation, err)
			}
			relations[relation] = rows
		}
		return relations, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snapshot, err := decodeSnapshot(out.(map[string][]map[string]any))
	if err != nil {
		return nil, err
	}
	logrus.WithFields(toFields(snapshot.Rows())).Info("snapshot loaded from neo4j")
	return snapshot, nil
}

func collect(ctx context.Context, tx neo4j.ManagedTransaction, query string) ([]map[string]any, error) {
	result, err := tx.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for result.Next(ctx) {
		record := result.Record()
		recordMap := make(map[string]any, len(record.Keys))
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			recordMap[key] = value
		}
		results = append(results, recordMap)
	}
	if err = result.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func decodeSnapshot(rel map[string][]map[string]any) (*models.Snapshot, error) {
	s := &models.Snapshot{}
	d := decoder{}
	for _, r := range rel["users"] {
		d.relation = "users"
		s.Users = append(s.Users, models.User{
			ID:        d.intVal(r, "id"),
			Username:  d.stringVal(r, "username"),
			CreatedAt: d.timeVal(r, "created_at"),
		})
	}
	for _, r := range rel["photos"] {
		d.relation = "photos"
		s.Photos = append(s.Photos, models.Photo{
			ID:        d.intVal(r, "id"),
			UserID:    d.intVal(r, "user_id"),
			ImageURL:  d.stringVal(r, "image_url"),
			CreatedAt: d.timeVal(r, "created_at"),
		})
	}
	for _, r := range rel["likes"] {
		d.relation = "likes"
		s.Likes = append(s.Likes, models.Like{
			UserID:    d.intVal(r, "user_id"),
			PhotoID:   d.intVal(r, "photo_id"),
			CreatedAt: d.timeVal(r, "created_at"),
		})
	}
	for _, r := range rel["comments"] {
		d.relation = "comments"
		s.Comments = append(s.Comments, models.Comment{
			ID:        d.intVal(r, "id"),
			Text:      d.stringVal(r, "text"),
			UserID:    d.intVal(r, "user_id"),
			PhotoID:   d.intVal(r, "photo_id"),
			CreatedAt: d.timeVal(r, "created_at"),
		})
	}
	for _, r := range rel["follows"] {
		d.relation = "follows"
		s.Follows = append(s.Follows, models.Follow{
			FollowerID: d.intVal(r, "follower_id"),
			FolloweeID: d.intVal(r, "followee_id"),
			CreatedAt:  d.timeVal(r, "created_at"),
		})
	}
	for _, r := range rel["tags"] {
		d.relation = "tags"
		s.Tags = append(s.Tags, models.Tag{
			ID:   d.intVal(r, "id"),
			Name: d.stringVal(r, "name"),
		})
	}
	for _, r := range rel["photo_tags"] {
		d.relation = "photo_tags"
		s.PhotoTags = append(s.PhotoTags, models.PhotoTag{
			PhotoID: d.intVal(r, "photo_id"),
			TagID:   d.intVal(r, "tag_id"),
		})
	}
	if d.err != nil {
		return nil, d.err
	}
	return s, nil
}

// decoder converts driver values and keeps the first type mismatch. NULL
// decodes to the zero value and is left to the validation pass.
type decoder struct {
	relation string
	err      error
}

func (d *decoder) fail(column string, v any) {
	if d.err == nil {
		d.err = &analytics.StructuralError{
			Relation: d.relation,
			Column:   column,
			Reason:   fmt.Sprintf("unexpected value type %T", v),
		}
	}
}

func (d *decoder) intVal(r map[string]any, column string) int {
	switch v := r[column].(type) {
	case nil:
		return 0
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		d.fail(column, v)
		return 0
	}
}

func (d *decoder) stringVal(r map[string]any, column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		d.fail(column, v)
		return ""
	}
}

func (d *decoder) timeVal(r map[string]any, column string) time.Time {
	switch v := r[column].(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return v.UTC()
	case dbtype.LocalDateTime:
		return v.Time()
	case dbtype.Date:
		return v.Time()
	case string:
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			d.fail(column, v)
		}
		return ts
	default:
		d.fail(column, v)
		return time.Time{}
	}
}

// Seed writes a snapshot into the graph. Nodes are merged by id; edges are
// created as given, so seeding twice duplicates fact edges.
func (s *Neo4jStorage) Seed(ctx context.Context, data *models.Snapshot) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer closeSession(ctx, session)

	batches := seedRows(data)
	for _, q := range seedQueries {
		rows := batches[q.relation]
		if len(rows) == 0 {
			continue
		}
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, q.query, map[string]any{"rows": rows})
			return nil, err
		})
		if err != nil {
			logrus.Errorf("save %s: %v", q.relation, err)
			return fmt.Errorf("save %s: %w", q.relation, err)
		}
		logrus.WithFields(logrus.Fields{"relation": q.relation, "rows": len(rows)}).Debug("relation seeded")
	}
	return nil
}

func seedRows(data *models.Snapshot) map[string][]map[string]any {
	out := make(map[string][]map[string]any)
	for _, u := range data.Users {
		out["users"] = append(out["users"], map[string]any{
			"id": u.ID, "username": u.Username, "created_at": u.CreatedAt,
		})
	}
	for _, p := range data.Photos {
		out["photos"] = append(out["photos"], map[string]any{
			"id": p.ID, "user_id": p.UserID, "image_url": p.ImageURL, "created_at": p.CreatedAt,
		})
	}
	for _, l := range data.Likes {
		out["likes"] = append(out["likes"], map[string]any{
			"user_id": l.UserID, "photo_id": l.PhotoID, "created_at": l.CreatedAt,
		})
	}
	for _, c := range data.Comments {
		out["comments"] = append(out["comments"], map[string]any{
			"id": c.ID, "text": c.Text, "user_id": c.UserID, "photo_id": c.PhotoID, "created_at": c.CreatedAt,
		})
	}
	for _, f := range data.Follows {
		out["follows"] = append(out["follows"], map[string]any{
			"follower_id": f.FollowerID, "followee_id": f.FolloweeID, "created_at": f.CreatedAt,
		})
	}
	for _, t := range data.Tags {
		out["tags"] = append(out["tags"], map[string]any{"id": t.ID, "name": t.Name})
	}
	for _, pt := range data.PhotoTags {
		out["photo_tags"] = append(out["photo_tags"], map[string]any{
			"photo_id": pt.PhotoID, "tag_id": pt.TagID,
		})
	}
	return out
}

func (s *Neo4jStorage) Ping(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer closeSession(ctx, session)

	result, err := session.Run(ctx, "RETURN 1", nil)
	if err != nil {
		return fmt.Errorf("ping query failed: %w", err)
	}

	if result.Next(ctx) {
		return nil
	}
	if err = result.Err(); err != nil {
		return fmt.Errorf("ping query error: %w", err)
	}
	return fmt.Errorf("ping query did not return any results")
}

func toFields(rows map[string]int) logrus.Fields {
	fields := make(logrus.Fields, len(rows))
	for k, v := range rows {
		fields[k] = v
	}
	return fields
}
