package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	var serr *analytics.StructuralError

	err := classify("likes", &pgconn.PgError{Code: undefinedTable, Message: `relation "likes" does not exist`})
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "likes", serr.Relation)

	err = classify("photos", &pgconn.PgError{Code: undefinedColumn, Message: `column "image_url" does not exist`})
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "photos", serr.Relation)
	assert.Contains(t, err.Error(), "image_url")

	plain := errors.New("conn reset")
	err = classify("users", plain)
	assert.False(t, errors.As(err, &serr))
	assert.ErrorIs(t, err, plain)
}

func TestScanNullable(t *testing.T) {
	m := pgtype.NewMap()

	var id *int
	require.NoError(t, m.Scan(pgtype.Int4OID, pgtype.TextFormatCode, nil, &id))
	assert.Equal(t, 0, orZero(id))
	require.NoError(t, m.Scan(pgtype.Int4OID, pgtype.TextFormatCode, []byte("42"), &id))
	assert.Equal(t, 42, orZero(id))

	var createdAt *time.Time
	require.NoError(t, m.Scan(pgtype.TimestamptzOID, pgtype.TextFormatCode, nil, &createdAt))
	assert.True(t, orZero(createdAt).IsZero())
	require.NoError(t, m.Scan(pgtype.TimestamptzOID, pgtype.TextFormatCode, []byte("2024-03-01 10:00:00+00"), &createdAt))
	assert.True(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Equal(orZero(createdAt)))

	var name *string
	require.NoError(t, m.Scan(pgtype.TextOID, pgtype.TextFormatCode, nil, &name))
	assert.Equal(t, "", orZero(name))
}
