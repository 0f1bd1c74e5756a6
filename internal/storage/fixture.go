package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/ZetoOfficial/engagement-analytics/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Relations every fixture must declare, possibly as an empty list.
var Relations = []string{"users", "photos", "likes", "comments", "follows", "tags", "photo_tags"}

// MemoryStorage serves a snapshot held in memory.
type MemoryStorage struct {
	snapshot *models.Snapshot
}

func NewMemoryStorage(snapshot *models.Snapshot) *MemoryStorage {
	return &MemoryStorage{snapshot: snapshot}
}

func (s *MemoryStorage) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.snapshot, nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStorage) Close(context.Context) error {
	return nil
}

// NewFixtureStorage reads a YAML fixture file.
func NewFixtureStorage(path string) (*MemoryStorage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Warnf("close fixture: %v", err)
		}
	}()

	snapshot, err := DecodeFixture(f)
	if err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	logrus.WithFields(toFields(snapshot.Rows())).Infof("fixture %s loaded", path)
	return NewMemoryStorage(snapshot), nil
}

// DecodeFixture parses a YAML document holding every relation. A relation
// key that is absent is a structural fault.
func DecodeFixture(r io.Reader) (*models.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	for _, relation := range Relations {
		if _, ok := keys[relation]; !ok {
			return nil, &analytics.StructuralError{Relation: relation, Reason: "relation missing from fixture"}
		}
	}

	var snapshot models.Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// EncodeFixture writes a snapshot in the fixture format.
func EncodeFixture(w io.Writer, snapshot *models.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshot); err != nil {
		return err
	}
	return enc.Close()
}
