// Package analytics computes engagement, activity and influence metrics over a
// snapshot of the social graph.
//
// Every metric is produced by its own grouping pass keyed by owner id and the
// single-metric mappings are merged by key afterwards. Fact relations are never
// joined with each other, so a photo with 3 likes and 2 comments contributes
// exactly 3 likes and 2 comments to its owner.
package analytics

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnknownThresholdSet is returned when a threshold set name is not registered.
	ErrUnknownThresholdSet = errors.New("unknown threshold set")

	// ErrInvalidWeights is returned for negative activity weights.
	ErrInvalidWeights = errors.New("invalid activity weights")

	// ErrUnknownMetric is returned when an aggregation pass is requested for a
	// metric the aggregator does not know.
	ErrUnknownMetric = errors.New("unknown metric")
)

// StructuralError reports a fault in the shape of the input: a relation or a
// column that is absent, or a foreign key pointing nowhere in strict mode.
// It aborts the whole report.
type StructuralError struct {
	Relation string
	Column   string
	Reason   string
	Err      error
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("structural fault in %s", e.Relation)
	if e.Column != "" {
		msg += "." + e.Column
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
