// Package reports holds the catalogue of named analytic reports and the
// engine that runs them over one snapshot of the entity store.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/ZetoOfficial/engagement-analytics/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Source provides a consistent snapshot of the entity store.
type Source interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
}

type Engine struct {
	source     Source
	aggregator *analytics.Aggregator

	// Clock supplies the reference instant, read once per run.
	Clock func() time.Time
}

func NewEngine(source Source) *Engine {
	return &Engine{
		source:     source,
		aggregator: analytics.NewAggregator(),
		Clock:      time.Now,
	}
}

// Run executes one report. Any failure abandons the whole run and no
// partial result is returned.
func (e *Engine) Run(ctx context.Context, name string, opts Options) (*Result, error) {
	report, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	opts, err := opts.resolve(report)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", name, err)
	}
	thresholds, err := analytics.LookupThresholds(opts.ThresholdSet)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	reference := e.Clock()
	log := logrus.WithFields(logrus.Fields{"report": name, "run_id": runID})
	started := time.Now()

	snapshot, err := e.source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	diagnostics, err := analytics.Validator{Strict: opts.Strict}.Validate(snapshot)
	if err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}
	counts := diagnostics.Counts()
	for _, kind := range diagnostics.Kinds() {
		log.WithFields(logrus.Fields{"finding": kind, "count": counts[kind]}).Warn("data quality finding")
	}

	window := analytics.Window{Reference: reference, Duration: opts.Window}
	facts := analytics.NewFacts(snapshot)
	if report.Windowed {
		facts = facts.Window(window)
	}

	rc := &runContext{
		ctx:        ctx,
		facts:      facts,
		opts:       opts,
		thresholds: thresholds,
		aggregator: e.aggregator,
		names:      usernames(snapshot.Users),
	}
	records, err := report.run(rc)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("report %s: %w", name, err)
	}
	if report.Ranked && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	log.WithFields(logrus.Fields{
		"records":  len(records),
		"findings": len(diagnostics.Findings),
		"elapsed":  time.Since(started).String(),
	}).Info("report finished")

	return &Result{
		RunID:       runID,
		Report:      name,
		Reference:   reference,
		Options:     opts,
		Records:     records,
		Diagnostics: diagnostics,
	}, nil
}

func usernames(users []models.User) map[int]string {
	names := make(map[int]string, len(users))
	for _, u := range users {
		if _, ok := names[u.ID]; !ok {
			names[u.ID] = u.Username
		}
	}
	return names
}
