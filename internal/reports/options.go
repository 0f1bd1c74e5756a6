package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
)

const (
	DefaultLimit  = 10
	DefaultWindow = 30 * 24 * time.Hour
)

var (
	ErrUnknownReport  = errors.New("unknown report")
	ErrInvalidOptions = errors.New("invalid report options")
)

// Options configure a single report run. Zero values select the report's
// defaults.
type Options struct {
	// Limit is the top-N cutoff of ranked reports.
	Limit int
	// Window is the trailing duration of windowed reports.
	Window time.Duration
	// ThresholdSet names the segmentation thresholds.
	ThresholdSet string
	// Weights override the activity score weights.
	Weights *analytics.Weights
	// Strict aborts on dangling foreign keys instead of reporting them.
	Strict bool
}

// resolve applies the defaults of report r and validates the result.
func (o Options) resolve(r *Report) (Options, error) {
	if o.Limit < 0 {
		return o, fmt.Errorf("%w: limit %d", ErrInvalidOptions, o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.Window < 0 {
		return o, fmt.Errorf("%w: window %s", ErrInvalidOptions, o.Window)
	}
	if o.Window == 0 {
		o.Window = DefaultWindow
	}
	if o.ThresholdSet == "" {
		o.ThresholdSet = r.Thresholds
	}
	if _, err := analytics.LookupThresholds(o.ThresholdSet); err != nil {
		return o, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if o.Weights == nil {
		w := r.Weights
		o.Weights = &w
	}
	if err := o.Weights.Validate(); err != nil {
		return o, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return o, nil
}
