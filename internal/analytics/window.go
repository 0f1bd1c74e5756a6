package analytics

import "time"

// Window is a trailing time range ending at Reference.
//
// Reference is captured once per report and passed to every filtering call;
// nothing in this package reads the wall clock.
type Window struct {
	Reference time.Time
	Duration  time.Duration
}

// Start is the inclusive lower bound of the window.
func (w Window) Start() time.Time {
	return w.Reference.Add(-w.Duration)
}

// Contains reports whether ts >= Reference - Duration.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start())
}

// Since keeps the rows whose timestamp lies inside the window. A zero
// Duration disables filtering.
func Since[T any](rows []T, w Window, at func(T) time.Time) []T {
	if w.Duration <= 0 {
		return rows
	}
	start := w.Start()
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if !at(r).Before(start) {
			out = append(out, r)
		}
	}
	return out
}
