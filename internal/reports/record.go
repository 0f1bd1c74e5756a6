package reports

import (
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/sirupsen/logrus"
)

// Column is a named value of a record.
type Column struct {
	Name  string
	Value any
}

// Record is one output row: entity key columns, metric columns, an optional
// segment label and an optional rank (0 when the report is unranked).
type Record struct {
	Key     []Column
	Metrics []Column
	Segment string
	Rank    int
}

// Get looks a column up by name among keys and metrics.
func (r Record) Get(name string) (any, bool) {
	for _, c := range r.Key {
		if c.Name == name {
			return c.Value, true
		}
	}
	for _, c := range r.Metrics {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Int returns an integer column, 0 when absent.
func (r Record) Int(name string) int {
	v, _ := r.Get(name)
	i, _ := v.(int)
	return i
}

// Float returns a numeric column as float64, 0 when absent.
func (r Record) Float(name string) float64 {
	v, _ := r.Get(name)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// Text returns a string column.
func (r Record) Text(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

// Fields flattens the record for structured logging.
func (r Record) Fields() logrus.Fields {
	fields := make(logrus.Fields, len(r.Key)+len(r.Metrics)+2)
	for _, c := range r.Key {
		fields[c.Name] = c.Value
	}
	for _, c := range r.Metrics {
		fields[c.Name] = c.Value
	}
	if r.Segment != "" {
		fields["segment"] = r.Segment
	}
	if r.Rank > 0 {
		fields["rank"] = r.Rank
	}
	return fields
}

// Result is the output of one report run.
type Result struct {
	RunID       string
	Report      string
	Reference   time.Time
	Options     Options
	Records     []Record
	Diagnostics *analytics.Diagnostics
}
