package analytics

import (
	"fmt"
	"math"
	"sort"
)

// Bucket is one segment of a threshold set. Min and Max are inclusive.
type Bucket struct {
	Label string
	Min   int
	Max   int
}

// Contains reports whether v falls in the bucket.
func (b Bucket) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// Segmentation is an ordered list of buckets evaluated first match wins.
type Segmentation struct {
	Metric  string
	Buckets []Bucket
}

// Classify returns the label of the first bucket containing v.
func (s Segmentation) Classify(v int) string {
	for _, b := range s.Buckets {
		if b.Contains(v) {
			return b.Label
		}
	}
	return ""
}

// Validate checks that the buckets start at 0, do not overlap and leave no
// gap up to math.MaxInt.
func (s Segmentation) Validate() error {
	if len(s.Buckets) == 0 {
		return fmt.Errorf("segmentation %s: no buckets", s.Metric)
	}
	next := 0
	for i, b := range s.Buckets {
		if b.Min != next {
			return fmt.Errorf("segmentation %s: bucket %q starts at %d, want %d", s.Metric, b.Label, b.Min, next)
		}
		if b.Max < b.Min {
			return fmt.Errorf("segmentation %s: bucket %q is empty", s.Metric, b.Label)
		}
		if b.Max == math.MaxInt {
			if i != len(s.Buckets)-1 {
				return fmt.Errorf("segmentation %s: bucket %q is unbounded but not last", s.Metric, b.Label)
			}
			return nil
		}
		next = b.Max + 1
	}
	return fmt.Errorf("segmentation %s: values above %d are not covered", s.Metric, next-1)
}

// ThresholdSet groups the segmentations used by a report.
type ThresholdSet struct {
	Name       string
	Activity   Segmentation
	Engagement Segmentation
}

const (
	StandardThresholds = "standard"
	LoyaltyThresholds  = "loyalty"
)

var activitySegments = Segmentation{
	Metric: "activity_score",
	Buckets: []Bucket{
		{Label: "Inactive", Min: 0, Max: 0},
		{Label: "Low Activity", Min: 1, Max: 5},
		{Label: "Moderate Activity", Min: 6, Max: 20},
		{Label: "High Activity", Min: 21, Max: math.MaxInt},
	},
}

var thresholdSets = map[string]ThresholdSet{
	StandardThresholds: {
		Name:     StandardThresholds,
		Activity: activitySegments,
		Engagement: Segmentation{
			Metric: "engagement_score",
			Buckets: []Bucket{
				{Label: "No Engagement", Min: 0, Max: 0},
				{Label: "Low Engagement", Min: 1, Max: 20},
				{Label: "Moderate Engagement", Min: 21, Max: 100},
				{Label: "High Engagement", Min: 101, Max: math.MaxInt},
			},
		},
	},
	LoyaltyThresholds: {
		Name:     LoyaltyThresholds,
		Activity: activitySegments,
		Engagement: Segmentation{
			Metric: "engagement_score",
			Buckets: []Bucket{
				{Label: "No Engagement", Min: 0, Max: 0},
				{Label: "Low Engagement", Min: 1, Max: 49},
				{Label: "Medium Engagement", Min: 50, Max: 200},
				{Label: "Highly Engaged", Min: 201, Max: math.MaxInt},
			},
		},
	},
}

// LookupThresholds returns a named threshold set.
func LookupThresholds(name string) (ThresholdSet, error) {
	ts, ok := thresholdSets[name]
	if !ok {
		return ThresholdSet{}, fmt.Errorf("%w: %q", ErrUnknownThresholdSet, name)
	}
	return ts, nil
}

// ThresholdSetNames lists the registered set names in lexical order.
func ThresholdSetNames() []string {
	names := make([]string, 0, len(thresholdSets))
	for n := range thresholdSets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
