package analytics

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Metric names a per-user count.
type Metric string

const (
	PostsCreated     Metric = "posts_created"
	LikesGiven       Metric = "likes_given"
	LikesReceived    Metric = "likes_received"
	CommentsGiven    Metric = "comments_given"
	CommentsReceived Metric = "comments_received"
	TagsReceived     Metric = "tags_received"
	FollowerCount    Metric = "follower_count"
	FollowingCount   Metric = "following_count"
)

// Counts maps an entity id to a non-negative count.
type Counts map[int]int

// pass is one grouping pass over a single fact relation.
type pass func(f *Facts) Counts

var passes = map[Metric]pass{
	PostsCreated:     countPostsCreated,
	LikesGiven:       countLikesGiven,
	LikesReceived:    countLikesReceived,
	CommentsGiven:    countCommentsGiven,
	CommentsReceived: countCommentsReceived,
	TagsReceived:     countTagsReceived,
	FollowerCount:    countFollowers,
	FollowingCount:   countFollowing,
}

func countPostsCreated(f *Facts) Counts {
	c := make(Counts)
	for _, p := range f.Photos {
		c[p.UserID]++
	}
	return c
}

func countLikesGiven(f *Facts) Counts {
	c := make(Counts)
	for _, l := range f.Likes {
		c[l.UserID]++
	}
	return c
}

func countLikesReceived(f *Facts) Counts {
	c := make(Counts)
	for _, l := range f.Likes {
		if owner, ok := f.OwnerOf(l.PhotoID); ok {
			c[owner]++
		}
	}
	return c
}

func countCommentsGiven(f *Facts) Counts {
	c := make(Counts)
	for _, cm := range f.Comments {
		c[cm.UserID]++
	}
	return c
}

func countCommentsReceived(f *Facts) Counts {
	c := make(Counts)
	for _, cm := range f.Comments {
		if owner, ok := f.OwnerOf(cm.PhotoID); ok {
			c[owner]++
		}
	}
	return c
}

func countTagsReceived(f *Facts) Counts {
	c := make(Counts)
	for _, pt := range f.PhotoTags {
		if owner, ok := f.OwnerOf(pt.PhotoID); ok {
			c[owner]++
		}
	}
	return c
}

func countFollowers(f *Facts) Counts {
	c := make(Counts)
	for _, fl := range f.Follows {
		c[fl.FolloweeID]++
	}
	return c
}

func countFollowing(f *Facts) Counts {
	c := make(Counts)
	for _, fl := range f.Follows {
		c[fl.FollowerID]++
	}
	return c
}

// Table is the keyed merge of several single-metric mappings. Every id of
// the key set is present in every metric column, absent ones as zero.
type Table struct {
	ids     []int
	columns map[Metric]Counts
}

// Merge left-merges the single-metric mappings onto ids. Counts for ids
// outside the key set are dropped.
func Merge(ids []int, columns map[Metric]Counts) *Table {
	t := &Table{
		ids:     append([]int(nil), ids...),
		columns: make(map[Metric]Counts, len(columns)),
	}
	sort.Ints(t.ids)
	for m, src := range columns {
		col := make(Counts, len(t.ids))
		for _, id := range t.ids {
			col[id] = src[id]
		}
		t.columns[m] = col
	}
	return t
}

// IDs returns the key set in ascending order.
func (t *Table) IDs() []int {
	return t.ids
}

// Get returns the value of metric m for id, 0 when absent.
func (t *Table) Get(m Metric, id int) int {
	return t.columns[m][id]
}

// Column returns the full mapping of one metric.
func (t *Table) Column(m Metric) Counts {
	return t.columns[m]
}

// Has reports whether the table was built with metric m.
func (t *Table) Has(m Metric) bool {
	_, ok := t.columns[m]
	return ok
}

// Sum returns the total of a metric over the key set.
func (t *Table) Sum(m Metric) int {
	total := 0
	for _, v := range t.columns[m] {
		total += v
	}
	return total
}

// Aggregator runs the per-metric grouping passes.
type Aggregator struct {
	// Parallel runs each pass in its own goroutine. Results are identical
	// either way.
	Parallel bool
}

// NewAggregator returns an aggregator running passes concurrently.
func NewAggregator() *Aggregator {
	return &Aggregator{Parallel: true}
}

// Compute aggregates the requested metrics per user and merges them into a
// table keyed by every user id in f.
func (a *Aggregator) Compute(ctx context.Context, f *Facts, metrics ...Metric) (*Table, error) {
	for _, m := range metrics {
		if _, ok := passes[m]; !ok {
			return nil, fmt.Errorf("aggregate %s: %w", m, ErrUnknownMetric)
		}
	}

	columns := make(map[Metric]Counts, len(metrics))
	if !a.Parallel {
		for _, m := range metrics {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			columns[m] = passes[m](f)
		}
		return Merge(f.UserIDs(), columns), nil
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	for _, m := range metrics {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			counts := passes[m](f)
			mu.Lock()
			columns[m] = counts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate metrics: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"metrics": len(metrics),
		"users":   len(f.UserIDs()),
	}).Debug("metrics aggregated")
	return Merge(f.UserIDs(), columns), nil
}

// Tally counts occurrences per key over arbitrary rows. It is the building
// block for non-user entities such as tags.
func Tally[T any](rows []T, key func(T) (int, bool)) Counts {
	c := make(Counts)
	for _, r := range rows {
		if k, ok := key(r); ok {
			c[k]++
		}
	}
	return c
}
