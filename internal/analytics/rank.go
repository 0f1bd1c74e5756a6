package analytics

import (
	"cmp"
	"sort"
)

// Discipline selects how tied entities share rank values.
type Discipline int

const (
	// Dense gives the next distinct key the immediately following rank.
	Dense Discipline = iota
	// Gapped gives the next distinct key 1 + the number of entities ranked so far.
	Gapped
)

func (d Discipline) String() string {
	if d == Gapped {
		return "gapped"
	}
	return "dense"
}

// SortKey is one column of a ranking key. Compare orders two items
// ascending; Descending flips it.
type SortKey[T any] struct {
	Name       string
	Compare    func(a, b T) int
	Descending bool
}

func (k SortKey[T]) less(a, b T) (less, equal bool) {
	c := k.Compare(a, b)
	if k.Descending {
		c = -c
	}
	return c < 0, c == 0
}

// Desc builds a descending sort key over an ordered value.
func Desc[T any, V cmp.Ordered](name string, v func(T) V) SortKey[T] {
	return SortKey[T]{Name: name, Compare: func(a, b T) int { return cmp.Compare(v(a), v(b)) }, Descending: true}
}

// Asc builds an ascending sort key over an ordered value.
func Asc[T any, V cmp.Ordered](name string, v func(T) V) SortKey[T] {
	return SortKey[T]{Name: name, Compare: func(a, b T) int { return cmp.Compare(v(a), v(b)) }}
}

// Ranked pairs an item with its rank.
type Ranked[T any] struct {
	Item T
	Rank int
}

// Rank sorts items by the full declared key and assigns rank values by the
// primary key only. keys[0] is the primary key, the rest are tie-breaks.
// Residual ties keep input order. items is not modified.
func Rank[T any](items []T, keys []SortKey[T], d Discipline) []Ranked[T] {
	sorted := append([]T(nil), items...)
	if len(keys) > 0 {
		sort.SliceStable(sorted, func(i, j int) bool {
			for _, k := range keys {
				if less, equal := k.less(sorted[i], sorted[j]); !equal {
					return less
				}
			}
			return false
		})
	}

	out := make([]Ranked[T], len(sorted))
	rank := 0
	for i, it := range sorted {
		switch {
		case i == 0:
			rank = 1
		case len(keys) > 0 && keys[0].Compare(it, sorted[i-1]) == 0:
			// same primary key, same rank
		case d == Gapped:
			rank = i + 1
		default:
			rank++
		}
		out[i] = Ranked[T]{Item: it, Rank: rank}
	}
	return out
}
