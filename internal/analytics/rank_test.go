package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type scored struct {
	id     int
	score  int
	second int
}

func ranks[T any](r []Ranked[T]) []int {
	out := make([]int, len(r))
	for i, x := range r {
		out[i] = x.Rank
	}
	return out
}

func ids(r []Ranked[scored]) []int {
	out := make([]int, len(r))
	for i, x := range r {
		out[i] = x.Item.id
	}
	return out
}

var scoredKeys = []SortKey[scored]{
	Desc("score", func(s scored) int { return s.score }),
	Desc("second", func(s scored) int { return s.second }),
	Asc("id", func(s scored) int { return s.id }),
}

func sample() []scored {
	return []scored{
		{id: 5, score: 10, second: 1},
		{id: 1, score: 30, second: 0},
		{id: 4, score: 20, second: 2},
		{id: 2, score: 20, second: 7},
		{id: 3, score: 20, second: 2},
		{id: 6, score: 10, second: 1},
	}
}

func TestRank_Dense(t *testing.T) {
	got := Rank(sample(), scoredKeys, Dense)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(got))
	assert.Equal(t, []int{1, 2, 2, 2, 3, 3}, ranks(got))
}

func TestRank_Gapped(t *testing.T) {
	got := Rank(sample(), scoredKeys, Gapped)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(got))
	assert.Equal(t, []int{1, 2, 2, 2, 5, 5}, ranks(got))
}

func TestRank_DenseHasNoGaps(t *testing.T) {
	items := make([]scored, 0, 100)
	distinct := map[int]struct{}{}
	for i := 0; i < 100; i++ {
		s := (i * 37) % 13
		distinct[s] = struct{}{}
		items = append(items, scored{id: i, score: s})
	}
	got := Rank(items, scoredKeys, Dense)
	used := map[int]struct{}{}
	for _, r := range got {
		used[r.Rank] = struct{}{}
	}
	assert.Len(t, used, len(distinct))
	for k := 1; k <= len(distinct); k++ {
		assert.Contains(t, used, k)
	}
}

func TestRank_StableAndPure(t *testing.T) {
	in := sample()
	onlyPrimary := scoredKeys[:1]
	first := Rank(in, onlyPrimary, Dense)
	second := Rank(in, onlyPrimary, Dense)
	assert.Equal(t, first, second)
	// residual ties keep input order
	assert.Equal(t, []int{1, 4, 2, 3, 5, 6}, ids(first))
	assert.Equal(t, sample(), in)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank[scored](nil, scoredKeys, Gapped))
}

func TestRank_StringTieBreak(t *testing.T) {
	type tag struct {
		name  string
		posts int
	}
	got := Rank([]tag{{"b", 2}, {"c", 5}, {"a", 2}}, []SortKey[tag]{
		Desc("posts", func(x tag) int { return x.posts }),
		Asc("name", func(x tag) string { return x.name }),
	}, Gapped)
	assert.Equal(t, "c", got[0].Item.name)
	assert.Equal(t, "a", got[1].Item.name)
	assert.Equal(t, "b", got[2].Item.name)
	assert.Equal(t, []int{1, 2, 2}, ranks(got))
}

func TestDiscipline_String(t *testing.T) {
	assert.Equal(t, "dense", Dense.String())
	assert.Equal(t, "gapped", Gapped.String())
}
