package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cand struct {
	name  string
	score float64
}

func rankCands(items []cand, threshold float64, limit int) []Ranked[cand] {
	return Rank(items, func(c cand) float64 { return c.score }, threshold, limit)
}

func TestRank_SortsDescendingAndTruncates(t *testing.T) {
	t.Parallel()

	items := []cand{
		{"a", 61}, {"b", 99}, {"c", 75}, {"d", 82}, {"e", 70}, {"f", 95}, {"g", 88},
	}
	out := rankCands(items, 60, 5)

	require.Len(t, out, 5)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
	}
	assert.Equal(t, "b", out[0].Item.name)
	assert.Equal(t, "f", out[1].Item.name)
}

func TestRank_DropsBelowThreshold(t *testing.T) {
	t.Parallel()

	items := []cand{{"a", 59.99}, {"b", 60}, {"c", 10}}
	out := rankCands(items, 60, 5)

	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Item.name)
}

func TestRank_StableOnTies(t *testing.T) {
	t.Parallel()

	items := []cand{{"first", 80}, {"x", 90}, {"second", 80}, {"third", 80}}
	out := rankCands(items, 0, 0)

	require.Len(t, out, 4)
	assert.Equal(t, []string{"x", "first", "second", "third"},
		[]string{out[0].Item.name, out[1].Item.name, out[2].Item.name, out[3].Item.name})
}

func TestRank_EmptyAndNoLimit(t *testing.T) {
	t.Parallel()

	assert.Empty(t, rankCands(nil, 60, 5))

	items := []cand{{"a", 70}, {"b", 71}, {"c", 72}}
	out := rankCands(items, 60, 0)
	assert.Len(t, out, 3)
}

func TestRank_Idempotent(t *testing.T) {
	t.Parallel()

	items := []cand{{"a", 80}, {"b", 80}, {"c", 90}, {"d", 59}}
	first := rankCands(items, 60, 5)
	second := rankCands(items, 60, 5)
	assert.Equal(t, first, second)
}
