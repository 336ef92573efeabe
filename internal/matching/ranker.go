package matching

import "sort"

// Ranked pairs a candidate with its score.
type Ranked[T any] struct {
	Item  T
	Score float64
}

// Rank scores every candidate, drops those below threshold, sorts
// strictly descending and truncates to limit (limit <= 0 keeps all).
// The sort is stable: candidates with equal scores keep their original
// relative order, which makes the ranking deterministic for identical
// inputs. Both match directions use this one implementation — listings
// against one set of criteria, or prospect criteria against one listing.
func Rank[T any](candidates []T, score func(T) float64, threshold float64, limit int) []Ranked[T] {
	out := make([]Ranked[T], 0, len(candidates))
	for _, cand := range candidates {
		s := score(cand)
		if s < threshold {
			continue
		}
		out = append(out, Ranked[T]{Item: cand, Score: s})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
