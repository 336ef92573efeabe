package matching

import "strings"

// Similarity returns a case-insensitive character-similarity ratio in
// 0..100: twice the number of matching characters over the combined
// length. Matching characters are counted by taking the longest common
// substring and recursing on the pieces to its left and right.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	return float64(2*similarChars(ra, rb)) * 100 / float64(total)
}

// BestLocationMatch compares a requested location against a listing
// neighborhood and returns the best similarity. Besides the whole
// neighborhood string, every run of consecutive neighborhood words with
// the same word count as the request is tried, so "Altozano" still
// matches a compound name like "Vistas Altozano".
func BestLocationMatch(neighborhood, requested string) float64 {
	best := Similarity(neighborhood, requested)

	words := strings.Fields(neighborhood)
	n := len(strings.Fields(requested))
	if n == 0 || len(words) <= n {
		return best
	}
	for i := 0; i+n <= len(words); i++ {
		window := strings.Join(words[i:i+n], " ")
		if s := Similarity(window, requested); s > best {
			best = s
		}
	}
	return best
}

func similarChars(a, b []rune) int {
	pa, pb, n := longestCommon(a, b)
	if n == 0 {
		return 0
	}
	sum := n
	sum += similarChars(a[:pa], b[:pb])
	sum += similarChars(a[pa+n:], b[pb+n:])
	return sum
}

func longestCommon(a, b []rune) (pa, pb, max int) {
	for i := range a {
		for j := range b {
			n := 0
			for i+n < len(a) && j+n < len(b) && a[i+n] == b[j+n] {
				n++
			}
			if n > max {
				pa, pb, max = i, j, n
			}
		}
	}
	return pa, pb, max
}
