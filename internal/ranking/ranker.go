// Package ranking provides cosine similarity ranking of embedding vectors.
package ranking

import (
	"math"
	"sort"
)

// zeroNormEpsilon is the L2-norm threshold below which a vector is treated
// as directionless: such a query matches nothing and such a corpus entry
// scores zero.
const zeroNormEpsilon = 1e-10

// Entry is one ranked corpus member: an identifier and its embedding.
type Entry struct {
	ID     string
	Vector []float32
}

// Match is a single ranking hit.
type Match struct {
	ID    string
	Index int     // position in the input corpus
	Score float64 // raw cosine similarity in [-1, 1]
}

// Rank scores every corpus entry against query by cosine similarity and
// returns the best min(k, len(corpus)) matches, highest first. Ties keep
// input order. A zero-norm query, an empty corpus, or k <= 0 yields no
// matches; a zero-norm corpus entry stays in the candidate pool with score
// zero rather than being dropped.
//
// When k covers the whole corpus the entries are simply sorted. Otherwise a
// quickselect pass isolates the top k in O(n) expected time and only that
// subset is sorted, so ranking cost does not grow with k for large corpora.
func Rank(query []float32, corpus []Entry, k int) []Match {
	if k <= 0 || len(corpus) == 0 {
		return nil
	}
	qnorm := norm(query)
	if qnorm < zeroNormEpsilon {
		return nil
	}

	scored := make([]scoredEntry, len(corpus))
	for i, entry := range corpus {
		scored[i] = scoredEntry{index: i, score: cosine(query, qnorm, entry.Vector)}
	}
	if k < len(scored) {
		selectTop(scored, k)
		scored = scored[:k]
	}
	sort.Slice(scored, func(i, j int) bool { return better(scored[i], scored[j]) })

	matches := make([]Match, len(scored))
	for i, s := range scored {
		matches[i] = Match{ID: corpus[s.index].ID, Index: s.index, Score: s.score}
	}
	return matches
}

type scoredEntry struct {
	index int
	score float64
}

// cosine returns the cosine similarity between query (with precomputed norm
// qnorm) and vec, accumulated in float64. Mismatched widths and zero-norm
// vectors score zero.
func cosine(query []float32, qnorm float64, vec []float32) float64 {
	if len(vec) != len(query) {
		return 0
	}
	var dot, sum float64
	for i := range vec {
		dot += float64(query[i]) * float64(vec[i])
		sum += float64(vec[i]) * float64(vec[i])
	}
	vnorm := math.Sqrt(sum)
	if vnorm < zeroNormEpsilon {
		return 0
	}
	return dot / (qnorm * vnorm)
}

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
