package retrieval

import (
	"sort"
	"strings"
)

// Scorer rates a chunk's relevance to a query. Implementations must be
// deterministic; selection relies on stable ordering for tie-breaks.
type Scorer interface {
	Score(query, chunk string) float64
}

// KeywordScorer counts how many distinct query terms occur in the chunk.
// Presence only; term frequency is deliberately ignored. This is a
// placeholder for something embedding-based, kept behind the Scorer
// interface so swapping it does not touch callers.
type KeywordScorer struct{}

func (KeywordScorer) Score(query, chunk string) float64 {
	low := strings.ToLower(chunk)
	score := 0.0
	for term := range queryTerms(query) {
		if strings.Contains(low, term) {
			score++
		}
	}
	return score
}

// TopK returns the k highest-scoring chunks in score order, ties broken by
// original chunk position. Zero-scoring chunks still qualify when k exceeds
// the number of scoring chunks.
func TopK(s Scorer, query string, chunks []string, k int) []string {
	if k <= 0 || len(chunks) == 0 {
		return nil
	}
	type scored struct {
		idx   int
		score float64
	}
	list := make([]scored, len(chunks))
	for i, c := range chunks {
		list[i] = scored{idx: i, score: s.Score(query, c)}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})
	if k > len(list) {
		k = len(list)
	}
	out := make([]string, 0, k)
	for _, sc := range list[:k] {
		out = append(out, chunks[sc.idx])
	}
	return out
}

func queryTerms(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(query)) {
		terms[f] = struct{}{}
	}
	return terms
}
