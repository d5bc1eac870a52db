// Package rerank scores passages against a query without calling a model.
//
// The reranker combines embedding similarity with cheap lexical signals so
// retrieval can reorder candidates in microseconds instead of paying for a
// cross-encoder round trip.
package rerank

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain/tag"
)

// Weights controls the contribution of each signal to the final score.
type Weights struct {
	Similarity float64
	Lexical    float64
	TagOverlap float64
	Length     float64
	Proximity  float64
}

// DefaultWeights returns the tuned production weights.
func DefaultWeights() Weights {
	return Weights{
		Similarity: 1.0,
		Lexical:    0.35,
		TagOverlap: 0.2,
		Length:     0.15,
		Proximity:  0.2,
	}
}

// Reranker reorders passages by a weighted blend of similarity and
// lexical signals.
type Reranker struct {
	weights Weights
}

// New creates a reranker with the given weights.
func New(w Weights) *Reranker {
	return &Reranker{weights: w}
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "is": {}, "in": {}, "at": {},
	"to": {}, "of": {}, "for": {}, "a": {}, "an": {},
}

// Rerank returns a copy of passages sorted by blended score, descending.
// Input order breaks ties so the sort is deterministic.
func (r *Reranker) Rerank(query string, queryTags []string, passages []domain.Passage) []domain.Passage {
	queryTokens := tokenize(query)
	tagSet := tag.NewSet(queryTags)

	ranked := make([]domain.Passage, len(passages))
	copy(ranked, passages)

	scores := make([]float64, len(ranked))
	for i := range ranked {
		scores[i] = r.score(queryTokens, tagSet, &ranked[i])
	}

	order := make([]int, len(ranked))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	out := make([]domain.Passage, len(ranked))
	for i, idx := range order {
		out[i] = ranked[idx]
	}
	return out
}

func (r *Reranker) score(queryTokens []string, queryTags tag.Set, p *domain.Passage) float64 {
	s := r.weights.Similarity * p.Score
	s += r.weights.Lexical * lexicalScore(queryTokens, p.Content)
	s += r.weights.TagOverlap * tagOverlapScore(queryTags, p.Tags)
	s += r.weights.Length * lengthScore(len(p.Content))

	// Near-duplicates of the query vector get a flat bonus: a cosine
	// distance under 0.3 is a strong hit regardless of lexical form.
	if p.Score > 0.7 {
		s += r.weights.Proximity
	}
	return s
}

// lexicalScore is an IDF-weighted token overlap. Token length stands in
// for inverse document frequency: longer tokens are rarer in this corpus.
func lexicalScore(queryTokens []string, content string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	contentTokens := map[string]struct{}{}
	for _, t := range tokenize(content) {
		contentTokens[t] = struct{}{}
	}

	var matched, total float64
	for _, t := range queryTokens {
		idf := float64(len(t)) / 10
		if idf > 1 {
			idf = 1
		}
		total += idf
		if _, ok := contentTokens[t]; ok {
			matched += idf
		}
	}
	if total == 0 {
		return 0
	}
	return matched / total
}

func tagOverlapScore(queryTags tag.Set, passageTags []string) float64 {
	if len(queryTags) == 0 || len(passageTags) == 0 {
		return 0
	}
	var matched float64
	for _, t := range passageTags {
		if queryTags.Has(t) {
			matched++
		}
	}
	return matched / float64(len(passageTags))
}

// lengthScore prefers passages in the 300-900 character band, peaking at
// 600. Very short chunks lack context; very long ones dilute the answer.
func lengthScore(n int) float64 {
	clipped := float64(n)
	if clipped < 300 {
		clipped = 300
	}
	if clipped > 900 {
		clipped = 900
	}
	diff := clipped - 600
	if diff < 0 {
		diff = -diff
	}
	return 1 - diff/900
}

func tokenize(s string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(s), -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) <= 2 {
			continue
		}
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}
