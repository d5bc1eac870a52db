package retrieval

import (
	"context"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
)

// searcher is the corpus search surface this service consumes (ISP).
type searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]domain.Passage, error)
}

// passageCache is the two-level cache surface this service consumes.
type passageCache interface {
	L1Key(intent, chartBucket string) string
	L2Key(promptHash string) string
	Lookup(ctx context.Context, l2Key, l1Key string) ([]domain.Passage, string, bool)
	Store(ctx context.Context, l2Key, l1Key string, passages []domain.Passage)
}

// reranker reorders candidates by blended relevance.
type reranker interface {
	Rerank(query string, queryTags []string, passages []domain.Passage) []domain.Passage
}
