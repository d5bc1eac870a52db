package retrieval

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
)

// fanout embeds each query and searches the corpus in parallel. A single
// failing query degrades the candidate pool instead of failing the
// request; only a full wipeout surfaces to the caller.
func (s *Service) fanout(ctx context.Context, queries []string) ([]domain.Passage, int, error) {
	var (
		mu         sync.Mutex
		candidates []domain.Passage
		succeeded  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FanoutWorkers)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			emb, err := s.embedder.Embed(gctx, q)
			if err != nil {
				s.logger.Warn("query embed failed", zap.Int("query_index", i), zap.Error(err))
				return nil
			}

			passages, err := s.corpus.Search(gctx, emb.Embedding, s.cfg.PerQueryTopK)
			if err != nil {
				s.logger.Warn("corpus search failed", zap.Int("query_index", i), zap.Error(err))
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			succeeded++
			for _, p := range passages {
				p.QueryIndex = i
				candidates = append(candidates, p)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return candidates, succeeded, nil
}
