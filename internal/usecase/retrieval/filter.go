package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain/tag"
)

// dedupByContent collapses candidates with identical content, keeping the
// highest-scoring copy. Overlapping meta-queries routinely return the
// same chunk.
func dedupByContent(passages []domain.Passage) []domain.Passage {
	seen := map[string]int{}
	out := make([]domain.Passage, 0, len(passages))
	for _, p := range passages {
		h := contentHash(p.Content)
		if idx, ok := seen[h]; ok {
			if p.Score > out[idx].Score {
				out[idx] = p
			}
			continue
		}
		seen[h] = len(out)
		out = append(out, p)
	}
	return out
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// filterByIntent keeps candidates whose tags overlap the intent's tag
// set. Unknown intents skip the filter entirely: a wrong guess must not
// starve the pipeline.
func (s *Service) filterByIntent(intent string, passages []domain.Passage) []domain.Passage {
	if !s.catalog.Known(intent) {
		s.logger.Debug("intent not in catalog, skipping tag filter", zap.String("intent", intent))
		return passages
	}
	want := tag.NewSet(s.catalog.IntentTags(intent))
	if len(want) == 0 {
		return passages
	}

	out := make([]domain.Passage, 0, len(passages))
	for _, p := range passages {
		if want.Overlaps(p.Tags) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		s.logger.Debug("tag filter removed every candidate, keeping unfiltered set",
			zap.String("intent", intent), zap.Int("candidates", len(passages)))
		return passages
	}
	return out
}

// applyThreshold drops weak candidates. If the primary threshold leaves
// nothing, the relaxed threshold is tried and survivors are flagged low
// confidence so downstream prompting can hedge.
func (s *Service) applyThreshold(passages []domain.Passage) []domain.Passage {
	keep := scoreAtLeast(passages, s.cfg.ScoreThreshold)
	if len(keep) > 0 {
		return keep
	}

	relaxed := scoreAtLeast(passages, s.cfg.RelaxedThreshold)
	for i := range relaxed {
		relaxed[i].LowConfidence = true
	}
	if len(relaxed) > 0 {
		s.logger.Debug("relaxed score threshold",
			zap.Float64("threshold", s.cfg.RelaxedThreshold), zap.Int("kept", len(relaxed)))
	}
	return relaxed
}

func scoreAtLeast(passages []domain.Passage, threshold float64) []domain.Passage {
	out := make([]domain.Passage, 0, len(passages))
	for _, p := range passages {
		if p.Score >= threshold {
			out = append(out, p)
		}
	}
	return out
}

// boost rewards rare procedural rules and the intent's priority sections,
// capping at 1.0 so boosted scores stay comparable to raw similarity.
func (s *Service) boost(intent string, passages []domain.Passage) {
	priority := map[string]struct{}{}
	for _, sec := range s.catalog.PrioritySections(intent) {
		priority[sec] = struct{}{}
	}

	for i := range passages {
		p := &passages[i]
		if p.RareRule {
			p.Score += s.cfg.RareRuleBoost
		}
		if _, ok := priority[p.SectionID]; ok {
			p.Score += s.cfg.PrioritySectionBoost
		}
		if p.Score > 1.0 {
			p.Score = 1.0
		}
	}
}

// sortByScore orders by score descending, then query order, then ID, so
// repeated runs over the same candidates produce identical output.
func sortByScore(passages []domain.Passage) {
	sort.SliceStable(passages, func(a, b int) bool {
		if passages[a].Score != passages[b].Score {
			return passages[a].Score > passages[b].Score
		}
		if passages[a].QueryIndex != passages[b].QueryIndex {
			return passages[a].QueryIndex < passages[b].QueryIndex
		}
		return passages[a].ID < passages[b].ID
	})
}
