package retrieval

import "github.com/lakshaychetal/astrologyfinalrk/internal/domain"

// selectDiverse picks up to topK passages from a score-sorted slice,
// preferring distinct sections so the answer draws on more than one rule
// family, then filling remaining slots by raw score.
func selectDiverse(passages []domain.Passage, topK int) []domain.Passage {
	if topK <= 0 || len(passages) == 0 {
		return nil
	}

	selected := make([]domain.Passage, 0, topK)
	taken := make([]bool, len(passages))
	sections := map[string]struct{}{}

	for i, p := range passages {
		if len(selected) == topK {
			break
		}
		if _, dup := sections[p.SectionID]; dup {
			continue
		}
		sections[p.SectionID] = struct{}{}
		taken[i] = true
		selected = append(selected, p)
	}

	for i, p := range passages {
		if len(selected) == topK {
			break
		}
		if !taken[i] {
			selected = append(selected, p)
		}
	}
	return selected
}
