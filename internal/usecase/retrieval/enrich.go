package retrieval

import (
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain/tag"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
)

// enrichTags guarantees every candidate carries tags. Indexed tags win;
// untagged hits inherit their section's curated tags; passages outside
// the catalog get tags inferred from their content.
func (s *Service) enrichTags(passages []domain.Passage) {
	for i := range passages {
		p := &passages[i]

		p.Tags = tag.NormalizeAll(p.Tags)
		if len(p.Tags) > 0 {
			continue
		}

		section := p.SectionID
		if section == "" {
			section = knowledge.SectionFromID(p.ID)
			p.SectionID = section
		}
		if tags := s.catalog.SectionTags(section); len(tags) > 0 {
			p.Tags = append([]string(nil), tags...)
			continue
		}

		p.Tags = knowledge.InferTags(p.Content)
	}
}
