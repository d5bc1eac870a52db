package domain

// Passage is a retrieved knowledge chunk with its scoring metadata.
// IDs follow the "<SECTION_NN>_chunk_<MM>" convention; SectionID is the
// section prefix extracted from the ID.
type Passage struct {
	ID            string    `json:"id"`
	SectionID     string    `json:"section_id"`
	Title         string    `json:"title,omitempty"`
	Content       string    `json:"content"`
	OneLiner      string    `json:"one_liner,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Embedding     []float32 `json:"-"`
	RareRule      bool      `json:"rare_rule"`
	Score         float64   `json:"score"`
	QueryIndex    int       `json:"-"`
	LowConfidence bool      `json:"low_confidence,omitempty"`
}
