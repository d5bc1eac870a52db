// Package ingest parses the sectioned rules corpus, chunks it, embeds each
// chunk, and writes the result to the passage index.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
)

// writer is the corpus write surface this service consumes (ISP).
type writer interface {
	Put(ctx context.Context, passages []domain.Passage) error
}

// Config tunes chunking.
type Config struct {
	// TargetTokens is the approximate chunk size in whitespace tokens.
	TargetTokens int
	// OverlapLines is how many trailing lines each chunk shares with the
	// next, so rules spanning a chunk boundary stay retrievable.
	OverlapLines int
}

// Stats summarizes one ingestion run.
type Stats struct {
	Sections  int
	Chunks    int
	RareRules int
}

// Service turns a rules document into embedded passages.
type Service struct {
	embedder domain.Embedder
	corpus   writer
	catalog  knowledge.Catalog
	cfg      Config
	logger   *zap.Logger
}

// New creates an ingestion service.
func New(embedder domain.Embedder, corpus writer, catalog knowledge.Catalog, cfg Config, logger *zap.Logger) *Service {
	return &Service{embedder: embedder, corpus: corpus, catalog: catalog, cfg: cfg, logger: logger}
}

// Section headers look like "SECTION_02: Spouse Appearance & Background".
var sectionHeader = regexp.MustCompile(`^(SECTION_\d+):\s*(.+)$`)

type section struct {
	id      string
	heading string
	lines   []string
}

// Ingest reads a sectioned rules document, chunks each section, embeds the
// chunks, and stores them. Embedding failures abort the run; ingestion is
// an offline step and partial corpora are worse than loud failures.
func (s *Service) Ingest(ctx context.Context, r io.Reader) (*Stats, error) {
	sections, err := parseSections(r)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("no SECTION_NN headers found in input")
	}

	stats := &Stats{Sections: len(sections)}
	var passages []domain.Passage

	for _, sec := range sections {
		chunks := chunkLines(sec.lines, s.cfg.TargetTokens, s.cfg.OverlapLines)
		for i, lines := range chunks {
			p := s.buildPassage(sec, i, lines)

			emb, err := s.embedder.Embed(ctx, p.Content)
			if err != nil {
				return nil, fmt.Errorf("embed %s: %w", p.ID, err)
			}
			p.Embedding = emb.Embedding

			if p.RareRule {
				stats.RareRules++
			}
			passages = append(passages, p)
		}
		stats.Chunks += len(chunks)
	}

	if err := s.corpus.Put(ctx, passages); err != nil {
		return nil, fmt.Errorf("store corpus: %w", err)
	}

	s.logger.Info("corpus ingested",
		zap.Int("sections", stats.Sections),
		zap.Int("chunks", stats.Chunks),
		zap.Int("rare_rules", stats.RareRules))
	return stats, nil
}

func (s *Service) buildPassage(sec section, chunkIdx int, lines []string) domain.Passage {
	content := strings.Join(lines, "\n")

	tags := s.catalog.SectionTags(sec.id)
	if len(tags) == 0 {
		tags = knowledge.InferTags(content)
	}

	return domain.Passage{
		ID:        fmt.Sprintf("%s_chunk_%02d", sec.id, chunkIdx),
		SectionID: sec.id,
		Title:     fmt.Sprintf("%s: %s", sec.id, sec.heading),
		Content:   content,
		OneLiner:  oneLiner(lines),
		Tags:      append([]string(nil), tags...),
		RareRule:  knowledge.DetectRareRule(content),
	}
}

func parseSections(r io.Reader) ([]section, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sections []section
	var current *section
	for scanner.Scan() {
		line := scanner.Text()
		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			sections = append(sections, section{id: m[1], heading: strings.TrimSpace(m[2])})
			current = &sections[len(sections)-1]
			continue
		}
		if current != nil {
			current.lines = append(current.lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return sections, nil
}

// chunkLines splits a section into chunks of roughly targetTokens
// whitespace tokens, carrying overlapLines trailing lines into the next
// chunk.
func chunkLines(lines []string, targetTokens, overlapLines int) [][]string {
	if targetTokens <= 0 {
		return [][]string{lines}
	}

	var chunks [][]string
	var current []string
	tokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, current)

		overlap := overlapLines
		if overlap > len(current) {
			overlap = len(current)
		}
		carried := current[len(current)-overlap:]
		current = append([]string(nil), carried...)
		tokens = 0
		for _, l := range current {
			tokens += len(strings.Fields(l))
		}
	}

	for _, line := range lines {
		current = append(current, line)
		tokens += len(strings.Fields(line))
		if tokens >= targetTokens {
			flush()
		}
	}

	// The tail chunk is dropped if it is overlap-only carryover.
	if tokens > 0 && hasContent(current) && !isCarryoverOnly(chunks, current, overlapLines) {
		chunks = append(chunks, current)
	}

	for i := range chunks {
		chunks[i] = trimBlank(chunks[i])
	}

	out := chunks[:0]
	for _, c := range chunks {
		if hasContent(c) {
			out = append(out, c)
		}
	}
	return out
}

func isCarryoverOnly(chunks [][]string, current []string, overlapLines int) bool {
	return len(chunks) > 0 && len(current) <= overlapLines
}

func hasContent(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

func trimBlank(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// oneLiner picks the first substantive line as the passage summary.
func oneLiner(lines []string) string {
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if len(t) > 160 {
			t = t[:160]
		}
		return t
	}
	return ""
}
