package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
)

type mockEmbedder struct {
	calls int
	err   error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type mockWriter struct {
	passages []domain.Passage
	err      error
}

func (m *mockWriter) Put(_ context.Context, passages []domain.Passage) error {
	m.passages = passages
	return m.err
}

const sampleDoc = `SECTION_01: Relationship Trajectory
The 7th lord dasha opens the primary marriage window.
Venus-Jupiter periods support commitment.

SECTION_16: Ex Return Windows
Step 1: check the Venus-Moon mutual aspect.
If Venus transits the natal 7th, then reconciliation is favored.
`

func newTestService(e *mockEmbedder, w *mockWriter, cfg Config) *Service {
	return New(e, w, knowledge.Default(), cfg, zap.NewNop())
}

func TestIngest_SectionsChunksAndMetadata(t *testing.T) {
	emb := &mockEmbedder{}
	w := &mockWriter{}
	svc := newTestService(emb, w, Config{TargetTokens: 500, OverlapLines: 2})

	stats, err := svc.Ingest(context.Background(), strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Sections != 2 || stats.Chunks != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.RareRules != 1 {
		t.Errorf("rare rules = %d, want 1 (SECTION_16 has step/if-then)", stats.RareRules)
	}
	if emb.calls != 2 {
		t.Errorf("embed calls = %d, want one per chunk", emb.calls)
	}

	if len(w.passages) != 2 {
		t.Fatalf("stored %d passages", len(w.passages))
	}
	first := w.passages[0]
	if first.ID != "SECTION_01_chunk_00" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.Title != "SECTION_01: Relationship Trajectory" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.OneLiner != "The 7th lord dasha opens the primary marriage window." {
		t.Errorf("OneLiner = %q", first.OneLiner)
	}
	if len(first.Tags) == 0 || len(first.Embedding) == 0 {
		t.Errorf("missing tags or embedding: %+v", first)
	}
	if first.RareRule {
		t.Error("SECTION_01 chunk wrongly flagged rare")
	}
	if !w.passages[1].RareRule {
		t.Error("SECTION_16 chunk must be flagged rare")
	}
}

func TestIngest_SplitsLongSections(t *testing.T) {
	var b strings.Builder
	b.WriteString("SECTION_01: Trajectory\n")
	for i := 0; i < 40; i++ {
		b.WriteString("the seventh lord dasha window opens marriage timing for this chart\n")
	}

	emb := &mockEmbedder{}
	w := &mockWriter{}
	svc := newTestService(emb, w, Config{TargetTokens: 100, OverlapLines: 2})

	stats, err := svc.Ingest(context.Background(), strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Chunks < 3 {
		t.Fatalf("expected multiple chunks, got %d", stats.Chunks)
	}

	// Overlap: each chunk after the first starts with the previous chunk's
	// trailing lines.
	prev := strings.Split(w.passages[0].Content, "\n")
	next := strings.Split(w.passages[1].Content, "\n")
	if prev[len(prev)-1] != next[0] {
		t.Error("chunks must overlap by trailing lines")
	}
}

func TestIngest_NoSections(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockWriter{}, Config{TargetTokens: 500})
	if _, err := svc.Ingest(context.Background(), strings.NewReader("just prose, no headers")); err == nil {
		t.Fatal("expected error for unsectioned input")
	}
}

func TestIngest_EmbedFailureAborts(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("provider down")}
	w := &mockWriter{}
	svc := newTestService(emb, w, Config{TargetTokens: 500})

	if _, err := svc.Ingest(context.Background(), strings.NewReader(sampleDoc)); err == nil {
		t.Fatal("expected error")
	}
	if len(w.passages) != 0 {
		t.Error("nothing must be stored on failure")
	}
}

func TestChunkLines_OverlapAndBounds(t *testing.T) {
	lines := []string{
		"one two three four five",
		"six seven eight nine ten",
		"eleven twelve thirteen fourteen fifteen",
	}

	chunks := chunkLines(lines, 10, 1)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if chunks[1][0] != lines[1] {
		t.Errorf("second chunk must start with overlap line, got %q", chunks[1][0])
	}

	if got := chunkLines(lines, 0, 1); len(got) != 1 {
		t.Errorf("non-positive target must keep section whole, got %d chunks", len(got))
	}
}
