package retrieval

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
)

// --- Mocks ---

type mockEmbedder struct {
	mu     sync.Mutex
	calls  int
	err    error
	vector []float32
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vector}, nil
}

type mockSearcher struct {
	mu       sync.Mutex
	calls    int
	err      error
	passages []domain.Passage

	// block, when set, holds every Search call until closed; started is
	// closed once the first call arrives.
	block       <-chan struct{}
	started     chan struct{}
	startedOnce sync.Once
}

func (m *mockSearcher) Search(_ context.Context, _ []float32, _ int) ([]domain.Passage, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.started != nil {
		m.startedOnce.Do(func() { close(m.started) })
	}
	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Passage, len(m.passages))
	copy(out, m.passages)
	return out, nil
}

type mockCache struct {
	hits        map[string][]domain.Passage
	hitLevel    string
	storedL2    string
	storedL1    string
	stored      []domain.Passage
	lookupCalls int
}

func (m *mockCache) L1Key(intent, bucket string) string { return "l1:" + intent + ":" + bucket }
func (m *mockCache) L2Key(hash string) string           { return "l2:" + hash }

func (m *mockCache) Lookup(_ context.Context, l2Key, _ string) ([]domain.Passage, string, bool) {
	m.lookupCalls++
	if ps, ok := m.hits[l2Key]; ok {
		return ps, m.hitLevel, true
	}
	return nil, "", false
}

func (m *mockCache) Store(_ context.Context, l2Key, l1Key string, passages []domain.Passage) {
	m.storedL2 = l2Key
	m.storedL1 = l1Key
	m.stored = passages
}

type passthroughReranker struct{}

func (passthroughReranker) Rerank(_ string, _ []string, passages []domain.Passage) []domain.Passage {
	out := make([]domain.Passage, len(passages))
	copy(out, passages)
	return out
}

func testServiceConfig() Config {
	return Config{
		ScoreThreshold:       0.70,
		RelaxedThreshold:     0.60,
		RareRuleBoost:        0.05,
		PrioritySectionBoost: 0.03,
		PerQueryTopK:         5,
		FinalTopK:            3,
		FanoutWorkers:        4,
	}
}

func newTestService(e *mockEmbedder, s *mockSearcher, c *mockCache) *Service {
	var pc passageCache
	if c != nil {
		pc = c
	}
	return NewService(e, s, pc, passthroughReranker{}, knowledge.Default(), testServiceConfig(), zap.NewNop())
}

func timingPassages() []domain.Passage {
	return []domain.Passage{
		{ID: "SECTION_01_chunk_00", SectionID: "SECTION_01", Content: "dasha windows for marriage", Tags: []string{"timing", "dasha"}, Score: 0.85},
		{ID: "SECTION_07_chunk_01", SectionID: "SECTION_07", Content: "venus jupiter transit rules", Tags: []string{"timing", "venus"}, Score: 0.78},
		{ID: "SECTION_13_chunk_00", SectionID: "SECTION_13", Content: "moon dasha timing signals", Tags: []string{"timing", "moon"}, Score: 0.72},
	}
}

// --- Tests ---

func TestRetrieve_CacheHitSkipsPipeline(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1}}
	search := &mockSearcher{}
	c := &mockCache{hits: map[string][]domain.Passage{}, hitLevel: "l2"}

	svc := newTestService(emb, search, c)
	req := Request{Question: "when will I marry", Intent: "timing", ChartFactors: map[string]string{"7th_lord": "Mars"}}

	l2Key, _ := svc.keys(req)
	c.hits[l2Key] = timingPassages()

	res, err := svc.Retrieve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.FromCache || res.CacheLevel != "l2" {
		t.Errorf("expected l2 cache hit, got %+v", res)
	}
	if emb.calls != 0 || search.calls != 0 {
		t.Errorf("cache hit must not touch embedder (%d) or searcher (%d)", emb.calls, search.calls)
	}
}

func TestRetrieve_LiveRunStoresResult(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1}}
	search := &mockSearcher{passages: timingPassages()}
	c := &mockCache{hits: map[string][]domain.Passage{}}

	svc := newTestService(emb, search, c)
	res, err := svc.Retrieve(context.Background(), Request{Question: "when will I marry", Intent: "timing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FromCache {
		t.Error("expected live result")
	}
	if len(res.Passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(res.Passages))
	}
	if len(c.stored) != 3 || !strings.HasPrefix(c.storedL2, "l2:") || !strings.HasPrefix(c.storedL1, "l1:timing:") {
		t.Errorf("result not stored in cache: l2=%q l1=%q n=%d", c.storedL2, c.storedL1, len(c.stored))
	}
	// Three meta-queries, each embedded and searched once.
	if emb.calls != 3 || search.calls != 3 {
		t.Errorf("expected 3 embed and 3 search calls, got %d/%d", emb.calls, search.calls)
	}
}

func TestRetrieve_AllQueriesFailing(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("provider down")}
	search := &mockSearcher{}

	svc := newTestService(emb, search, nil)
	_, err := svc.Retrieve(context.Background(), Request{Question: "q", Intent: "timing"})
	if !errors.Is(err, domain.ErrCorpusUnavailable) {
		t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
	}
}

func TestRetrieve_NothingAboveRelaxedThreshold(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1}}
	search := &mockSearcher{passages: []domain.Passage{
		{ID: "SECTION_01_chunk_00", SectionID: "SECTION_01", Content: "weak", Tags: []string{"timing"}, Score: 0.41},
	}}
	c := &mockCache{hits: map[string][]domain.Passage{}}

	svc := newTestService(emb, search, c)
	res, err := svc.Retrieve(context.Background(), Request{Question: "q", Intent: "timing"})
	if err != nil {
		t.Fatalf("a miss must not error: %v", err)
	}
	if res.Passages == nil || len(res.Passages) != 0 {
		t.Errorf("expected empty (non-nil) passage list, got %#v", res.Passages)
	}
	if res.LowConfidence {
		t.Error("empty result must not flag low confidence")
	}
	if c.stored != nil || c.storedL2 != "" {
		t.Errorf("empty result must not be cached: l2=%q", c.storedL2)
	}
}

func TestRetrieve_ConcurrentMissesCollapse(t *testing.T) {
	release := make(chan struct{})
	emb := &mockEmbedder{vector: []float32{1}}
	search := &mockSearcher{passages: timingPassages(), block: release, started: make(chan struct{})}

	svc := newTestService(emb, search, nil)
	req := Request{Question: "when will I marry", Intent: "timing"}

	const callers = 5
	results := make(chan *Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Retrieve(context.Background(), req)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- res
		}()
	}

	// Wait until the first caller is inside the corpus search, then give
	// the rest a moment to park on the same key before unblocking.
	<-search.started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	// One pipeline run: three meta-queries embedded and searched once.
	if search.calls != 3 {
		t.Errorf("expected 3 search calls for %d concurrent callers, got %d", callers, search.calls)
	}
	if emb.calls != 3 {
		t.Errorf("expected 3 embed calls, got %d", emb.calls)
	}
	n := 0
	for res := range results {
		n++
		if len(res.Passages) != 3 {
			t.Errorf("caller got %d passages, want 3", len(res.Passages))
		}
	}
	if n != callers {
		t.Errorf("expected %d results, got %d", callers, n)
	}
}

func TestRetrieve_RelaxedThresholdFlagsLowConfidence(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1}}
	search := &mockSearcher{passages: []domain.Passage{
		{ID: "SECTION_01_chunk_00", SectionID: "SECTION_01", Content: "borderline rule", Tags: []string{"timing"}, Score: 0.65},
	}}

	svc := newTestService(emb, search, nil)
	res, err := svc.Retrieve(context.Background(), Request{Question: "q", Intent: "timing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.LowConfidence {
		t.Error("relaxed-threshold survivors must flag low confidence")
	}
	if len(res.Passages) != 1 || !res.Passages[0].LowConfidence {
		t.Errorf("passage not flagged: %+v", res.Passages)
	}
}

func TestRetrieve_UnknownIntentSkipsTagFilter(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1}}
	search := &mockSearcher{passages: []domain.Passage{
		{ID: "SECTION_26_chunk_00", SectionID: "SECTION_26", Content: "marital finance rule", Tags: []string{"finance"}, Score: 0.8},
	}}

	svc := newTestService(emb, search, nil)
	res, err := svc.Retrieve(context.Background(), Request{Question: "what about money", Intent: "no_such_intent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Passages) != 1 {
		t.Fatalf("unknown intent must not filter by tags, got %d passages", len(res.Passages))
	}
}

func TestRetrieve_RespectsRequestTopK(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{1}}
	search := &mockSearcher{passages: timingPassages()}

	svc := newTestService(emb, search, nil)
	res, err := svc.Retrieve(context.Background(), Request{Question: "q", Intent: "timing", TopK: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Passages) != 1 {
		t.Errorf("expected 1 passage, got %d", len(res.Passages))
	}
}

func TestBuildQueries_KnownIntentUsesChartSummary(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockSearcher{}, nil)

	queries := svc.buildQueries("when will I marry", "marriage_timing", map[string]string{
		"7th_lord":          "Mars",
		"venus_sign":        "Libra",
		"current_mahadasha": "Venus",
		"darakaraka":        "Mercury",
		"moon_sign":         "Cancer",
	})
	if len(queries) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(queries))
	}
	if !strings.Contains(queries[1], "7L=Mars") || !strings.Contains(queries[1], "dasha=Venus") {
		t.Errorf("second query missing chart summary: %q", queries[1])
	}
	if strings.Contains(queries[0], "7L=") {
		t.Errorf("first query must stay generic: %q", queries[0])
	}
}

func TestBuildQueries_EmptyIntentFallsBackToQuestion(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockSearcher{}, nil)

	queries := svc.buildQueries("is my partner loyal", "", nil)
	if len(queries) != 3 {
		t.Fatalf("expected 3 fallback queries, got %d", len(queries))
	}
	if queries[0] != "is my partner loyal" {
		t.Errorf("fallback must lead with the raw question: %q", queries[0])
	}
}

func TestChartSummary_CapsAtFourParts(t *testing.T) {
	got := chartSummary(map[string]string{
		"7th_lord":          "Mars",
		"venus_sign":        "Libra",
		"current_mahadasha": "Venus",
		"darakaraka":        "Mercury",
	})
	if got != "7L=Mars Venus=Libra dasha=Venus DK=Mercury" {
		t.Errorf("summary = %q", got)
	}

	if got := chartSummary(map[string]string{"current_dasha": "Saturn"}); got != "dasha=Saturn" {
		t.Errorf("current_dasha fallback = %q", got)
	}
	if got := chartSummary(nil); got != "" {
		t.Errorf("empty factors = %q", got)
	}
}

func TestDedupByContent_KeepsHighestScore(t *testing.T) {
	out := dedupByContent([]domain.Passage{
		{ID: "a", Content: "same rule", Score: 0.7},
		{ID: "b", Content: "same rule", Score: 0.9},
		{ID: "c", Content: "other rule", Score: 0.5},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(out))
	}
	if out[0].ID != "b" || out[0].Score != 0.9 {
		t.Errorf("duplicate winner = %+v", out[0])
	}
}

func TestBoost_RareRuleAndPrioritySection(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockSearcher{}, nil)

	passages := []domain.Passage{
		{ID: "a", SectionID: "SECTION_01", Score: 0.80, RareRule: true}, // priority for timing
		{ID: "b", SectionID: "SECTION_02", Score: 0.80},
		{ID: "c", SectionID: "SECTION_01", Score: 0.99, RareRule: true},
	}
	svc.boost("timing", passages)

	if diff := passages[0].Score - 0.88; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("boosted score = %v, want 0.88", passages[0].Score)
	}
	if passages[1].Score != 0.80 {
		t.Errorf("unboosted score changed: %v", passages[1].Score)
	}
	if passages[2].Score != 1.0 {
		t.Errorf("score must cap at 1.0, got %v", passages[2].Score)
	}
}

func TestSelectDiverse_PrefersDistinctSections(t *testing.T) {
	passages := []domain.Passage{
		{ID: "a", SectionID: "SECTION_01", Score: 0.95},
		{ID: "b", SectionID: "SECTION_01", Score: 0.90},
		{ID: "c", SectionID: "SECTION_07", Score: 0.85},
		{ID: "d", SectionID: "SECTION_13", Score: 0.80},
	}

	out := selectDiverse(passages, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3, got %d", len(out))
	}
	want := []string{"a", "c", "d"}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, out[i].ID, id)
		}
	}
}

func TestSelectDiverse_FillsFromSameSectionWhenShort(t *testing.T) {
	passages := []domain.Passage{
		{ID: "a", SectionID: "SECTION_01", Score: 0.95},
		{ID: "b", SectionID: "SECTION_01", Score: 0.90},
	}

	out := selectDiverse(passages, 3)
	if len(out) != 2 {
		t.Fatalf("expected 2, got %d", len(out))
	}
	if out[1].ID != "b" {
		t.Errorf("expected same-section fill, got %q", out[1].ID)
	}
}

func TestEnrichTags_SectionFallbackThenInference(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockSearcher{}, nil)

	passages := []domain.Passage{
		{ID: "SECTION_16_chunk_00", Content: "anything"},
		{ID: "custom_chunk", SectionID: "NOT_A_SECTION", Content: "the darakaraka shows spouse traits"},
		{ID: "x", SectionID: "SECTION_01", Tags: []string{"Already Tagged"}},
	}
	svc.enrichTags(passages)

	if len(passages[0].Tags) == 0 || passages[0].SectionID != "SECTION_16" {
		t.Errorf("section fallback failed: %+v", passages[0])
	}
	hasDK := false
	for _, tg := range passages[1].Tags {
		if tg == "darakaraka" {
			hasDK = true
		}
	}
	if !hasDK {
		t.Errorf("content inference failed: %v", passages[1].Tags)
	}
	if passages[2].Tags[0] != "already_tagged" {
		t.Errorf("existing tags must be normalized: %v", passages[2].Tags)
	}
}
