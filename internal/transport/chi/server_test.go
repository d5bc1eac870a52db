package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/preload"
	"github.com/lakshaychetal/astrologyfinalrk/internal/usecase/retrieval"
)

type mockRetriever struct {
	result  *retrieval.Result
	err     error
	lastReq retrieval.Request
}

func (m *mockRetriever) Retrieve(_ context.Context, req retrieval.Request) (*retrieval.Result, error) {
	m.lastReq = req
	return m.result, m.err
}

type mockPreloader struct {
	submitted int
	coverage  preload.Coverage
}

func (m *mockPreloader) Preload(_ map[string]string) int { return m.submitted }
func (m *mockPreloader) Status(_ context.Context, _ map[string]string) preload.Coverage {
	return m.coverage
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestRouter(r retriever, p preloader, db pinger) http.Handler {
	srv := NewServer(r, p, db, zap.NewNop())
	mux := chirouter.NewRouter()
	srv.Routes(mux)
	return mux
}

func TestRetrieve_OK(t *testing.T) {
	ret := &mockRetriever{result: &retrieval.Result{
		Passages: []domain.Passage{{ID: "SECTION_01_chunk_00", Content: "rule", Score: 0.8}},
		Intent:   "timing",
	}}
	router := newTestRouter(ret, &mockPreloader{}, &mockPinger{})

	body := `{"question":"when will I marry","intent":"timing","chart_factors":{"7th_lord":"Mars"},"top_k":2}`
	req := httptest.NewRequest("POST", "/v1/retrieve", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if ret.lastReq.Question != "when will I marry" || ret.lastReq.TopK != 2 {
		t.Errorf("request not mapped: %+v", ret.lastReq)
	}
	if ret.lastReq.ChartFactors["7th_lord"] != "Mars" {
		t.Errorf("chart factors not mapped: %+v", ret.lastReq.ChartFactors)
	}

	var resp retrieval.Result
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Passages) != 1 || resp.Intent != "timing" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRetrieve_EmptyResultIsOK(t *testing.T) {
	ret := &mockRetriever{result: &retrieval.Result{
		Passages: []domain.Passage{},
		Intent:   "timing",
	}}
	router := newTestRouter(ret, &mockPreloader{}, &mockPinger{})

	req := httptest.NewRequest("POST", "/v1/retrieve", strings.NewReader(`{"question":"obscure question","intent":"timing"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	// An ordinary miss is a 200 with an empty list, not an error status.
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"passages":[]`) {
		t.Errorf("expected empty passages list, body = %s", rr.Body.String())
	}
}

func TestRetrieve_MissingQuestion_400(t *testing.T) {
	router := newTestRouter(&mockRetriever{}, &mockPreloader{}, &mockPinger{})

	req := httptest.NewRequest("POST", "/v1/retrieve", strings.NewReader(`{"intent":"timing"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestRetrieve_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrCorpusUnavailable, http.StatusServiceUnavailable},
		{domain.ErrEmbeddingProviderError, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		router := newTestRouter(&mockRetriever{err: tc.err}, &mockPreloader{}, &mockPinger{})

		req := httptest.NewRequest("POST", "/v1/retrieve", strings.NewReader(`{"question":"q"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != tc.want {
			t.Errorf("%v: status = %d, want %d", tc.err, rr.Code, tc.want)
		}
	}
}

func TestPreload_Accepted(t *testing.T) {
	router := newTestRouter(&mockRetriever{}, &mockPreloader{submitted: 12}, &mockPinger{})

	req := httptest.NewRequest("POST", "/v1/preload", strings.NewReader(`{"chart_factors":{"7th_lord":"Mars"}}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	var resp preloadResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Submitted != 12 {
		t.Errorf("submitted = %d", resp.Submitted)
	}
}

func TestPreload_EmptyFactors_400(t *testing.T) {
	router := newTestRouter(&mockRetriever{}, &mockPreloader{}, &mockPinger{})

	req := httptest.NewRequest("POST", "/v1/preload", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestPreloadStatus(t *testing.T) {
	p := &mockPreloader{coverage: preload.Coverage{Ready: true, Coverage: 0.9, Checked: 10, Warm: 9}}
	router := newTestRouter(&mockRetriever{}, p, &mockPinger{})

	req := httptest.NewRequest("POST", "/v1/preload/status", strings.NewReader(`{"chart_factors":{"venus_sign":"Libra"}}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var cov preload.Coverage
	if err := json.NewDecoder(rr.Body).Decode(&cov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cov.Ready || cov.Warm != 9 {
		t.Errorf("coverage = %+v", cov)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&mockRetriever{}, &mockPreloader{}, &mockPinger{})

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("healthy: status = %d", rr.Code)
	}

	router = newTestRouter(&mockRetriever{}, &mockPreloader{}, &mockPinger{err: errors.New("down")})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: status = %d", rr.Code)
	}
}
