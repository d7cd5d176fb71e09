package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsapp-summarizer/internal/benchmark"
	"newsapp-summarizer/internal/cache"
	"newsapp-summarizer/internal/models"
	"newsapp-summarizer/internal/summarizer"
)

const article = "Artificial intelligence has made significant strides in recent years, transforming " +
	"industries from healthcare to transportation."

type stubGenerator struct {
	output string
	err    error
	calls  int
}

func (s *stubGenerator) Generate(ctx context.Context, input string) (string, error) {
	s.calls++
	return s.output, s.err
}

func newTestRegistry(bart, t5 *stubGenerator) *summarizer.Registry {
	return summarizer.NewRegistry(summarizer.NewBART(bart, 1), summarizer.NewT5(t5, 1))
}

func postJSON(t *testing.T, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

// ─── Home ───

func TestHome(t *testing.T) {
	rr := httptest.NewRecorder()
	Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Backend is running!", rr.Body.String())
}

func TestModelsList(t *testing.T) {
	h := NewModelsHandler(newTestRegistry(&stubGenerator{}, &stubGenerator{}))

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/models", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Models []models.ModelInfo `json:"models"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Models, 2)
	assert.Equal(t, "BART", body.Models[0].Label)
	assert.Equal(t, "summarize: ", body.Models[1].Parameters.Prefix)
}

// ─── Summarize ───

func TestSummarize_DefaultsToBART(t *testing.T) {
	bart := &stubGenerator{output: "BART summary."}
	t5 := &stubGenerator{output: "T5 summary."}
	h := NewSummarizeHandler(newTestRegistry(bart, t5), nil)

	rr := httptest.NewRecorder()
	h.Summarize(rr, postJSON(t, "/summarize", map[string]string{"text": article}))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.SummarizeResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "BART", resp.Model)
	assert.Equal(t, "BART summary.", resp.Summary)
	assert.GreaterOrEqual(t, resp.TimeTaken, 0.0)
	assert.False(t, resp.Cached)
	assert.Equal(t, 0, t5.calls)
}

func TestSummarize_ModelSelection(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"bart", "BART"},
		{"BART", "BART"},
		{"t5", "T5"},
		{"T5", "T5"},
		{"something-else", "T5"},
	}

	for _, tc := range tests {
		t.Run(tc.model, func(t *testing.T) {
			h := NewSummarizeHandler(newTestRegistry(
				&stubGenerator{output: "b"}, &stubGenerator{output: "t"},
			), nil)

			rr := httptest.NewRecorder()
			h.Summarize(rr, postJSON(t, "/summarize", map[string]string{"text": article, "model": tc.model}))
			require.Equal(t, http.StatusOK, rr.Code)

			var resp models.SummarizeResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tc.want, resp.Model)
		})
	}
}

func TestSummarize_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   "} {
		bart := &stubGenerator{output: "unused"}
		h := NewSummarizeHandler(newTestRegistry(bart, &stubGenerator{}), nil)

		rr := httptest.NewRecorder()
		h.Summarize(rr, postJSON(t, "/summarize", map[string]string{"text": text}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No text provided", decodeError(t, rr).Error)
		assert.Zero(t, bart.calls)
	}
}

func TestSummarize_InvalidBody(t *testing.T) {
	h := NewSummarizeHandler(newTestRegistry(&stubGenerator{}, &stubGenerator{}), nil)

	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.Summarize(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rr).Code)
}

func TestSummarize_GenerationError(t *testing.T) {
	bart := &stubGenerator{err: errors.New("tensor shape mismatch")}
	h := NewSummarizeHandler(newTestRegistry(bart, &stubGenerator{}), nil)

	req := postJSON(t, "/summarize", map[string]string{"text": article})
	req.Header.Set("X-Request-ID", "req-1")
	rr := httptest.NewRecorder()
	h.Summarize(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, "BART generation failed: tensor shape mismatch", body.Error)
	assert.Equal(t, "req-1", body.RequestID)
}

func TestSummarize_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bart := &stubGenerator{output: "Cached once."}
	h := NewSummarizeHandler(newTestRegistry(bart, &stubGenerator{}), cache.NewSummaryCache(client, time.Hour))

	var responses []models.SummarizeResponse
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.Summarize(rr, postJSON(t, "/summarize", map[string]string{"text": article, "model": "bart"}))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp models.SummarizeResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		responses = append(responses, resp)
	}

	assert.Equal(t, 1, bart.calls)
	assert.False(t, responses[0].Cached)
	assert.True(t, responses[1].Cached)
	assert.Equal(t, responses[0].Summary, responses[1].Summary)
	assert.Equal(t, "BART", responses[1].Model)
}

func TestSummarize_CacheFailureIsNotFatal(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	bart := &stubGenerator{output: "Still works."}
	h := NewSummarizeHandler(newTestRegistry(bart, &stubGenerator{}), cache.NewSummaryCache(client, time.Hour))

	rr := httptest.NewRecorder()
	h.Summarize(rr, postJSON(t, "/summarize", map[string]string{"text": article}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, bart.calls)
}

// ─── Compare ───

func TestCompare_ReturnsReport(t *testing.T) {
	registry := newTestRegistry(&stubGenerator{output: "b"}, &stubGenerator{output: "t"})
	h := NewCompareHandler(benchmark.NewComparer(registry, 5))

	rr := httptest.NewRecorder()
	h.Compare(rr, postJSON(t, "/compare", map[string]string{"text": article}))
	require.Equal(t, http.StatusOK, rr.Code)

	var report benchmark.Report
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	assert.Equal(t, 5, report.Iterations)
	for _, key := range []string{"t5", "bart"} {
		stats := report.Comparison[key]
		require.NotNil(t, stats, key)
		assert.Len(t, stats.Samples, 5)
		assert.LessOrEqual(t, stats.MinTime, stats.AverageTime)
		assert.LessOrEqual(t, stats.AverageTime, stats.MaxTime)
	}
}

func TestCompare_EmptyText(t *testing.T) {
	h := NewCompareHandler(benchmark.NewComparer(newTestRegistry(&stubGenerator{}, &stubGenerator{}), 5))

	rr := httptest.NewRecorder()
	h.Compare(rr, postJSON(t, "/compare", map[string]string{}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No text provided", decodeError(t, rr).Error)
}

func TestCompare_Failure(t *testing.T) {
	t5 := &stubGenerator{err: errors.New("model file truncated")}
	h := NewCompareHandler(benchmark.NewComparer(newTestRegistry(&stubGenerator{output: "b"}, t5), 5))

	rr := httptest.NewRecorder()
	h.Compare(rr, postJSON(t, "/compare", map[string]string{"text": article}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "T5 generation failed: model file truncated", decodeError(t, rr).Error)
}

func TestCompareStream(t *testing.T) {
	registry := newTestRegistry(&stubGenerator{output: "b"}, &stubGenerator{output: "t"})
	h := NewCompareHandler(benchmark.NewComparer(registry, 2))

	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.CompareRequest{Text: article}))

	var types []string
	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		types = append(types, msg.Type)

		if msg.Type == models.WSTypeResult {
			var report benchmark.Report
			require.NoError(t, json.Unmarshal(msg.Payload, &report))
			assert.Len(t, report.Comparison["bart"].Samples, 2)
			break
		}
		require.Equal(t, models.WSTypeProgress, msg.Type)
	}

	// 2 iterations × 2 models, then the result.
	assert.Len(t, types, 5)
}

func TestCompareStream_EmptyText(t *testing.T) {
	h := NewCompareHandler(benchmark.NewComparer(newTestRegistry(&stubGenerator{}, &stubGenerator{}), 1))

	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.CompareRequest{Text: " "}))

	var msg struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.WSTypeError, msg.Type)
	assert.Equal(t, "No text provided", msg.Payload["error"])
}

type failingWriter struct {
	err    error
	writes int
}

func (f *failingWriter) WriteJSON(v interface{}) error {
	f.writes++
	return f.err
}

type progressComparer struct {
	runs      int
	cancelled []bool
}

func (c *progressComparer) Compare(ctx context.Context, text string, progress func(benchmark.Progress)) (*benchmark.Report, error) {
	for i := 1; i <= c.runs; i++ {
		progress(benchmark.Progress{Iteration: i, Total: c.runs, Model: "t5"})
		c.cancelled = append(c.cancelled, ctx.Err() != nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &benchmark.Report{Iterations: c.runs}, nil
}

func TestCompareStream_WriteFailureCancels(t *testing.T) {
	c := &progressComparer{runs: 3}
	h := NewCompareHandler(c)
	out := &failingWriter{err: errors.New("broken pipe")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.stream(ctx, cancel, out, article)

	assert.Equal(t, []bool{true, true, true}, c.cancelled)
	// Only the first progress write is attempted; no error or result follows.
	assert.Equal(t, 1, out.writes)
}

func TestCompareStream_HealthyWriterGetsResult(t *testing.T) {
	c := &progressComparer{runs: 2}
	h := NewCompareHandler(c)
	out := &failingWriter{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.stream(ctx, cancel, out, article)

	assert.Equal(t, []bool{false, false}, c.cancelled)
	assert.Equal(t, 3, out.writes)
}

// ─── History ───

type stubUserSummaryRepo struct {
	created []*models.UserSummary
	last    *models.UserSummary
	err     error
}

func (s *stubUserSummaryRepo) Create(ctx context.Context, us *models.UserSummary) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, us)
	return nil
}

func (s *stubUserSummaryRepo) LastByEmail(ctx context.Context, email string) (*models.UserSummary, error) {
	return s.last, s.err
}

func lastCategoryRequest(email string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("email", email)
	req := httptest.NewRequest(http.MethodGet, "/api/last-category/"+email, nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestStoreSummary(t *testing.T) {
	repo := &stubUserSummaryRepo{}
	h := NewHistoryHandler(repo)

	rr := httptest.NewRecorder()
	h.StoreSummary(rr, postJSON(t, "/api/store-summary", map[string]string{
		"email": "reader@example.com", "category": "technology",
	}))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Category stored successfully", body["message"])

	require.Len(t, repo.created, 1)
	assert.Equal(t, "technology", repo.created[0].Category)
}

func TestStoreSummary_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"category": "sports"}},
		{"missing category", map[string]string{"email": "a@b.c"}},
		{"empty body", map[string]string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubUserSummaryRepo{}
			rr := httptest.NewRecorder()
			NewHistoryHandler(repo).StoreSummary(rr, postJSON(t, "/api/store-summary", tc.body))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, repo.created)
		})
	}
}

func TestStoreSummary_RepoError(t *testing.T) {
	h := NewHistoryHandler(&stubUserSummaryRepo{err: errors.New("connection refused")})

	rr := httptest.NewRecorder()
	h.StoreSummary(rr, postJSON(t, "/api/store-summary", map[string]string{"email": "a@b.c", "category": "x"}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Error storing category", decodeError(t, rr).Error)
}

func TestLastCategory(t *testing.T) {
	tests := []struct {
		name string
		last *models.UserSummary
		want string
	}{
		{"stored category", &models.UserSummary{Category: "business"}, "business"},
		{"falls back to general", nil, "general"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHistoryHandler(&stubUserSummaryRepo{last: tc.last})

			rr := httptest.NewRecorder()
			h.LastCategory(rr, lastCategoryRequest("reader@example.com"))
			require.Equal(t, http.StatusOK, rr.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tc.want, body["category"])
		})
	}
}

func TestLastCategory_RepoError(t *testing.T) {
	h := NewHistoryHandler(&stubUserSummaryRepo{err: errors.New("timeout")})

	rr := httptest.NewRecorder()
	h.LastCategory(rr, lastCategoryRequest("reader@example.com"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
