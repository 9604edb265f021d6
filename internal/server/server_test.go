package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/linsolve"
	"github.com/njchilds90/linsolve/internal/config"
	"github.com/njchilds90/linsolve/internal/logger"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	return s
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSolve_OK(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/solve", `{"eq1": "x + 2y = 1", "eq2": "3x - y = 0"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got solveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "1/7", got.XExact)
	assert.Equal(t, "3/7", got.YExact)
	assert.InDelta(t, 1.0/7, got.X, 1e-12)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.outcomes.WithLabelValues("solved")))
}

func TestSolve_ParseError(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/solve", `{"eq1": "x + y = 1", "eq2": "x + z = 2"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var got errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "parse", got.Kind)
	assert.Equal(t, 2, got.Equation)
	assert.Equal(t, `equation 2: unrecognized token "z" at offset 4`, got.Error)
}

func TestSolve_Singular(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/solve", `{"eq1": "x + y = 2", "eq2": "2x + 2y = 4"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var got errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "singular", got.Kind)
	assert.Contains(t, got.Error, "dependent")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.outcomes.WithLabelValues("singular")))
}

func TestSolve_OutOfFloatRange(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/solve", `{"eq1": "x = 1`+strings.Repeat("0", 400)+`", "eq2": "y = 1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var got errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "range", got.Kind)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.outcomes.WithLabelValues("range")))
}

func TestSolve_RejectsBadBodies(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Server.MaxBodyBytes = 64 })
	cases := map[string]string{
		"malformed":     `{"eq1": `,
		"unknown field": `{"eq1": "x = 1", "eq2": "y = 1", "eq3": "x + y = 2"}`,
		"trailing data": `{"eq1": "x = 1", "eq2": "y = 1"} {}`,
		"too large":     `{"eq1": "` + strings.Repeat(" ", 100) + `x = 1", "eq2": "y = 1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(t, s, "/solve", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSolve_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/solve", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSolve_CacheHits(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"eq1": "x + y = 5", "eq2": "x - y = 1"}`
	require.Equal(t, http.StatusOK, post(t, s, "/solve", body).Code)
	require.Equal(t, http.StatusOK, post(t, s, "/solve", `{"eq1": "x  +  y = 5", "eq2": "x -\ny = 1"}`).Code)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.cache.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.cache.WithLabelValues("hit")))
}

func TestSolve_CacheDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Cache.Size = 0 })
	require.Equal(t, http.StatusOK, post(t, s, "/solve", `{"eq1": "x + y = 5", "eq2": "x - y = 1"}`).Code)
	assert.Nil(t, s.parser.cache)
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.cache.WithLabelValues("miss")))
}

func TestTool_SolveSystem(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/tool", `{"tool": "solve_system", "params": {"eq1": "x + y = 5", "eq2": "x - y = 1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp linsolve.ToolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, "x = 3, y = 2", resp.String)
}

func TestTool_BadJSON(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/tool", `{"tool": "solve_system"} trailing`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchemaAndHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, linsolve.MCPToolSpec(), rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "caller-supplied")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", rec.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := New(config.Default(), logger.Discard(), WithRegistry(reg))
	require.NoError(t, err)

	post(t, s, "/solve", `{"eq1": "x + y = 5", "eq2": "x - y = 1"}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `linsolve_requests_total{code="200",route="/solve"} 1`)
	assert.Contains(t, body, `linsolve_solve_outcomes_total{outcome="solved"} 1`)
}

func TestInstrument_RecoversPanic(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.withRequestID(s.instrument("/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues("/boom", "500")))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
