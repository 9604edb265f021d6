// Package server exposes linsolve over HTTP: MCP-style tool calls, a
// direct solve endpoint, the tool schema, health and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/njchilds90/linsolve"
	"github.com/njchilds90/linsolve/internal/config"
	"github.com/njchilds90/linsolve/internal/logger"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	cfg      config.ServerConfig
	log      logger.Logger
	registry *prometheus.Registry
	metrics  *metrics
	parser   *parser
	handler  http.Handler
}

type Option func(*Server)

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

func New(cfg config.Config, log logger.Logger, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg.Server, log: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)

	p, err := newParser(cfg.Cache.Size, s.metrics)
	if err != nil {
		return nil, err
	}
	s.parser = p

	mux := http.NewServeMux()
	mux.Handle("/tool", s.instrument("/tool", http.HandlerFunc(s.handleTool)))
	mux.Handle("/solve", s.instrument("/solve", http.HandlerFunc(s.handleSolve)))
	mux.Handle("/schema", s.instrument("/schema", http.HandlerFunc(s.handleSchema)))
	mux.Handle("/health", s.instrument("/health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.handler = s.withRequestID(mux)
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	s.log.Info("linsolve MCP server listening", "addr", ln.Addr().String())
	s.log.Info("  POST /tool   — execute a tool call")
	s.log.Info("  POST /solve  — solve two equations")
	s.log.Info("  GET  /schema — tool schema for agent registration")
	s.log.Info("  GET  /health — health check")
	s.log.Info("  GET  /metrics — Prometheus metrics")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// ============================================================
// Middleware
// ============================================================

type ctxKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		ctx = logger.ContextWithLogger(ctx, s.log.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		log := logger.FromContext(r.Context())

		defer func() {
			if p := recover(); p != nil {
				log.Error("panic in handler", "route", route, "panic", p, "stack", string(debug.Stack()))
				http.Error(rec, "internal server error", http.StatusInternalServerError)
			}
			elapsed := time.Since(start)
			s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			s.metrics.duration.WithLabelValues(route).Observe(elapsed.Seconds())
			log.Debug("request handled", "route", route, "method", r.Method, "status", rec.status, "elapsed", elapsed)
		}()

		next.ServeHTTP(rec, r)
	})
}

// ============================================================
// Handlers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads exactly one JSON value into v, rejecting unknown fields
// and trailing data.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

// POST /tool: handle a tool call
func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req linsolve.ToolRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp := linsolve.HandleToolCall(req)
	logger.FromContext(r.Context()).Info("tool call", "tool", req.Tool, "error", resp.Error)
	writeJSON(w, http.StatusOK, resp)
}

type solveRequest struct {
	Eq1 string `json:"eq1"`
	Eq2 string `json:"eq2"`
}

type solveResponse struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	XExact string  `json:"x_exact"`
	YExact string  `json:"y_exact"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Equation int    `json:"equation,omitempty"`
}

// POST /solve: solve two equations directly
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req solveRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "invalid_request"})
		return
	}

	log := logger.FromContext(r.Context())
	sol, err := s.parser.solve(req.Eq1, req.Eq2)
	var f linsolve.Solution
	if err == nil {
		f, err = sol.Finite()
	}
	if err != nil {
		kind := linsolve.ErrorKindOf(err)
		s.metrics.outcomes.WithLabelValues(kind).Inc()
		resp := errorResponse{Error: err.Error(), Kind: kind}
		var pe *linsolve.ParseError
		if errors.As(err, &pe) {
			resp.Equation = pe.Equation
		}
		log.Info("solve failed", "eq1", req.Eq1, "eq2", req.Eq2, "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	s.metrics.outcomes.WithLabelValues("solved").Inc()
	log.Info("system solved", "x", sol.X.RatString(), "y", sol.Y.RatString())
	writeJSON(w, http.StatusOK, solveResponse{X: f.X, Y: f.Y, XExact: sol.X.RatString(), YExact: sol.Y.RatString()})
}

// GET /schema: return tool schema for agent registration
func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, linsolve.MCPToolSpec())
}

// GET /health: liveness check
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
