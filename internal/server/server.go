// Package server exposes repository statistics over HTTP: a JSON API and
// a small HTML dashboard.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stahnma/gh-repostats/internal/analyzer"
	"github.com/stahnma/gh-repostats/internal/filter"
	"github.com/stahnma/gh-repostats/internal/github"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

// ErrInvalidParam is returned for malformed query parameters.
var ErrInvalidParam = errors.New("invalid parameter")

// Options configures New.
type Options struct {
	// Owner and Kind are used when a request names no owner.
	Owner  string
	Kind   github.Kind
	Logger *log.Logger
}

// Server serves the API and dashboard for one Analyzer.
type Server struct {
	analyzer *analyzer.Analyzer
	opts     Options
	logger   *log.Logger
	router   chi.Router
}

// New builds a Server and its routes.
func New(a *analyzer.Analyzer, opts Options) *Server {
	if opts.Kind == "" {
		opts.Kind = github.KindOrg
	}
	s := &Server{analyzer: a, opts: opts, logger: opts.Logger}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/repos", s.handleRepos)
		r.Get("/chart", s.handleChart)
		r.Get("/summary", s.handleSummary)
		r.Get("/cache", s.handleCache)
		r.Post("/refresh", s.handleRefresh)
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).Round(time.Millisecond),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}

// params holds the parsed query string of a request.
type params struct {
	owner  string
	kind   github.Kind
	query  filter.Query
	metric metrics.Metric
	bins   int
}

func (s *Server) parseParams(r *http.Request) (params, error) {
	q := r.URL.Query()
	p := params{
		owner:  s.opts.Owner,
		kind:   s.opts.Kind,
		query:  filter.Query{Filters: q["filter"], Sort: q.Get("sort")},
		metric: metrics.Stars,
		bins:   metrics.DefaultMaxBins,
	}
	if v := q.Get("owner"); v != "" {
		p.owner = v
	}
	if v := q.Get("kind"); v != "" {
		kind, err := github.ParseKind(v)
		if err != nil {
			return params{}, err
		}
		p.kind = kind
	}
	if v := q.Get("metric"); v != "" {
		m, err := metrics.ParseMetric(v)
		if err != nil {
			return params{}, err
		}
		p.metric = m
	}
	if v := q.Get("bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return params{}, fmt.Errorf("%w: bins=%q", ErrInvalidParam, v)
		}
		p.bins = n
	}
	return p, nil
}

// rows parses the request and returns the filtered, sorted rows.
func (s *Server) rows(r *http.Request) (params, []metrics.Row, error) {
	p, err := s.parseParams(r)
	if err != nil {
		return p, nil, err
	}
	all, err := s.analyzer.Repositories(r.Context(), p.owner, p.kind)
	if err != nil {
		return p, nil, err
	}
	rows, err := p.query.Run(all)
	return p, rows, err
}

type reposResponse struct {
	Owner         string        `json:"owner"`
	Kind          github.Kind   `json:"kind"`
	Authenticated bool          `json:"authenticated"`
	Count         int           `json:"count"`
	Repositories  []metrics.Row `json:"repositories"`
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	p, rows, err := s.rows(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reposResponse{
		Owner:         p.owner,
		Kind:          p.kind,
		Authenticated: s.analyzer.Authenticated(),
		Count:         len(rows),
		Repositories:  rows,
	})
}

type bar struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type chartResponse struct {
	Metric metrics.Metric `json:"metric"`
	Bars   []bar          `json:"bars"`
	Bins   []metrics.Bin  `json:"bins"`
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	p, rows, err := s.rows(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	chart, err := buildChart(rows, p.metric, p.bins)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func buildChart(rows []metrics.Row, m metrics.Metric, bins int) (chartResponse, error) {
	hist, err := metrics.Histogram(rows, m, bins)
	if err != nil {
		return chartResponse{}, err
	}
	resp := chartResponse{Metric: m, Bars: make([]bar, 0, len(rows)), Bins: hist}
	if resp.Bins == nil {
		resp.Bins = []metrics.Bin{}
	}
	for _, row := range rows {
		v, err := row.Value(m)
		if err != nil {
			return chartResponse{}, err
		}
		resp.Bars = append(resp.Bars, bar{Name: row.Name, Value: v})
	}
	return resp, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.rows(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics.SummarizeAll(rows))
}

func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.analyzer.CacheStats())
}

type refreshResponse struct {
	Owner string      `json:"owner,omitempty"`
	Kind  github.Kind `json:"kind,omitempty"`
	Count int         `json:"count"`
	All   bool        `json:"all"`
}

// handleRefresh refetches one owner, or empties the whole cache with all=true.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		s.analyzer.FlushAll()
		writeJSON(w, http.StatusOK, refreshResponse{All: true})
		return
	}

	p, err := s.parseParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows, err := s.analyzer.Refresh(r.Context(), p.owner, p.kind)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Owner: p.owner, Kind: p.kind, Count: len(rows)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an error to the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, github.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, github.ErrInvalidKind),
		errors.Is(err, metrics.ErrUnknownMetric),
		errors.Is(err, filter.ErrInvalidPredicate),
		errors.Is(err, analyzer.ErrMissingOwner),
		errors.Is(err, ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
