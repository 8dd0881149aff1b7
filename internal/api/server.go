// Package api serves the published award dataset over HTTP.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/aggregate"
	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/config"
	"github.com/JakeFAU/awards-crawler/internal/emit"
	"github.com/JakeFAU/awards-crawler/internal/metrics"
)

const requestTimeout = 30 * time.Second

// Server answers read-only queries against the last emitted dataset.
type Server struct {
	router chi.Router
	store  award.BlobReader
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store award.BlobReader, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	s := &Server{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Get("/awards", s.listAwards)
		r.Get("/years", s.listYears)
		r.Get("/categories", s.listCategories)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz succeeds once a dataset has been published.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.load(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type awardsResponse struct {
	Count   int            `json:"count"`
	Records []award.Record `json:"records"`
}

func (s *Server) listAwards(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, ok := s.dataset(w, r)
	if !ok {
		return
	}
	out := make([]award.Record, 0, len(records))
	for _, rec := range records {
		if f.match(rec) {
			out = append(out, rec)
		}
	}
	writeJSON(w, http.StatusOK, awardsResponse{Count: len(out), Records: out})
}

type yearSummary struct {
	Year       int      `json:"year"`
	Count      int      `json:"count"`
	Categories []string `json:"categories"`
}

func (s *Server) listYears(w http.ResponseWriter, r *http.Request) {
	records, ok := s.dataset(w, r)
	if !ok {
		return
	}
	groups := aggregate.Partition(records)
	out := make([]yearSummary, 0, len(groups))
	for _, g := range groups {
		cats := make([]string, 0, len(g.Categories))
		for _, c := range g.Categories {
			cats = append(cats, c.Name)
		}
		out = append(out, yearSummary{Year: g.Year, Count: g.Count(), Categories: cats})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	records, ok := s.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": aggregate.Categories(records)})
}

// dataset loads the records or writes the matching error response.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) ([]award.Record, bool) {
	records, err := s.load(r.Context())
	switch {
	case err == nil:
		return records, true
	case errors.Is(err, award.ErrObjectNotFound):
		writeError(w, http.StatusNotFound, "dataset not published")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusRequestTimeout, err.Error())
	default:
		s.logger.Error("load dataset failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load dataset failed")
	}
	return nil, false
}

func (s *Server) load(ctx context.Context) ([]award.Record, error) {
	raw, err := s.store.GetObject(ctx, emit.PathWinnersJSON)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", emit.PathWinnersJSON, err)
	}
	var records []award.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", emit.PathWinnersJSON, err)
	}
	return records, nil
}

type filter struct {
	year     int
	category string
	rank     int
	query    string
}

func parseFilter(r *http.Request) (filter, error) {
	q := r.URL.Query()
	var f filter
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year <= 0 {
			return filter{}, fmt.Errorf("invalid year %q", v)
		}
		f.year = year
	}
	if v := q.Get("rank"); v != "" {
		rank, err := strconv.Atoi(v)
		if err != nil || rank <= 0 {
			return filter{}, fmt.Errorf("invalid rank %q", v)
		}
		f.rank = rank
	}
	f.category = strings.TrimSpace(q.Get("category"))
	f.query = strings.ToLower(strings.TrimSpace(q.Get("q")))
	return f, nil
}

func (f filter) match(rec award.Record) bool {
	if f.year != 0 && rec.Year != f.year {
		return false
	}
	if f.rank != 0 && rec.Rank != f.rank {
		return false
	}
	if f.category != "" && !strings.EqualFold(rec.Category, f.category) {
		return false
	}
	if f.query != "" {
		hay := strings.ToLower(rec.Project + " " + rec.Company + " " + rec.Agency)
		if !strings.Contains(hay, f.query) {
			return false
		}
	}
	return true
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			reqID, _ := r.Context().Value(requestIDKey{}).(string)
			logger.Info("request completed",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec), zap.String("path", r.URL.Path))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
