// Package api provides the HTTP API behind the news dashboard.
//
// It serves the latest pipeline result and filtered views of it, analyzes
// posted articles on demand, refreshes on a cron schedule, and pushes
// completion events to WebSocket clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"

	"github.com/seenimoa/nsenews/internal/batch"
	"github.com/seenimoa/nsenews/internal/config"
	"github.com/seenimoa/nsenews/internal/pipeline"
	"github.com/seenimoa/nsenews/pkg/models"
	"github.com/seenimoa/nsenews/pkg/utils"
)

// maxBodyBytes bounds POST /api/v1/analyze payloads.
const maxBodyBytes = 10 << 20

var (
	// ErrNoResults is reported when no analysis has been run or loaded yet.
	ErrNoResults = errors.New("no analysis results available")
	// ErrRefreshInProgress is returned when a refresh is already running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// Runner is the analysis pipeline the server drives.
type Runner interface {
	RunFull(ctx context.Context) (models.PipelineResult, error)
	AnalyzeArticles(ctx context.Context, articles []models.Article) models.PipelineResult
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	runner  Runner
	wsHub   *WSHub
	sched   *cron.Cron
	logger  *slog.Logger
	version string
	now     func() time.Time

	mu     sync.RWMutex
	latest *models.PipelineResult

	refreshing sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithClock overrides the clock used for date filters.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a configured API server. The latest saved result in
// cfg.Output.Dir, if any, is loaded so the dashboard has data at start.
func NewServer(cfg *config.Config, runner Runner, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		runner:  runner,
		wsHub:   NewWSHub(),
		logger:  slog.Default(),
		version: "dev",
		now:     utils.NowIST,
	}
	for _, o := range opts {
		o(s)
	}

	if cfg.Output.Dir != "" {
		res, err := pipeline.LoadLatest(cfg.Output.Dir)
		switch {
		case err == nil:
			s.latest = &res
		case !errors.Is(err, os.ErrNotExist):
			s.logger.Warn("could not load latest result", "dir", cfg.Output.Dir, "error", err)
		}
	}

	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub { return s.wsHub }

// Latest returns the most recent result, if any.
func (s *Server) Latest() (models.PipelineResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return models.PipelineResult{}, false
	}
	return *s.latest, true
}

func (s *Server) setLatest(res models.PipelineResult) {
	s.mu.Lock()
	s.latest = &res
	s.mu.Unlock()
}

// ListenAndServe starts the hub, the refresh schedule and the HTTP server,
// shutting down gracefully on SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()
	defer s.wsHub.Close()

	if err := s.StartScheduler(); err != nil {
		return err
	}
	defer s.StopScheduler()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-done:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// StartScheduler registers the cron refresh job when a schedule is set.
func (s *Server) StartScheduler() error {
	spec := strings.TrimSpace(s.cfg.API.RefreshSchedule)
	if spec == "" || s.sched != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, s.scheduledRefresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()
	s.sched = c
	s.logger.Info("refresh scheduled", "spec", spec)
	return nil
}

// StopScheduler stops the cron job and waits for a running refresh.
func (s *Server) StopScheduler() {
	if s.sched == nil {
		return
	}
	<-s.sched.Stop().Done()
	s.sched = nil
}

func (s *Server) scheduledRefresh() {
	if _, err := s.Refresh(context.Background()); err != nil {
		s.logger.Warn("scheduled refresh failed", "error", err)
	}
}

// Refresh runs the full pipeline, then saves and publishes its result. A
// failed run keeps the previous result and notifies clients instead.
func (s *Server) Refresh(ctx context.Context) (models.PipelineResult, error) {
	if !s.refreshing.TryLock() {
		return models.PipelineResult{}, ErrRefreshInProgress
	}
	defer s.refreshing.Unlock()

	res, err := s.runner.RunFull(ctx)
	if err != nil {
		s.wsHub.Broadcast(WSMessage{Type: "analysis_failed", Data: map[string]any{"error": err.Error()}})
		return res, err
	}
	s.publish(res)
	return res, nil
}

func (s *Server) publish(res models.PipelineResult) {
	s.setLatest(res)
	if s.cfg.Output.Dir != "" {
		if _, err := pipeline.SaveResult(s.cfg.Output.Dir, res, ""); err != nil {
			s.logger.Error("saving result failed", "error", err)
		}
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "analysis_complete",
		Data: map[string]any{
			"timestamp":          res.Timestamp,
			"analyzed_articles":  res.AnalyzedArticles,
			"relevant_articles":  res.RelevantArticles,
			"execution_time_sec": res.ExecutionTimeSeconds,
		},
	})
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/config", s.handleGetConfig)

		r.Get("/results", s.handleResults)
		r.Get("/summary", s.handleSummary)
		r.Get("/articles", s.handleArticles)
		r.Get("/companies", s.handleCompanies)

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/refresh", s.handleRefresh)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AnalyzeRequest is the object form of the POST /api/v1/analyze body. A
// bare JSON array of articles is accepted too.
type AnalyzeRequest struct {
	Articles []models.Article `json:"articles"`
}

// ArticleFilter holds the dashboard query parameters.
type ArticleFilter struct {
	Days         int     // only articles published within Days; 0 keeps all
	Sentiment    string  // sentiment label or "all"
	MinRelevance float64 // minimum relevance score
	Limit        int     // 0 means no limit
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	latest, ok := s.Latest()
	data := map[string]any{
		"status":      "ok",
		"version":     s.version,
		"time_ist":    utils.FormatDateTimeIST(s.now()),
		"has_results": ok,
		"ws_clients":  s.wsHub.ClientCount(),
	}
	if ok {
		data["last_run"] = latest.Timestamp
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	res, ok := s.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, ErrNoResults.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res, ok := s.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, ErrNoResults.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res.Summary})
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	res, ok := s.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, ErrNoResults.Error())
		return
	}
	f, err := parseArticleFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: FilterArticles(res.Articles, f, s.now())})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	res, ok := s.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, ErrNoResults.Error())
		return
	}
	counts := batch.CompanyMentions(res.Articles)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if n > 0 && n < len(counts) {
			counts = counts[:n]
		}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: counts})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	articles, err := decodeArticles(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(articles) == 0 {
		writeError(w, http.StatusBadRequest, "no articles provided")
		return
	}

	res := s.runner.AnalyzeArticles(r.Context(), articles)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	res, err := s.Refresh(ctx)
	switch {
	case errors.Is(err, ErrRefreshInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeJSON(w, http.StatusBadGateway, APIResponse{Success: false, Data: res, Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res})
	}
}

// ============================================================
// Helpers
// ============================================================

func decodeArticles(body io.Reader) ([]models.Article, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []models.Article
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("invalid article list: %w", err)
		}
		return list, nil
	}

	var req AnalyzeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return req.Articles, nil
}

func parseArticleFilter(r *http.Request) (ArticleFilter, error) {
	q := r.URL.Query()
	f := ArticleFilter{Days: 7, Sentiment: "all"}

	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("days must be a non-negative integer")
		}
		f.Days = n
	}
	if v := q.Get("sentiment"); v != "" {
		f.Sentiment = v
	}
	if v := q.Get("min_relevance"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil || x < 0 || x > 1 {
			return f, errors.New("min_relevance must be a number in [0,1]")
		}
		f.MinRelevance = x
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("limit must be a non-negative integer")
		}
		f.Limit = n
	}
	return f, nil
}

// FilterArticles applies the dashboard filters to valid analyses and
// returns them by relevance, highest first. Undated articles pass the
// date filter.
func FilterArticles(analyses []models.Analysis, f ArticleFilter, now time.Time) []models.Analysis {
	out := make([]models.Analysis, 0, len(analyses))
	for _, a := range batch.FilterRelevant(analyses, f.MinRelevance) {
		if f.Days > 0 && a.PublishedAt != nil && !utils.WithinDays(*a.PublishedAt, now, f.Days) {
			continue
		}
		if f.Sentiment != "" && !strings.EqualFold(f.Sentiment, "all") &&
			!strings.EqualFold(f.Sentiment, string(a.SentimentLabel())) {
			continue
		}
		out = append(out, a)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
