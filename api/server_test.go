package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/nsenews/internal/config"
	"github.com/seenimoa/nsenews/internal/pipeline"
	"github.com/seenimoa/nsenews/pkg/models"
	"github.com/seenimoa/nsenews/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, utils.IST)

type fakeRunner struct {
	mu     sync.Mutex
	calls  int
	result models.PipelineResult
	err    error
	block  chan struct{}
}

func (f *fakeRunner) RunFull(ctx context.Context) (models.PipelineResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func (f *fakeRunner) AnalyzeArticles(ctx context.Context, articles []models.Article) models.PipelineResult {
	return models.PipelineResult{Timestamp: fixedNow, TotalArticlesScraped: len(articles)}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Output: config.OutputConfig{Dir: t.TempDir()},
		API:    config.APIConfig{CORSOrigins: []string{"http://localhost:3000"}},
	}
}

func testServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	srv := NewServer(testConfig(t), runner,
		WithLogger(quietLogger()), WithVersion("test"), WithClock(func() time.Time { return fixedNow }))
	go srv.wsHub.Run()
	t.Cleanup(srv.wsHub.Close)
	return srv
}

func analysis(id string, relevance float64, label models.SentimentLabel, published *time.Time, symbols ...string) models.Analysis {
	matches := make([]models.CompanyMatch, 0, len(symbols))
	for _, s := range symbols {
		matches = append(matches, models.CompanyMatch{Symbol: s, Confidence: 0.9})
	}
	return models.Analysis{
		ArticleID:   id,
		Title:       id,
		PublishedAt: published,
		State:       models.StateScored,
		Sentiment:   &models.SentimentSignals{Label: label},
		Companies:   &models.CompanySignals{Matched: matches, Count: len(matches)},
		Scores:      &models.Scores{Relevance: relevance, Impact: models.ImpactNeutral},
	}
}

func daysAgo(n int) *time.Time {
	t := fixedNow.AddDate(0, 0, -n)
	return &t
}

func sampleResult() models.PipelineResult {
	articles := []models.Analysis{
		analysis("fresh-positive", 0.8, models.SentimentPositive, daysAgo(1), "TCS", "INFY"),
		analysis("old-negative", 0.6, models.SentimentNegative, daysAgo(20), "TCS"),
		analysis("undated-neutral", 0.2, models.SentimentNeutral, nil, "RELIANCE"),
		{ArticleID: "broken", State: models.StateFailed, Error: "boom"},
	}
	return models.PipelineResult{
		Timestamp:        fixedNow.Add(-time.Hour),
		AnalyzedArticles: len(articles),
		RelevantArticles: 2,
		Articles:         articles,
		Summary:          models.Summary{TotalArticles: 4, ValidArticles: 3, AverageRelevance: 0.533},
	}
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// decodeInto decodes the envelope's data into v.
func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	env := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}{}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// Health / config
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, &fakeRunner{})
	rec := do(t, srv, "GET", "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("expected success=true")
	}

	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatal("data should be a map")
	}
	if data["status"] != "ok" {
		t.Errorf("status: got %q", data["status"])
	}
	if data["version"] != "test" {
		t.Errorf("version: got %v", data["version"])
	}
	if data["time_ist"] != "2024-03-15 12:00:00 IST" {
		t.Errorf("time_ist: got %v", data["time_ist"])
	}
	if data["has_results"] != false {
		t.Errorf("has_results: got %v", data["has_results"])
	}
}

func TestHandleGetConfig(t *testing.T) {
	srv := testServer(t, &fakeRunner{})
	srv.cfg.Analysis.RelevanceThreshold = 0.3
	srv.cfg.API.RefreshSchedule = "@every 5m"

	rec := do(t, srv, "GET", "/api/v1/config", "")
	var got map[string]any
	decodeInto(t, rec, &got)

	if got["refresh_schedule"] != "@every 5m" {
		t.Errorf("refresh_schedule: got %v", got["refresh_schedule"])
	}
	if _, ok := got["analysis"]; !ok {
		t.Error("missing analysis section")
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t, &fakeRunner{})
	req := httptest.NewRequest("OPTIONS", "/api/v1/results", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin: got %q", got)
	}
}

// ════════════════════════════════════════════════════════════════════
// Result views
// ════════════════════════════════════════════════════════════════════

func TestResultViews_NoData(t *testing.T) {
	srv := testServer(t, &fakeRunner{})
	for _, path := range []string{"/api/v1/results", "/api/v1/summary", "/api/v1/articles", "/api/v1/companies"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, srv, "GET", path, "")
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status: got %d, want 404", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Success || resp.Error != ErrNoResults.Error() {
				t.Errorf("resp: %+v", resp)
			}
		})
	}
}

func TestNewServer_LoadsLatest(t *testing.T) {
	cfg := testConfig(t)
	if _, err := pipeline.SaveResult(cfg.Output.Dir, sampleResult(), "run1"); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	srv := NewServer(cfg, &fakeRunner{}, WithLogger(quietLogger()))
	rec := do(t, srv, "GET", "/api/v1/results", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var res models.PipelineResult
	decodeInto(t, rec, &res)
	if len(res.Articles) != 4 || res.RelevantArticles != 2 {
		t.Errorf("result: %d articles, %d relevant", len(res.Articles), res.RelevantArticles)
	}

	rec = do(t, srv, "GET", "/api/v1/summary", "")
	var sum models.Summary
	decodeInto(t, rec, &sum)
	if sum.ValidArticles != 3 || sum.AverageRelevance != 0.533 {
		t.Errorf("summary: %+v", sum)
	}
}

func TestNewServer_CorruptLatest(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.Output.Dir, pipeline.LatestFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := NewServer(cfg, &fakeRunner{}, WithLogger(quietLogger()))
	if _, ok := srv.Latest(); ok {
		t.Error("corrupt latest file should not be loaded")
	}
}

func TestFilterArticles(t *testing.T) {
	res := sampleResult()

	tests := []struct {
		name   string
		filter ArticleFilter
		want   []string
	}{
		{"all", ArticleFilter{Sentiment: "all"}, []string{"fresh-positive", "old-negative", "undated-neutral"}},
		{"last week keeps undated", ArticleFilter{Days: 7, Sentiment: "all"}, []string{"fresh-positive", "undated-neutral"}},
		{"negative only", ArticleFilter{Sentiment: "negative"}, []string{"old-negative"}},
		{"min relevance", ArticleFilter{Sentiment: "all", MinRelevance: 0.5}, []string{"fresh-positive", "old-negative"}},
		{"limit", ArticleFilter{Sentiment: "all", Limit: 1}, []string{"fresh-positive"}},
		{"no match", ArticleFilter{Days: 7, Sentiment: "Negative"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArticles(res.Articles, tt.filter, fixedNow)
			var ids []string
			for _, a := range got {
				ids = append(ids, a.ArticleID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestHandleArticles(t *testing.T) {
	srv := testServer(t, &fakeRunner{})
	srv.setLatest(sampleResult())

	rec := do(t, srv, "GET", "/api/v1/articles?days=0&sentiment=Positive&min_relevance=0.1", "")
	var got []models.Analysis
	decodeInto(t, rec, &got)
	if len(got) != 1 || got[0].ArticleID != "fresh-positive" {
		t.Errorf("got %+v", got)
	}

	// default lookback is seven days
	rec = do(t, srv, "GET", "/api/v1/articles", "")
	got = nil
	decodeInto(t, rec, &got)
	if len(got) != 2 {
		t.Errorf("default filter: got %d articles, want 2", len(got))
	}

	for _, q := range []string{"days=-1", "days=x", "min_relevance=2", "min_relevance=abc", "limit=-3"} {
		rec := do(t, srv, "GET", "/api/v1/articles?"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", q, rec.Code)
		}
	}
}

func TestHandleCompanies(t *testing.T) {
	srv := testServer(t, &fakeRunner{})
	srv.setLatest(sampleResult())

	rec := do(t, srv, "GET", "/api/v1/companies", "")
	var got []models.CompanyCount
	decodeInto(t, rec, &got)
	want := []models.CompanyCount{{Symbol: "TCS", Count: 2}, {Symbol: "INFY", Count: 1}, {Symbol: "RELIANCE", Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] got %+v, want %+v", i, got[i], want[i])
		}
	}

	rec = do(t, srv, "GET", "/api/v1/companies?limit=1", "")
	got = nil
	decodeInto(t, rec, &got)
	if len(got) != 1 || got[0].Symbol != "TCS" {
		t.Errorf("limit=1: got %+v", got)
	}

	if rec := do(t, srv, "GET", "/api/v1/companies?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status %d", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Analyze
// ════════════════════════════════════════════════════════════════════

func TestHandleAnalyze_Validation(t *testing.T) {
	srv := testServer(t, &fakeRunner{})
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"empty list", "[]"},
		{"empty object", `{"articles": []}`},
		{"wrong shape", `{"articles": "nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "POST", "/api/v1/analyze", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Success {
				t.Error("expected success=false")
			}
		})
	}
}

func TestHandleAnalyze_Pipeline(t *testing.T) {
	p := pipeline.New(nil, nil, nil, pipeline.DefaultOptions(), quietLogger())
	srv := testServer(t, p)

	body := `[
	  {"id": "a1", "title": "Markets rally on strong earnings", "source": "Mint",
	   "content": "Indian markets posted strong growth today as several companies reported record profit and robust revenue expansion across sectors."},
	  {"id": "a2", "title": "Short", "source": "Mint", "content": "too short"}
	]`

	for _, form := range []string{body, `{"articles": ` + body + `}`} {
		rec := do(t, srv, "POST", "/api/v1/analyze", form)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
		}
		var res models.PipelineResult
		decodeInto(t, rec, &res)

		if res.AnalyzedArticles != 2 {
			t.Fatalf("analyzed: got %d, want 2", res.AnalyzedArticles)
		}
		if !res.Articles[0].Valid() {
			t.Errorf("first article should be scored: %+v", res.Articles[0])
		}
		if res.Articles[1].State != models.StateRejected {
			t.Errorf("second article state: got %q, want rejected", res.Articles[1].State)
		}
		if res.Summary.ValidArticles != 1 {
			t.Errorf("summary valid: got %d, want 1", res.Summary.ValidArticles)
		}
	}

	if _, ok := srv.Latest(); ok {
		t.Error("ad-hoc analysis must not replace the latest result")
	}
}

// ════════════════════════════════════════════════════════════════════
// Refresh / scheduler
// ════════════════════════════════════════════════════════════════════

func TestHandleRefresh(t *testing.T) {
	runner := &fakeRunner{result: sampleResult()}
	srv := testServer(t, runner)

	rec := do(t, srv, "POST", "/api/v1/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if _, ok := srv.Latest(); !ok {
		t.Fatal("refresh should publish the result")
	}
	if _, err := os.Stat(filepath.Join(srv.cfg.Output.Dir, pipeline.LatestFile)); err != nil {
		t.Errorf("latest file not written: %v", err)
	}
}

func TestHandleRefresh_Failure(t *testing.T) {
	runner := &fakeRunner{
		result: models.PipelineResult{Error: "fetch failed"},
		err:    errors.New("fetch failed"),
	}
	srv := testServer(t, runner)
	srv.setLatest(sampleResult())

	rec := do(t, srv, "POST", "/api/v1/refresh", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Error != "fetch failed" {
		t.Errorf("error: got %q", resp.Error)
	}
	latest, _ := srv.Latest()
	if len(latest.Articles) != 4 {
		t.Error("failed refresh must keep the previous result")
	}
}

func TestRefresh_InProgress(t *testing.T) {
	runner := &fakeRunner{result: sampleResult(), block: make(chan struct{})}
	srv := testServer(t, runner)

	done := make(chan error, 1)
	go func() {
		_, err := srv.Refresh(context.Background())
		done <- err
	}()

	// Wait until the first refresh is inside RunFull.
	deadline := time.Now().Add(2 * time.Second)
	for {
		runner.mu.Lock()
		calls := runner.calls
		runner.mu.Unlock()
		if calls == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first refresh never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec := do(t, srv, "POST", "/api/v1/refresh", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}

	close(runner.block)
	if err := <-done; err != nil {
		t.Errorf("first refresh: %v", err)
	}
}

func TestScheduler(t *testing.T) {
	srv := testServer(t, &fakeRunner{result: sampleResult()})

	if err := srv.StartScheduler(); err != nil {
		t.Fatalf("empty schedule: %v", err)
	}
	if srv.sched != nil {
		t.Error("empty schedule should not start cron")
	}

	srv.cfg.API.RefreshSchedule = "@every 1h"
	if err := srv.StartScheduler(); err != nil {
		t.Fatalf("StartScheduler: %v", err)
	}
	if n := len(srv.sched.Entries()); n != 1 {
		t.Errorf("cron entries: got %d, want 1", n)
	}
	srv.StopScheduler()
	if srv.sched != nil {
		t.Error("StopScheduler should clear the scheduler")
	}

	srv.cfg.API.RefreshSchedule = "every now and then"
	if err := srv.StartScheduler(); err == nil {
		t.Error("invalid schedule should fail")
	}
}

// ════════════════════════════════════════════════════════════════════
// WebSocket
// ════════════════════════════════════════════════════════════════════

func dialWS(t *testing.T, srv *Server) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	hs := httptest.NewServer(srv.Router())
	t.Cleanup(hs.Close)

	url := "ws" + strings.TrimPrefix(hs.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for srv.wsHub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn, hs
}

func readWS(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocket_AnalysisComplete(t *testing.T) {
	srv := testServer(t, &fakeRunner{result: sampleResult()})
	conn, hs := dialWS(t, srv)

	resp, err := http.Post(hs.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	resp.Body.Close()

	msg := readWS(t, conn)
	if msg.Type != "analysis_complete" {
		t.Fatalf("type: got %q", msg.Type)
	}
	data, ok := msg.Data.(map[string]any)
	if !ok || data["analyzed_articles"] != float64(4) {
		t.Errorf("data: %+v", msg.Data)
	}
}

func TestWebSocket_ClientRequests(t *testing.T) {
	srv := testServer(t, &fakeRunner{})
	conn, _ := dialWS(t, srv)

	if err := conn.WriteJSON(WSMessage{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	if msg := readWS(t, conn); msg.Type != "pong" {
		t.Errorf("ping: got %q", msg.Type)
	}

	if err := conn.WriteJSON(WSMessage{Type: "get_summary"}); err != nil {
		t.Fatal(err)
	}
	if msg := readWS(t, conn); msg.Type != "error" {
		t.Errorf("get_summary without results: got %q", msg.Type)
	}

	srv.setLatest(sampleResult())
	if err := conn.WriteJSON(WSMessage{Type: "get_summary"}); err != nil {
		t.Fatal(err)
	}
	msg := readWS(t, conn)
	data, _ := msg.Data.(map[string]any)
	if msg.Type != "summary" || data["valid_articles"] != float64(3) {
		t.Errorf("get_summary: %+v", msg)
	}
}

func TestWSHub_Close(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 1)}
	hub.Register(client)
	hub.Close()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client channel not closed")
	}
	// Unregister after Close must not block.
	hub.Unregister(client)
}
