package api

import (
	"net/http"

	"github.com/seenimoa/nsenews/internal/config"
)

// ConfigResponse is the JSON body returned by GET /api/v1/config.
type ConfigResponse struct {
	Analysis  config.AnalysisConfig  `json:"analysis"`
	Sentiment config.SentimentConfig `json:"sentiment"`
	Sources   []config.SourceConfig  `json:"sources,omitempty"`
	Fetch     config.FetchConfig     `json:"fetch"`
	Refresh   string                 `json:"refresh_schedule"`
}

// handleGetConfig returns the analysis settings the server runs with, so
// the dashboard can label thresholds and lookback windows.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Analysis:  s.cfg.Analysis,
			Sentiment: s.cfg.Sentiment,
			Sources:   s.cfg.Sources,
			Fetch:     s.cfg.Fetch,
			Refresh:   s.cfg.API.RefreshSchedule,
		},
	})
}
