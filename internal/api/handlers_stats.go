package api

import (
	"net/http"

	"github.com/dgallion1/gridlock/internal/ocr"
)

// handleOCRStats reports recognition latency for the configured backend.
func (s *Server) handleOCRStats(w http.ResponseWriter, r *http.Request) {
	if s.ocrStats == nil {
		jsonError(w, "ocr stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Backend    string            `json:"backend"`
		Model      string            `json:"model,omitempty"`
		QueueDepth int               `json:"queue_depth"`
		Stats      ocr.StatsSnapshot `json:"stats"`
	}{
		Backend:    s.cfg.OCRBackend,
		Model:      s.cfg.OCRModel,
		QueueDepth: s.orchestrator.QueueDepth(),
		Stats:      s.ocrStats.Snapshot(),
	})
}
