package web

import (
	"net/http"
	"time"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "AI4Biz Portal API is running",
		"storage":   s.store.StorageName(),
		"records":   s.store.Len(),
		"exports":   s.exports.Status(),
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}
