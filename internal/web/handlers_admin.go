package web

import (
	"net/http"
	"strconv"

	"github.com/ai4biz/portal/internal/core"
	"github.com/ai4biz/portal/internal/logging"
	mw "github.com/ai4biz/portal/internal/web/middleware"
	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type studentsResponse struct {
	Success    bool              `json:"success"`
	Data       []core.RecordView `json:"data"`
	Pagination core.Pagination   `json:"pagination"`
}

// handleLogin handles POST /api/admin/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		logging.FromContext(r.Context()).Warn("admin login failed",
			"username", req.Username,
			"ip", mw.ClientIP(r),
		)
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("admin login", "username", req.Username, "ip", mw.ClientIP(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"message": "Login successful",
	})
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseFilter reads the list query parameters.
func parseFilter(r *http.Request) core.Filter {
	q := r.URL.Query()
	return core.Filter{
		Search:           q.Get("search"),
		DemoStatus:       q.Get("demoStatus"),
		EnrollmentStatus: q.Get("enrollmentStatus"),
		PaymentStatus:    q.Get("paymentStatus"),
		Page:             parseIntParam(r, "page", core.DefaultPage),
		Limit:            parseIntParam(r, "limit", core.DefaultLimit),
	}
}

// handleListStudents handles GET /api/admin/students.
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	page := s.store.Query(parseFilter(r))

	views := make([]core.RecordView, len(page.Records))
	for i, rec := range page.Records {
		views[i] = core.View(rec)
	}
	writeJSON(w, http.StatusOK, studentsResponse{
		Success:    true,
		Data:       views,
		Pagination: page.Pagination,
	})
}

// handleStats handles GET /api/admin/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    s.store.Stats(),
	})
}

// handleUpdateStatus handles PATCH /api/admin/students/{id}. Only the three
// status fields are read from the body; anything else is ignored.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var update core.StatusUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		s.respondError(w, r, err)
		return
	}

	rec, err := s.store.UpdateStatus(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Status updated.",
		"data":    core.View(rec),
	})
}

// handleDeleteStudent handles DELETE /api/admin/students/{id}.
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Student record deleted.",
	})
}

// handleReload handles POST /api/admin/reload. It re-reads the persisted
// dataset, for use after a backup has been restored out of band.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reload(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Dataset reloaded.",
		"data":    map[string]int{"total": s.store.Len()},
	})
}
