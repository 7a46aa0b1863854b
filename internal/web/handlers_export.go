package web

import (
	"net/http"
	"strconv"

	"github.com/ai4biz/portal/internal/core"
	"github.com/ai4biz/portal/internal/export"
	"github.com/ai4biz/portal/internal/logging"
)

// renderFunc turns a snapshot into an export payload.
type renderFunc func([]core.Registration) ([]byte, error)

// handleDownloadSpreadsheet handles GET /api/admin/download/xlsx.
func (s *Server) handleDownloadSpreadsheet(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "xlsx", export.SpreadsheetContentType, s.renderer.Spreadsheet)
}

// handleDownloadDocument handles GET /api/admin/download/pdf.
func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "pdf", export.DocumentContentType, s.renderer.Document)
}

// serveExport renders the full dataset, newest first, and sends it as an
// attachment. Renders are bounded by the export limiter; the payload is
// built completely before any byte is written so a failed render never
// produces a truncated file.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, ext, contentType string, render renderFunc) {
	requested := s.now()

	if err := s.exports.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.exports.Release()

	records := s.store.List(core.Filter{})
	payload, err := render(records)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := export.Filename(requested, ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "format", ext, "error", err)
		return
	}

	core.LogAudit(r.Context(), core.AuditLogParams{
		Action:       core.ActionExportDownload,
		RowsAffected: len(records),
		Reason:       ext,
	})
}
