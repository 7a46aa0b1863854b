// Package export renders registration snapshots into downloadable reports:
// an xlsx spreadsheet and a landscape A4 PDF table.
//
// Renderers are pure functions of their input. They never query the store;
// callers pass the full dataset already ordered newest first.
package export

import (
	"fmt"
	"time"
)

const (
	// SpreadsheetContentType is the MIME type of the xlsx export.
	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// DocumentContentType is the MIME type of the PDF export.
	DocumentContentType = "application/pdf"

	filenamePrefix = "AI4Biz_Students_"

	// localeLayout matches the en-IN date-time rendering used in reports.
	localeLayout = "2/1/2006, 3:04:05 pm"
)

// RenderError reports a failed render. Nothing is emitted on failure.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer holds the presentation settings shared by both formats.
type Renderer struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the time used for the "Generated" stamp.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer returns a renderer that shows dates in loc (UTC when nil).
func NewRenderer(loc *time.Location, opts ...Option) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	r := &Renderer{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// formatLocal renders t in the renderer's location.
func (r *Renderer) formatLocal(t time.Time) string {
	return t.In(r.loc).Format(localeLayout)
}

// Filename returns the download name for an export made at t, for example
// AI4Biz_Students_2026-03-01.pdf. The date is the UTC calendar date.
func Filename(t time.Time, ext string) string {
	return filenamePrefix + t.UTC().Format("2006-01-02") + "." + ext
}
