package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ai4biz/portal/internal/core"
	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 30.0
	rowHeight    = 18.0
	headerHeight = 22.0
	fontSize     = 7.5
	cellPadding  = 3.0

	// tableTop is where the header row starts on the first page, below
	// the title and subtitle.
	tableTop = 70.0

	documentTitle  = "AI4Biz – Student Registrations Report"
	documentFooter = "AI4Biz – Basunagar, Madhyamgram | Confidential Admin Report"
)

type rgb struct{ r, g, b int }

var (
	headerFill   = rgb{0x1e, 0x29, 0x3b}
	headerText   = rgb{0xff, 0xff, 0xff}
	bodyText     = rgb{0x33, 0x41, 0x55}
	zebraFill    = rgb{0xf8, 0xfa, 0xfc}
	borderColor  = rgb{0xe2, 0xe8, 0xf0}
	subtitleText = rgb{0x64, 0x74, 0x8b}
	footerText   = rgb{0x94, 0xa3, 0xb8}
)

type column struct {
	label string
	width float64
}

var documentColumns = []column{
	{"#", 22},
	{"Student ID", 72},
	{"Name", 100},
	{"Email", 130},
	{"Phone", 72},
	{"Board", 58},
	{"Class", 80},
	{"Demo", 65},
	{"Enrolled", 65},
	{"Payment", 78},
}

// rowSlot is where a data row lands. newPage marks rows that start a page,
// which must be preceded by a fresh header row.
type rowSlot struct {
	page    int
	y       float64
	newPage bool
}

// layoutRows assigns each of n data rows a page and vertical position. The
// page-break check runs before every row: a row that would cross the bottom
// margin moves to a new page under a repeated header.
func layoutRows(n int, pageHeight float64) []rowSlot {
	slots := make([]rowSlot, n)
	page := 1
	y := tableTop + headerHeight
	for i := range slots {
		newPage := false
		if y+rowHeight > pageHeight-pageMargin {
			page++
			y = pageMargin + headerHeight
			newPage = true
		}
		slots[i] = rowSlot{page: page, y: y, newPage: newPage}
		y += rowHeight
	}
	return slots
}

// Document renders records as a paginated landscape A4 table.
func (r *Renderer) Document(records []core.Registration) ([]byte, error) {
	pdf, err := r.buildDocument(records)
	if err == nil {
		var buf bytes.Buffer
		if err = pdf.Output(&buf); err == nil {
			return buf.Bytes(), nil
		}
	}
	return nil, &RenderError{Format: "pdf", Err: err}
}

// buildDocument lays out the whole document in memory.
func (r *Renderer) buildDocument(records []core.Registration) (*fpdf.Fpdf, error) {
	now := r.now()

	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetCreationDate(now)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(documentTitle), false)
	pdf.SetAuthor("AI4Biz", false)

	pageW, pageH := pdf.GetPageSize()
	tableW := pageW - 2*pageMargin

	w := &docWriter{pdf: pdf, tr: tr, tableW: tableW}

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	setText(pdf, bodyText)
	pdf.SetXY(pageMargin, pageMargin)
	pdf.CellFormat(tableW, 20, tr(documentTitle), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, subtitleText)
	pdf.SetX(pageMargin)
	subtitle := fmt.Sprintf("Generated: %s  |  Total: %d student(s)", r.formatLocal(now), len(records))
	pdf.CellFormat(tableW, 12, tr(subtitle), "", 1, "C", false, 0, "")

	w.row(tableTop, headerCells(), true, false)

	y := tableTop + headerHeight
	for i, slot := range layoutRows(len(records), pageH) {
		if slot.newPage {
			pdf.AddPage()
			w.row(pageMargin, headerCells(), true, false)
		}
		rec := records[i]
		cells := []string{
			strconv.Itoa(i + 1),
			core.DisplayID(rec.ID),
			rec.FullName,
			rec.Email,
			rec.Phone,
			string(rec.Board),
			string(rec.ClassCompleted),
			string(rec.DemoStatus),
			string(rec.EnrollmentStatus),
			string(rec.PaymentStatus),
		}
		w.row(slot.y, cells, false, i%2 == 0)
		y = slot.y + rowHeight
	}

	// Footer, once at the end of the document.
	footerY := y + 6
	if footerY+10 > pageH-pageMargin {
		pdf.AddPage()
		footerY = pageMargin
	}
	pdf.SetFont("Helvetica", "", 8)
	setText(pdf, footerText)
	pdf.SetXY(pageMargin, footerY)
	pdf.CellFormat(tableW, 10, tr(documentFooter), "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return pdf, nil
}

func headerCells() []string {
	cells := make([]string, len(documentColumns))
	for i, c := range documentColumns {
		cells[i] = c.label
	}
	return cells
}

type docWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	tableW float64
}

// row draws one table row at y: background, cell text, then the border.
func (w *docWriter) row(y float64, cells []string, header, shaded bool) {
	pdf := w.pdf
	h := rowHeight
	style := ""
	text := bodyText
	if header {
		h = headerHeight
		style = "B"
		text = headerText
		setFill(pdf, headerFill)
		pdf.Rect(pageMargin, y, w.tableW, h, "F")
	} else if shaded {
		setFill(pdf, zebraFill)
		pdf.Rect(pageMargin, y, w.tableW, h, "F")
	}

	pdf.SetFont("Helvetica", style, fontSize)
	setText(pdf, text)
	x := pageMargin
	for i, c := range cells {
		cw := documentColumns[i].width
		pdf.SetXY(x+cellPadding, y)
		pdf.CellFormat(cw-2*cellPadding, h, w.fit(c, cw-2*cellPadding), "", 0, "LM", false, 0, "")
		x += cw
	}

	setDraw(pdf, borderColor)
	pdf.Rect(pageMargin, y, w.tableW, h, "D")
}

// fit translates s and shortens it with an ellipsis until it fits width.
func (w *docWriter) fit(s string, width float64) string {
	out := w.tr(s)
	if w.pdf.GetStringWidth(out) <= width {
		return out
	}
	ellipsis := w.tr("…")
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		out = w.tr(string(runes)) + ellipsis
		if w.pdf.GetStringWidth(out) <= width {
			return out
		}
	}
	return ellipsis
}

func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
