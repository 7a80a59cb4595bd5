package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ChrisMcGann/rosetta/pkg/core"
	"github.com/ChrisMcGann/rosetta/pkg/filter"
	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
	"github.com/ChrisMcGann/rosetta/pkg/summary"
)

const (
	inchToMm              = 25.4
	pdfPageWidthLandscape = 11 * inchToMm // Letter landscape
	pdfPageHeight         = 8.5 * inchToMm
	pdfMargin             = 0.5 * inchToMm
	pdfContentWidth       = pdfPageWidthLandscape - (2 * pdfMargin)
	lineHeight            = 6.0
	plotImageName         = "spectrum.png"
)

// Report gathers what is printed in a PDF report. Header, Plot and Conclusion
// are optional.
type Report struct {
	Spectrum   *core.Spectrum
	Header     *label.Header
	Params     filter.Params
	Summary    *summary.Summary
	Plot       []byte
	Conclusion string
	Generated  time.Time
}

// pdfStyler holds the styles used across the report.
type pdfStyler struct {
	pdf    *gofpdf.Fpdf
	styles map[string]func()
	tr     func(string) string // UTF-8 to the core fonts' code page
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:    pdf,
		styles: make(map[string]func()),
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
	s.styles["h1"] = func() { pdf.SetFont("Arial", "B", 16) }
	s.styles["h2"] = func() { pdf.SetFont("Arial", "B", 13) }
	s.styles["normal"] = func() { pdf.SetFont("Arial", "", 10) }
	s.styles["tableHeader"] = func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200) // Light grey
	}
	s.styles["tableCell"] = func() { pdf.SetFont("Arial", "", 9) }
	return s
}

func (s *pdfStyler) apply(style string) {
	if fn, ok := s.styles[style]; ok {
		fn()
		return
	}
	s.styles["normal"]()
}

func (s *pdfStyler) paragraph(text, style, align string) {
	s.apply(style)
	s.pdf.MultiCell(pdfContentWidth, lineHeight, s.tr(text), "", align, false)
	s.pdf.Ln(1)
}

// table writes a header row and body rows with equal column widths,
// starting a new page when the body would run off the current one.
func (s *pdfStyler) table(headers []string, rows [][]string) {
	width := pdfContentWidth / float64(len(headers))
	header := func() {
		s.apply("tableHeader")
		for _, h := range headers {
			s.pdf.CellFormat(width, lineHeight, h, "1", 0, "C", true, 0, "")
		}
		s.pdf.Ln(-1)
		s.apply("tableCell")
	}

	header()
	for _, row := range rows {
		if s.pdf.GetY()+lineHeight > pdfPageHeight-pdfMargin {
			s.pdf.AddPage()
			header()
		}
		for _, cell := range row {
			s.pdf.CellFormat(width, lineHeight, s.tr(cell), "1", 0, "C", false, 0, "")
		}
		s.pdf.Ln(-1)
	}
	s.pdf.Ln(2)
}

func buildPDF(rep *Report) (*gofpdf.Fpdf, error) {
	if rep.Spectrum == nil || rep.Summary == nil {
		return nil, fmt.Errorf("report needs a spectrum and its summary")
	}
	spec, sum := rep.Spectrum, rep.Summary
	generated := rep.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	pdf := gofpdf.New("L", "mm", "Letter", "") // Landscape, mm, Letter size
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	s := newPDFStyler(pdf)
	s.paragraph("Rosetta Spectrum Report", "h1", "C")
	s.paragraph(fmt.Sprintf("%s  -  generated %s", spec.Name(), generated.Format("2006-01-02 15:04")), "normal", "C")
	pdf.Ln(3)

	s.paragraph("Run", "h2", "L")
	rows := [][]string{
		{"Detector", string(spec.Detector)},
		{"Filter level", spec.FilterLevel},
		{"Head drop", fmt.Sprintf("%d", rep.Params.HeadDrop)},
		{"MAD multiplier", fmt.Sprintf("%g", rep.Params.MADMultiplier)},
		{"CPS threshold", fmt.Sprintf("%g", rep.Params.CPSThreshold)},
		{"Cleaned points", fmt.Sprintf("%d", sum.TotalPoints)},
		{"m/z range", fmt.Sprintf("%.3f - %.3f", sum.XRange.Min, sum.XRange.Max)},
		{"cps range", fmt.Sprintf("%.3f - %.3f", sum.CPSRange.Min, sum.CPSRange.Max)},
	}
	if h := rep.Header; h != nil {
		for _, kv := range [][2]string{
			{"Instrument", h.InstrumentID},
			{"Detector ID", h.DetectorID},
			{"Product ID", h.ProductID},
			{"Start time", h.StartTime},
			{"Stop time", h.StopTime},
		} {
			if kv[1] != "" {
				rows = append(rows, []string{kv[0], kv[1]})
			}
		}
	}
	s.table([]string{"Field", "Value"}, rows)

	if len(rep.Plot) > 0 {
		pdf.RegisterImageReader(plotImageName, "PNG", bytes.NewReader(rep.Plot))
		width := pdfContentWidth
		height := width * PlotHeight / PlotWidth
		if pdf.GetY()+height > pdfPageHeight-pdfMargin {
			pdf.AddPage()
		}
		pdf.Image(plotImageName, pdfMargin, pdf.GetY(), width, height, true, "PNG", 0, "")
		pdf.Ln(2)
	}

	if rep.Conclusion != "" {
		s.paragraph("Conclusion", "h2", "L")
		s.paragraph(rep.Conclusion, "normal", "L")
	}

	s.paragraph("Binned spectrum", "h2", "L")
	binRows := make([][]string, len(sum.Bins))
	for i, b := range sum.Bins {
		binRows[i] = []string{fmt.Sprintf("%d", i+1), fmt.Sprintf("%.3f", b.X), fmt.Sprintf("%.3f", b.CPS)}
	}
	s.table([]string{"Bin", "m/z", "cps"}, binRows)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build PDF: %w", err)
	}
	return pdf, nil
}

// WritePDF renders the report to w.
func WritePDF(w io.Writer, rep *Report) error {
	pdf, err := buildPDF(rep)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// WritePDFFile renders the report to the file at path.
func WritePDFFile(path string, rep *Report) error {
	pdf, err := buildPDF(rep)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}
