// Package report renders processed spectra as PNG plots and PDF reports.
package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ChrisMcGann/rosetta/pkg/core"
)

// Plot dimensions in points.
const (
	PlotWidth  = 800
	PlotHeight = 400
)

var (
	sampleColor = color.Gray{Y: 170}
	binColor    = color.RGBA{B: 200, A: 255}
)

// SpectrumPlot draws the non-negative cleaned samples as points and the
// binned spectrum as a line, and returns the PNG bytes.
func SpectrumPlot(spec *core.Spectrum, bins []core.SpectrumBin) ([]byte, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("no bins to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s spectrum (%s filter)", spec.Detector, spec.FilterLevel)
	if spec.SourceFile != "" {
		p.Title.Text = fmt.Sprintf("%s: %s", spec.SourceFile, p.Title.Text)
	}
	p.X.Label.Text = "m/z"
	p.Y.Label.Text = "cps"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(spec.Samples))
	for _, s := range spec.Samples {
		if s.CPS >= 0 {
			pts = append(pts, plotter.XY{X: s.X, Y: s.CPS})
		}
	}
	if len(pts) > 0 {
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create sample scatter: %v", err)
		}
		scatter.GlyphStyle.Color = sampleColor
		scatter.GlyphStyle.Radius = vg.Points(1)
		p.Add(scatter)
		p.Legend.Add("cleaned samples", scatter)
	}

	binPts := make(plotter.XYs, len(bins))
	for i, b := range bins {
		binPts[i] = plotter.XY{X: b.X, Y: b.CPS}
	}
	line, err := plotter.NewLine(binPts)
	if err != nil {
		return nil, fmt.Errorf("failed to create bin line: %v", err)
	}
	line.Color = binColor
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("%d-bin summary", len(bins)), line)

	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)

	writer, err := p.WriterTo(vg.Points(PlotWidth), vg.Points(PlotHeight), "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}
