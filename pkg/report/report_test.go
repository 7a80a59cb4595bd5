package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ChrisMcGann/rosetta/pkg/core"
	"github.com/ChrisMcGann/rosetta/pkg/filter"
	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
	"github.com/ChrisMcGann/rosetta/pkg/summary"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testSpectrum() *core.Spectrum {
	samples := make([]core.CleanedSample, 200)
	for i := range samples {
		cps := float64(i%13) - 2
		samples[i] = core.CleanedSample{X: 10 + float64(i)*0.25, CPS: cps}
	}
	return &core.Spectrum{
		Detector:    core.RTOF,
		FilterLevel: "high",
		Samples:     samples,
		SourceFile:  "rtof.tab",
	}
}

func TestSpectrumPlot(t *testing.T) {
	spec := testSpectrum()
	bins := summary.Summarize(spec.Samples, summary.DefaultBins)

	png, err := SpectrumPlot(spec, bins)
	if err != nil {
		t.Fatalf("SpectrumPlot() error = %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("SpectrumPlot() output is not a PNG (%d bytes)", len(png))
	}

	if _, err := SpectrumPlot(spec, nil); err == nil {
		t.Error("SpectrumPlot() expected error without bins")
	}
}

func TestWritePDF(t *testing.T) {
	spec := testSpectrum()
	sum, err := summary.Build(spec)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	png, err := SpectrumPlot(spec, sum.Bins)
	if err != nil {
		t.Fatalf("SpectrumPlot() error = %v", err)
	}

	rep := &Report{
		Spectrum:   spec,
		Header:     &label.Header{InstrumentID: "ROSINA", DetectorID: "RTOF_DATA"},
		Params:     filter.Params{HeadDrop: 10, MADMultiplier: 10, CPSThreshold: 5},
		Summary:    sum,
		Plot:       png,
		Conclusion: "Signal dominated by water group ions.",
		Generated:  time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, rep); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("WritePDF() output does not start with %%PDF-")
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := WritePDFFile(path, rep); err != nil {
		t.Fatalf("WritePDFFile() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() == 0 {
		t.Error("WritePDFFile() wrote an empty file")
	}
}

func TestWritePDFWithoutOptionalParts(t *testing.T) {
	spec := testSpectrum()
	sum, _ := summary.Build(spec)

	var buf bytes.Buffer
	if err := WritePDF(&buf, &Report{Spectrum: spec, Summary: sum}); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}

	if err := WritePDF(&buf, &Report{Spectrum: spec}); err == nil {
		t.Error("WritePDF() expected error without summary")
	}
}
