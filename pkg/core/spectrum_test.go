package core

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestSpectrumValidation(t *testing.T) {
	tests := []struct {
		name    string
		spec    *Spectrum
		wantErr bool
	}{
		{
			name: "valid spectrum",
			spec: &Spectrum{
				Detector: RTOF,
				Samples: []CleanedSample{
					{X: 12.0, CPS: 1.5},
					{X: 13.0, CPS: -0.5},
				},
			},
			wantErr: false,
		},
		{
			name: "unknown detector",
			spec: &Spectrum{
				Detector: Detector("ROSINA"),
				Samples:  []CleanedSample{{X: 12.0, CPS: 1.0}},
			},
			wantErr: true,
		},
		{
			name:    "no samples",
			spec:    &Spectrum{Detector: DFMS, Samples: []CleanedSample{}},
			wantErr: true,
		},
		{
			name: "zero m/z",
			spec: &Spectrum{
				Detector: DFMS,
				Samples:  []CleanedSample{{X: 0, CPS: 1.0}},
			},
			wantErr: true,
		},
		{
			name: "NaN cps",
			spec: &Spectrum{
				Detector: RTOF,
				Samples:  []CleanedSample{{X: 18.0, CPS: math.NaN()}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectDetector(t *testing.T) {
	tests := []struct {
		id   string
		want Detector
	}{
		{"RTOF_DATA", RTOF},
		{"rosina_rtof", RTOF},
		{"DFMS", DFMS},
		{"\"ROSINA-DFMS\"", DFMS},
		{"", RTOF},
		{"COPS", RTOF},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("id %q", tt.id), func(t *testing.T) {
			if got := DetectDetector(tt.id); got != tt.want {
				t.Errorf("DetectDetector(%q) = %s, want %s", tt.id, got, tt.want)
			}
		})
	}
}

func TestDetectorLayout(t *testing.T) {
	tests := []struct {
		det          Detector
		wantX, wantY int
		wantDrop     int
	}{
		{RTOF, 1, 3, 10},
		{DFMS, 1, 2, 5},
		{Detector("OTHER"), 1, 3, 10},
	}

	for _, tt := range tests {
		x, y := tt.det.Columns()
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("%s.Columns() = (%d, %d), want (%d, %d)", tt.det, x, y, tt.wantX, tt.wantY)
		}
		if got := tt.det.DefaultHeadDrop(); got != tt.wantDrop {
			t.Errorf("%s.DefaultHeadDrop() = %d, want %d", tt.det, got, tt.wantDrop)
		}
	}
}

func TestSpectrumRanges(t *testing.T) {
	spec := &Spectrum{
		Samples: []CleanedSample{
			{X: 20.0, CPS: 3.0},
			{X: 10.0, CPS: -1.0},
			{X: 30.0, CPS: 2.0},
		},
	}

	if got := spec.XRange(); got != (Range{Min: 10, Max: 30}) {
		t.Errorf("XRange() = %+v, want {10 30}", got)
	}
	if got := spec.CPSRange(); got != (Range{Min: -1, Max: 3}) {
		t.Errorf("CPSRange() = %+v, want {-1 3}", got)
	}
	if got := (&Spectrum{}).XRange(); got != (Range{}) {
		t.Errorf("XRange() on empty spectrum = %+v, want zero", got)
	}
}

func TestSpectrumName(t *testing.T) {
	spec := &Spectrum{
		Detector:   DFMS,
		SourceFile: "MCP_20150101.TAB",
	}

	if got, want := spec.Name(), "MCP_20150101.TAB/DFMS"; got != want {
		t.Errorf("Expected name %s, got %s", want, got)
	}
	if got := (&Spectrum{Detector: RTOF}).Name(); got != "RTOF" {
		t.Errorf("Expected name RTOF, got %s", got)
	}
}

func TestInvalidDataError(t *testing.T) {
	err := fmt.Errorf("process file: %w", NewInvalidData("no data found after END line"))

	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("errors.Is(%v, ErrInvalidData) = false", err)
	}

	var ide *InvalidDataError
	if !errors.As(err, &ide) {
		t.Fatalf("errors.As did not find *InvalidDataError in %v", err)
	}
	if ide.Reason != "no data found after END line" {
		t.Errorf("Reason = %q", ide.Reason)
	}
	if errors.Is(errors.New("other"), ErrInvalidData) {
		t.Error("unrelated error matched ErrInvalidData")
	}
}
