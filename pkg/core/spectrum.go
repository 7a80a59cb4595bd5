// Package core provides the intermediate representation (IR) models and validation logic
// for mass spectrometer telemetry processed by Rosetta.
package core

import (
	"fmt"
	"math"
	"strings"
)

// Detector identifies the mass spectrometer detector that produced a file.
type Detector string

const (
	RTOF Detector = "RTOF" // Reflectron time-of-flight
	DFMS Detector = "DFMS" // Double focusing mass spectrometer
)

// detectorLayout holds the raw-data column pair and warm-up drop for a detector.
type detectorLayout struct {
	xCol, yCol int
	headDrop   int
}

var detectorLayouts = map[Detector]detectorLayout{
	RTOF: {xCol: 1, yCol: 3, headDrop: 10},
	DFMS: {xCol: 1, yCol: 2, headDrop: 5},
}

// DetectDetector resolves a DETECTOR_ID label value to a detector.
// Unknown or empty identifiers resolve to RTOF.
func DetectDetector(detectorID string) Detector {
	id := strings.ToUpper(detectorID)
	switch {
	case strings.Contains(id, string(RTOF)):
		return RTOF
	case strings.Contains(id, string(DFMS)):
		return DFMS
	default:
		return RTOF
	}
}

func (d Detector) layout() detectorLayout {
	if l, ok := detectorLayouts[d]; ok {
		return l
	}
	return detectorLayouts[RTOF]
}

// Columns returns the 0-based token indices holding the mass and the signal.
func (d Detector) Columns() (x, y int) {
	l := d.layout()
	return l.xCol, l.yCol
}

// DefaultHeadDrop returns the number of leading warm-up samples discarded by default.
func (d Detector) DefaultHeadDrop() int {
	return d.layout().headDrop
}

func (d Detector) String() string {
	return string(d)
}

// SpectralSample is one raw (mass, signal) reading with its position in the block.
type SpectralSample struct {
	X     float64
	Y     float64
	Index int
}

// CleanedSample is a baseline-centered reading. CPS may be negative.
type CleanedSample struct {
	X   float64 `json:"x"`
	CPS float64 `json:"cps"`
}

// SpectrumBin is one bucket of a summarized spectrum.
type SpectrumBin struct {
	X   float64 `json:"x"`
	CPS float64 `json:"cps"`
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Spectrum represents the cleaned output of one processed file.
type Spectrum struct {
	Detector    Detector
	FilterLevel string
	Samples     []CleanedSample

	// Internal tracking
	SourceFile string
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a spectrum meets all requirements for summarization.
func (s *Spectrum) Validate() error {
	var errs []string

	if s.Detector != RTOF && s.Detector != DFMS {
		errs = append(errs, fmt.Sprintf("unknown detector %q", s.Detector))
	}
	if len(s.Samples) == 0 {
		errs = append(errs, "at least one sample is required")
	}

	for i, sample := range s.Samples {
		if math.IsNaN(sample.X) || math.IsInf(sample.X, 0) {
			errs = append(errs, fmt.Sprintf("sample %d has invalid m/z", i))
		} else if sample.X <= 0 {
			errs = append(errs, fmt.Sprintf("sample %d m/z must be positive", i))
		}
		if math.IsNaN(sample.CPS) || math.IsInf(sample.CPS, 0) {
			errs = append(errs, fmt.Sprintf("sample %d has invalid cps", i))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// XRange returns the smallest and largest m/z of the samples.
func (s *Spectrum) XRange() Range {
	return sampleRange(s.Samples, func(c CleanedSample) float64 { return c.X })
}

// CPSRange returns the smallest and largest cps of the samples.
func (s *Spectrum) CPSRange() Range {
	return sampleRange(s.Samples, func(c CleanedSample) float64 { return c.CPS })
}

func sampleRange(samples []CleanedSample, value func(CleanedSample) float64) Range {
	if len(samples) == 0 {
		return Range{}
	}
	r := Range{Min: value(samples[0]), Max: value(samples[0])}
	for _, s := range samples[1:] {
		v := value(s)
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
	}
	return r
}

// Name returns the spectrum name in format "SourceFile/Detector"
func (s *Spectrum) Name() string {
	if s.SourceFile == "" {
		return string(s.Detector)
	}
	return fmt.Sprintf("%s/%s", s.SourceFile, s.Detector)
}
