// Package filter provides baseline correction and outlier rejection for raw spectra
package filter

import (
	"math"
	"strings"

	"github.com/ChrisMcGann/rosetta/pkg/core"
)

// Level selects the strictness profile of the cleaner.
type Level string

const (
	High Level = "high" // strict outlier rejection
	Low  Level = "low"  // permissive, keeps centred non-negative signal
)

// madEpsilon keeps MAD positive on constant data.
const madEpsilon = 1e-12

// ParseLevel maps a user-supplied level to a Level. Unknown values select High.
func ParseLevel(s string) Level {
	if Level(strings.ToLower(strings.TrimSpace(s))) == Low {
		return Low
	}
	return High
}

// Overrides holds optional per-call replacements for profile defaults.
// A nil field keeps the default.
type Overrides struct {
	HeadDrop          *int
	MADMultiplierRTOF *float64
	CPSThresholdRTOF  *float64
	MADMultiplierDFMS *float64
	CPSThresholdDFMS  *float64
}

// Params are the resolved cleaning parameters for one detector and level.
type Params struct {
	HeadDrop      int
	MADMultiplier float64
	CPSThreshold  float64
}

type profile struct {
	madMultiplier float64
	cpsThreshold  float64
}

var profiles = map[Level]map[core.Detector]profile{
	High: {
		core.RTOF: {madMultiplier: 10, cpsThreshold: 5},
		core.DFMS: {madMultiplier: 8, cpsThreshold: 1e4},
	},
	Low: {
		core.RTOF: {madMultiplier: 1000, cpsThreshold: 500},
		core.DFMS: {madMultiplier: 800, cpsThreshold: 1e8},
	},
}

// Config holds filtering configuration
type Config struct {
	Detector  core.Detector
	Level     Level
	Overrides Overrides
}

// Params resolves the head drop, MAD multiplier and cps threshold in effect.
func (c *Config) Params() Params {
	det := c.Detector
	if det != core.DFMS {
		det = core.RTOF
	}
	level := c.Level
	if level != Low {
		level = High
	}
	prof := profiles[level][det]

	p := Params{
		HeadDrop:      det.DefaultHeadDrop(),
		MADMultiplier: prof.madMultiplier,
		CPSThreshold:  prof.cpsThreshold,
	}
	if c.Overrides.HeadDrop != nil {
		p.HeadDrop = *c.Overrides.HeadDrop
	}

	mult, thresh := c.Overrides.MADMultiplierRTOF, c.Overrides.CPSThresholdRTOF
	if det == core.DFMS {
		mult, thresh = c.Overrides.MADMultiplierDFMS, c.Overrides.CPSThresholdDFMS
	}
	if mult != nil {
		p.MADMultiplier = *mult
	}
	if thresh != nil {
		p.CPSThreshold = *thresh
	}
	return p
}

// Apply cleans samples and returns the surviving (x, cps) pairs, or an empty
// slice when every sample is rejected.
func (c *Config) Apply(samples []core.SpectralSample) []core.CleanedSample {
	p := c.Params()

	samples = dropHead(samples, p.HeadDrop)
	samples = keepPositiveX(samples)
	if len(samples) == 0 {
		return []core.CleanedSample{}
	}

	if c.Level == Low {
		return c.applyLow(samples, p)
	}
	return c.applyHigh(samples, p)
}

// applyHigh centres on the median and rejects outliers on both sides.
func (c *Config) applyHigh(samples []core.SpectralSample, p Params) []core.CleanedSample {
	cleaned := center(samples)
	mad := MAD(cps(cleaned))
	return rejectOutliers(cleaned, mad, p)
}

// applyLow drops negative raw signal, centres the remainder, keeps only the
// non-negative centred values and then rejects outliers.
func (c *Config) applyLow(samples []core.SpectralSample, p Params) []core.CleanedSample {
	var nonNegative []core.SpectralSample
	for _, s := range samples {
		if s.Y >= 0 {
			nonNegative = append(nonNegative, s)
		}
	}
	if len(nonNegative) == 0 {
		return []core.CleanedSample{}
	}

	cleaned := center(nonNegative)
	mad := MAD(cps(cleaned))

	var positive []core.CleanedSample
	for _, s := range cleaned {
		if s.CPS >= 0 {
			positive = append(positive, s)
		}
	}
	return rejectOutliers(positive, mad, p)
}

// dropHead discards the first n samples when more than n are available.
func dropHead(samples []core.SpectralSample, n int) []core.SpectralSample {
	if n > 0 && len(samples) > n {
		return samples[n:]
	}
	return samples
}

func keepPositiveX(samples []core.SpectralSample) []core.SpectralSample {
	var kept []core.SpectralSample
	for _, s := range samples {
		if s.X > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}

// center subtracts the median signal from every sample.
func center(samples []core.SpectralSample) []core.CleanedSample {
	ys := make([]float64, len(samples))
	for i, s := range samples {
		ys[i] = s.Y
	}
	med := core.Median(ys)

	cleaned := make([]core.CleanedSample, len(samples))
	for i, s := range samples {
		cleaned[i] = core.CleanedSample{X: s.X, CPS: s.Y - med}
	}
	return cleaned
}

func cps(samples []core.CleanedSample) []float64 {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.CPS
	}
	return values
}

// MAD returns the median absolute deviation of values plus a small epsilon,
// so constant data yields 1e-12 rather than zero.
func MAD(values []float64) float64 {
	if len(values) == 0 {
		return madEpsilon
	}
	med := core.Median(values)
	dev := make([]float64, len(values))
	for i, v := range values {
		dev[i] = math.Abs(v - med)
	}
	return core.Median(dev) + madEpsilon
}

// rejectOutliers keeps samples with |cps| within both the MAD bound and the
// absolute threshold.
func rejectOutliers(samples []core.CleanedSample, mad float64, p Params) []core.CleanedSample {
	limit := p.MADMultiplier * mad
	kept := make([]core.CleanedSample, 0, len(samples))
	for _, s := range samples {
		a := math.Abs(s.CPS)
		if a <= limit && a <= p.CPSThreshold {
			kept = append(kept, s)
		}
	}
	return kept
}
