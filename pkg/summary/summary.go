// Package summary reduces a cleaned spectrum to a fixed number of bins.
package summary

import (
	"github.com/ChrisMcGann/rosetta/pkg/core"
)

// DefaultBins is the number of buckets used for presentation output.
const DefaultBins = 100

// Summary is the binned spectrum plus the statistics reported with it.
type Summary struct {
	Bins        []core.SpectrumBin
	TotalPoints int
	XRange      core.Range
	CPSRange    core.Range
}

// Summarize drops negative cps values and averages the remaining samples into
// bins equal-width buckets over [min(x), max(x)]. Bucket i covers
// [edge_i, edge_i+1) except the last, which also includes max(x). Empty
// buckets are omitted, so at most bins entries are returned in ascending x.
func Summarize(samples []core.CleanedSample, bins int) []core.SpectrumBin {
	if bins <= 0 {
		bins = DefaultBins
	}

	kept := nonNegative(samples)
	if len(kept) == 0 {
		return []core.SpectrumBin{}
	}

	lo, hi := kept[0].X, kept[0].X
	for _, s := range kept[1:] {
		if s.X < lo {
			lo = s.X
		}
		if s.X > hi {
			hi = s.X
		}
	}

	edges := linspace(lo, hi, bins+1)
	xs := make([][]float64, bins)
	cps := make([][]float64, bins)
	for _, s := range kept {
		i := binIndex(edges, s.X)
		xs[i] = append(xs[i], s.X)
		cps[i] = append(cps[i], s.CPS)
	}

	out := make([]core.SpectrumBin, 0, bins)
	for i := range xs {
		if len(xs[i]) == 0 {
			continue
		}
		out = append(out, core.SpectrumBin{X: core.Mean(xs[i]), CPS: core.Mean(cps[i])})
	}
	return out
}

// Build summarizes a spectrum with DefaultBins buckets. TotalPoints counts
// every cleaned sample; the ranges cover only samples with cps >= 0.
func Build(spec *core.Spectrum) (*Summary, error) {
	kept := nonNegative(spec.Samples)
	if len(kept) == 0 {
		return nil, core.NewInvalidData("no valid data left after dropping negative values")
	}

	positive := core.Spectrum{Samples: kept}
	return &Summary{
		Bins:        Summarize(kept, DefaultBins),
		TotalPoints: len(spec.Samples),
		XRange:      positive.XRange(),
		CPSRange:    positive.CPSRange(),
	}, nil
}

func nonNegative(samples []core.CleanedSample) []core.CleanedSample {
	kept := make([]core.CleanedSample, 0, len(samples))
	for _, s := range samples {
		if s.CPS >= 0 {
			kept = append(kept, s)
		}
	}
	return kept
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	edges := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[n-1] = hi
	return edges
}

// binIndex returns the bucket holding x. Values at or beyond the last
// interior edge fall into the final bucket.
func binIndex(edges []float64, x float64) int {
	last := len(edges) - 2
	for i := 0; i < last; i++ {
		if x >= edges[i] && x < edges[i+1] {
			return i
		}
	}
	return last
}
