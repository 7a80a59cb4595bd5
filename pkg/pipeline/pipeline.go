// Package pipeline runs the full header, extraction and cleaning sequence
// over one instrument file.
package pipeline

import (
	"io"

	"github.com/ChrisMcGann/rosetta/pkg/core"
	"github.com/ChrisMcGann/rosetta/pkg/filter"
	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
	"github.com/ChrisMcGann/rosetta/pkg/reader/tab"
)

// Options controls a single Process call.
type Options struct {
	// FilterLevel is "high" or "low"; anything else is treated as "high".
	FilterLevel string
	Overrides   filter.Overrides
	SourceFile  string
}

// ReadHeader parses the label of r and resolves its detector.
func ReadHeader(r io.ReadSeeker) (*label.Header, core.Detector, error) {
	h, err := label.Read(r)
	if err != nil {
		return nil, "", err
	}
	return h, h.Detector(), nil
}

// Process reads r from the start, extracts the numeric payload after the
// label and cleans it. Input that yields no usable samples fails with an
// error matching core.ErrInvalidData.
func Process(r io.ReadSeeker, opts Options) (*core.Spectrum, error) {
	content, err := label.ReadContent(r)
	if err != nil {
		return nil, err
	}

	h := label.Parse(content)
	det := h.Detector()

	samples, err := tab.Extract(content, det)
	if err != nil {
		return nil, err
	}

	level := filter.ParseLevel(opts.FilterLevel)
	cfg := &filter.Config{
		Detector:  det,
		Level:     level,
		Overrides: opts.Overrides,
	}

	cleaned := cfg.Apply(samples)
	if len(cleaned) == 0 {
		return nil, core.NewInvalidData("no valid data left after cleaning")
	}

	return &core.Spectrum{
		Detector:    det,
		FilterLevel: string(level),
		Samples:     cleaned,
		SourceFile:  opts.SourceFile,
	}, nil
}
