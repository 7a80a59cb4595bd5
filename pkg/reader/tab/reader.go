// Package tab extracts the numeric payload that follows the label of a .tab file
package tab

import (
	"strings"

	"github.com/ChrisMcGann/rosetta/pkg/core"
)

// MinBlockLines is the shortest run of numeric lines accepted as a data block.
const MinBlockLines = 3

// minNumericTokens is the number of numeric tokens that makes a line numeric.
const minNumericTokens = 3

// Reader provides access to the candidate numeric blocks of a file, in
// file order
type Reader struct {
	blocks   [][]string
	detector core.Detector
	pos      int
	current  []string
}

// NewReader creates a reader over the data following the END line of content
func NewReader(content string, detector core.Detector) *Reader {
	return &Reader{
		blocks:   SliceBlocks(PostEndLines(content)),
		detector: detector,
		pos:      -1,
	}
}

// Next advances to the next block. Returns false when no blocks remain.
func (r *Reader) Next() bool {
	r.current = nil
	if r.pos+1 >= len(r.blocks) {
		return false
	}
	r.pos++
	r.current = r.blocks[r.pos]
	return true
}

// Block returns the lines of the current block
func (r *Reader) Block() []string {
	return r.current
}

// Samples extracts the samples of the current block
func (r *Reader) Samples() []core.SpectralSample {
	return BlockSamples(r.current, r.detector)
}

// Len returns the number of candidate blocks
func (r *Reader) Len() int {
	return len(r.blocks)
}

// PostEndLines returns the trimmed lines after the first END line, skipping
// blank lines and lines starting with a double quote.
func PostEndLines(content string) []string {
	var lines []string
	foundEnd := false

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if foundEnd {
			if stripped == "" || strings.HasPrefix(stripped, `"`) {
				continue
			}
			lines = append(lines, stripped)
			continue
		}
		if strings.ToUpper(stripped) == "END" {
			foundEnd = true
		}
	}

	return lines
}

// IsNumericLine reports whether s carries no assignment and at least three
// numeric tokens.
func IsNumericLine(s string) bool {
	if strings.Contains(s, "=") || strings.TrimSpace(s) == "" {
		return false
	}
	return len(core.NumberPattern.FindAllStringIndex(s, minNumericTokens)) >= minNumericTokens
}

// SliceBlocks splits lines into maximal runs of numeric lines and keeps the
// runs of at least MinBlockLines lines.
func SliceBlocks(lines []string) [][]string {
	var blocks [][]string
	i, n := 0, len(lines)

	for i < n {
		for i < n && !IsNumericLine(lines[i]) {
			i++
		}
		start := i
		for i < n && IsNumericLine(lines[i]) {
			i++
		}
		if i-start >= MinBlockLines {
			blocks = append(blocks, lines[start:i])
		}
	}

	return blocks
}

// SplitNumbers tokenizes a data line by commas, else whitespace, else by
// scanning for numeric literals.
func SplitNumbers(s string) []string {
	var parts []string
	if strings.Contains(s, ",") {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	} else {
		parts = strings.Fields(s)
	}

	if len(parts) < 2 {
		parts = core.NumberPattern.FindAllString(s, -1)
	}
	return parts
}
