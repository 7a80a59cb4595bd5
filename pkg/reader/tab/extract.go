package tab

import (
	"github.com/ChrisMcGann/rosetta/pkg/core"
)

// BlockSamples extracts (x, y) pairs from a block using the detector's
// column pair. Lines too short for that pair use the first two tokens;
// lines that do not convert, or convert to non-finite values, are skipped.
func BlockSamples(lines []string, detector core.Detector) []core.SpectralSample {
	ix, iy := detector.Columns()
	need := max(ix, iy)

	var samples []core.SpectralSample
	for _, line := range lines {
		parts := SplitNumbers(line)

		var xs, ys string
		switch {
		case len(parts) > need:
			xs, ys = parts[ix], parts[iy]
		case len(parts) >= 2:
			xs, ys = parts[0], parts[1]
		default:
			continue
		}

		x, err := core.ParseNumber(xs)
		if err != nil {
			continue
		}
		y, err := core.ParseNumber(ys)
		if err != nil {
			continue
		}
		if !core.IsFinite(x) || !core.IsFinite(y) {
			continue
		}

		samples = append(samples, core.SpectralSample{X: x, Y: y, Index: len(samples)})
	}

	return samples
}

// BestBlock returns the samples of the block yielding the most valid
// samples. The earliest block wins ties.
func BestBlock(blocks [][]string, detector core.Detector) []core.SpectralSample {
	var best []core.SpectralSample
	for _, block := range blocks {
		if samples := BlockSamples(block, detector); len(samples) > len(best) {
			best = samples
		}
	}
	return best
}

// Extract locates the data block of content and returns its samples.
func Extract(content string, detector core.Detector) ([]core.SpectralSample, error) {
	lines := PostEndLines(content)
	if len(lines) == 0 {
		return nil, core.NewInvalidData("no data found after END line")
	}

	blocks := SliceBlocks(lines)
	if len(blocks) == 0 {
		return nil, core.NewInvalidData("no valid numeric blocks found in file")
	}

	best := BestBlock(blocks, detector)
	if len(best) == 0 {
		return nil, core.NewInvalidData("no valid numeric samples could be extracted")
	}
	return best, nil
}
