package table

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/rosetta/pkg/core"
)

var (
	xKeys = []string{"mass", "m/z", "mz", "amu", "bin", "chan", "channel", "x"}
	yKeys = []string{"intens", "counts", "cps", "signal", "y", "amp", "height"}
)

// PickXYColumns infers the mass and signal columns from their names, falling
// back to the first two columns.
func PickXYColumns(columns []string) (x, y string, err error) {
	x = findColumn(columns, xKeys)
	if x == "" && len(columns) > 0 {
		x = columns[0]
	}
	y = findColumn(columns, yKeys)
	if y == "" && len(columns) > 1 {
		y = columns[1]
	}
	if x == "" || y == "" {
		return "", "", fmt.Errorf("cannot infer x/y from columns %v", columns)
	}
	return x, y, nil
}

// findColumn returns the first column containing a key, trying keys in order.
func findColumn(columns []string, keys []string) string {
	for _, k := range keys {
		for _, c := range columns {
			if strings.Contains(strings.ToLower(strings.TrimSpace(c)), k) {
				return c
			}
		}
	}
	return ""
}

// Samples converts the x and y columns of t into spectral samples. Rows whose
// values do not parse as finite numbers are skipped.
func Samples(t *Table, x, y string) []core.SpectralSample {
	var samples []core.SpectralSample
	for _, row := range t.Rows {
		xv, err := core.ParseNumber(row[x])
		if err != nil {
			continue
		}
		yv, err := core.ParseNumber(row[y])
		if err != nil {
			continue
		}
		if !core.IsFinite(xv) || !core.IsFinite(yv) {
			continue
		}
		samples = append(samples, core.SpectralSample{X: xv, Y: yv, Index: len(samples)})
	}
	return samples
}
