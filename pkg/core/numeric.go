package core

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// NumberPattern matches signed decimals and scientific notation, including
// Fortran-style D exponents.
var NumberPattern = regexp.MustCompile(`[-+]?\d*\.\d+(?:[EeDd][-+]?\d+)?|\d+(?:[EeDd][-+]?\d+)?`)

var exponentReplacer = strings.NewReplacer("D", "E", "d", "e")

// ParseNumber converts a numeric token to float64, accepting D/d exponents.
func ParseNumber(token string) (float64, error) {
	return strconv.ParseFloat(exponentReplacer.Replace(strings.TrimSpace(token)), 64)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Median returns the median of values, averaging the two middle elements for
// even lengths. It returns NaN for an empty slice and does not modify values.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Mean returns the arithmetic mean of values, or NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
