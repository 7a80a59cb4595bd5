package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Override parameter names, as accepted in request forms.
const (
	KeyHeadDrop          = "head_drop"
	KeyMADMultiplierRTOF = "mad_multiplier_rtof"
	KeyCPSThresholdRTOF  = "cps_threshold_rtof"
	KeyMADMultiplierDFMS = "mad_multiplier_dfms"
	KeyCPSThresholdDFMS  = "cps_threshold_dfms"
)

// ParseOverrides reads override values by name. Missing, empty and "None"
// values are absent. Unparseable values are also left absent and reported in
// the returned warnings, which callers may log; they never fail the request.
func ParseOverrides(values map[string]string) (Overrides, []string) {
	var o Overrides
	var warnings []string

	if v, ok := present(values, KeyHeadDrop); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid %s %q, using default", KeyHeadDrop, v))
		} else {
			o.HeadDrop = &n
		}
	}

	floats := []struct {
		key string
		dst **float64
	}{
		{KeyMADMultiplierRTOF, &o.MADMultiplierRTOF},
		{KeyCPSThresholdRTOF, &o.CPSThresholdRTOF},
		{KeyMADMultiplierDFMS, &o.MADMultiplierDFMS},
		{KeyCPSThresholdDFMS, &o.CPSThresholdDFMS},
	}
	for _, f := range floats {
		v, ok := present(values, f.key)
		if !ok {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid %s %q, using default", f.key, v))
			continue
		}
		*f.dst = &x
	}

	return o, warnings
}

func present(values map[string]string, key string) (string, bool) {
	v := strings.TrimSpace(values[key])
	if v == "" || v == "None" {
		return "", false
	}
	return v, true
}

// Merge fills the fields of o that are unset with the values of fallback.
func (o Overrides) Merge(fallback Overrides) Overrides {
	if o.HeadDrop == nil {
		o.HeadDrop = fallback.HeadDrop
	}
	if o.MADMultiplierRTOF == nil {
		o.MADMultiplierRTOF = fallback.MADMultiplierRTOF
	}
	if o.CPSThresholdRTOF == nil {
		o.CPSThresholdRTOF = fallback.CPSThresholdRTOF
	}
	if o.MADMultiplierDFMS == nil {
		o.MADMultiplierDFMS = fallback.MADMultiplierDFMS
	}
	if o.CPSThresholdDFMS == nil {
		o.CPSThresholdDFMS = fallback.CPSThresholdDFMS
	}
	return o
}
