package filter

import (
	"strings"
	"testing"
)

func TestParseOverrides(t *testing.T) {
	o, warnings := ParseOverrides(map[string]string{
		KeyHeadDrop:          "4",
		KeyMADMultiplierRTOF: "12.5",
		KeyCPSThresholdRTOF:  "None",
		KeyMADMultiplierDFMS: "",
		KeyCPSThresholdDFMS:  "2e4",
	})

	if len(warnings) != 0 {
		t.Errorf("ParseOverrides() warnings = %v, want none", warnings)
	}
	if o.HeadDrop == nil || *o.HeadDrop != 4 {
		t.Errorf("HeadDrop = %v, want 4", o.HeadDrop)
	}
	if o.MADMultiplierRTOF == nil || *o.MADMultiplierRTOF != 12.5 {
		t.Errorf("MADMultiplierRTOF = %v, want 12.5", o.MADMultiplierRTOF)
	}
	if o.CPSThresholdRTOF != nil {
		t.Errorf("CPSThresholdRTOF = %v, want nil", *o.CPSThresholdRTOF)
	}
	if o.MADMultiplierDFMS != nil {
		t.Errorf("MADMultiplierDFMS = %v, want nil", *o.MADMultiplierDFMS)
	}
	if o.CPSThresholdDFMS == nil || *o.CPSThresholdDFMS != 2e4 {
		t.Errorf("CPSThresholdDFMS = %v, want 2e4", o.CPSThresholdDFMS)
	}
}

func TestParseOverridesInvalid(t *testing.T) {
	o, warnings := ParseOverrides(map[string]string{
		KeyHeadDrop:         "ten",
		KeyCPSThresholdRTOF: "lots",
	})

	if o.HeadDrop != nil || o.CPSThresholdRTOF != nil {
		t.Errorf("invalid values should stay unset, got %+v", o)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want 2", warnings)
	}
	if !strings.Contains(warnings[0], KeyHeadDrop) {
		t.Errorf("warnings[0] = %q, want mention of %s", warnings[0], KeyHeadDrop)
	}
}

func TestOverridesMerge(t *testing.T) {
	explicit := Overrides{HeadDrop: intPtr(2)}
	merged := explicit.Merge(Preset{
		Name: "x", HeadDrop: 9, MADMultiplierRTOF: 7, CPSThresholdRTOF: 6,
		MADMultiplierDFMS: 5, CPSThresholdDFMS: 4,
	}.Overrides())

	if *merged.HeadDrop != 2 {
		t.Errorf("HeadDrop = %d, want 2 (explicit wins)", *merged.HeadDrop)
	}
	if *merged.MADMultiplierRTOF != 7 {
		t.Errorf("MADMultiplierRTOF = %g, want 7", *merged.MADMultiplierRTOF)
	}
	if *merged.CPSThresholdDFMS != 4 {
		t.Errorf("CPSThresholdDFMS = %g, want 4", *merged.CPSThresholdDFMS)
	}

	empty := Overrides{}.Merge(Overrides{})
	if empty.HeadDrop != nil || empty.CPSThresholdRTOF != nil {
		t.Errorf("Merge of empty overrides = %+v, want empty", empty)
	}
}
