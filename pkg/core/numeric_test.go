package core

import (
	"math"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		token   string
		want    float64
		wantErr bool
	}{
		{"1.23D-04", 1.23e-4, false},
		{"1.23d-04", 1.23e-4, false},
		{"-4.5E+02", -450, false},
		{" 42 ", 42, false},
		{"+.5", 0.5, false},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseNumber(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNumber(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-15 {
				t.Errorf("ParseNumber(%q) = %g, want %g", tt.token, got, tt.want)
			}
		})
	}
}

func TestNumberPattern(t *testing.T) {
	got := NumberPattern.FindAllString("12 -3.5 4.0D+01 x .25 7e3", -1)
	want := []string{"12", "-3.5", "4.0D+01", ".25", "7e3"}

	if len(got) != len(want) {
		t.Fatalf("FindAllString() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"negative", []float64{-5, -1, -3}, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.want {
				t.Errorf("Median() = %v, want %v", got, tt.want)
			}
		})
	}

	if !math.IsNaN(Median(nil)) {
		t.Error("Median(nil) should be NaN")
	}

	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("Median() modified its input: %v", values)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Mean() = %v, want 2.5", got)
	}
	if !math.IsNaN(Mean(nil)) {
		t.Error("Mean(nil) should be NaN")
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.5) {
		t.Error("IsFinite(1.5) = false")
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if IsFinite(v) {
			t.Errorf("IsFinite(%v) = true", v)
		}
	}
}
