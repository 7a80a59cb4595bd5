package filter

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Preset is a named set of cleaning overrides.
type Preset struct {
	Name              string
	HeadDrop          int
	MADMultiplierRTOF float64
	CPSThresholdRTOF  float64
	MADMultiplierDFMS float64
	CPSThresholdDFMS  float64
}

// Overrides returns the preset as a fully populated Overrides.
func (p Preset) Overrides() Overrides {
	headDrop := p.HeadDrop
	madRTOF, cpsRTOF := p.MADMultiplierRTOF, p.CPSThresholdRTOF
	madDFMS, cpsDFMS := p.MADMultiplierDFMS, p.CPSThresholdDFMS
	return Overrides{
		HeadDrop:          &headDrop,
		MADMultiplierRTOF: &madRTOF,
		CPSThresholdRTOF:  &cpsRTOF,
		MADMultiplierDFMS: &madDFMS,
		CPSThresholdDFMS:  &cpsDFMS,
	}
}

// PresetDatabase stores filter presets by name
type PresetDatabase struct {
	presets map[string]Preset
}

// NewPresetDatabase creates an empty preset database
func NewPresetDatabase() *PresetDatabase {
	return &PresetDatabase{
		presets: make(map[string]Preset),
	}
}

// LoadFromCSV loads presets from a CSV file with the header
// name,head_drop,mad_multiplier_rtof,cps_threshold_rtof,mad_multiplier_dfms,cps_threshold_dfms
func (db *PresetDatabase) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			return fmt.Errorf("line %d: invalid format, expected 6 comma-separated fields", lineNum)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		headDrop, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("line %d: invalid head drop '%s': %w", lineNum, parts[1], err)
		}

		var values [4]float64
		for i := range values {
			values[i], err = strconv.ParseFloat(parts[i+2], 64)
			if err != nil {
				return fmt.Errorf("line %d: invalid value '%s': %w", lineNum, parts[i+2], err)
			}
		}

		db.Add(Preset{
			Name:              parts[0],
			HeadDrop:          headDrop,
			MADMultiplierRTOF: values[0],
			CPSThresholdRTOF:  values[1],
			MADMultiplierDFMS: values[2],
			CPSThresholdDFMS:  values[3],
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// Get returns the preset with the given name
func (db *PresetDatabase) Get(name string) (Preset, bool) {
	p, ok := db.presets[strings.ToLower(name)]
	return p, ok
}

// Add adds or updates a preset
func (db *PresetDatabase) Add(p Preset) {
	p.Name = strings.ToLower(p.Name)
	db.presets[p.Name] = p
}

// Names returns the preset names from strictest to most permissive, ordered
// by RTOF cps threshold.
func (db *PresetDatabase) Names() []string {
	names := make([]string, 0, len(db.presets))
	for name := range db.presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := db.presets[names[i]], db.presets[names[j]]
		if a.CPSThresholdRTOF != b.CPSThresholdRTOF {
			return a.CPSThresholdRTOF < b.CPSThresholdRTOF
		}
		return a.Name < b.Name
	})
	return names
}

// DefaultPresets returns a PresetDatabase pre-loaded with the standard
// strictness levels
func DefaultPresets() *PresetDatabase {
	db := NewPresetDatabase()

	db.Add(Preset{Name: "very-strict", HeadDrop: 15, MADMultiplierRTOF: 5, CPSThresholdRTOF: 3, MADMultiplierDFMS: 5, CPSThresholdDFMS: 5e3})
	db.Add(Preset{Name: "strict", HeadDrop: 10, MADMultiplierRTOF: 10, CPSThresholdRTOF: 5, MADMultiplierDFMS: 8, CPSThresholdDFMS: 1e4})
	db.Add(Preset{Name: "moderate", HeadDrop: 8, MADMultiplierRTOF: 15, CPSThresholdRTOF: 8, MADMultiplierDFMS: 12, CPSThresholdDFMS: 2e4})
	db.Add(Preset{Name: "permissive", HeadDrop: 5, MADMultiplierRTOF: 20, CPSThresholdRTOF: 12, MADMultiplierDFMS: 15, CPSThresholdDFMS: 5e4})

	return db
}
