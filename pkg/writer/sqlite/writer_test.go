package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ChrisMcGann/rosetta/pkg/core"
	"github.com/ChrisMcGann/rosetta/pkg/filter"
	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
)

func testRun() *Run {
	return &Run{
		Spectrum: &core.Spectrum{
			Detector:    core.DFMS,
			FilterLevel: "low",
			SourceFile:  "dfms.tab",
			Samples: []core.CleanedSample{
				{X: 12, CPS: -1},
				{X: 16, CPS: 2},
				{X: 18, CPS: 7.5},
			},
		},
		Header:     &label.Header{InstrumentID: "ROSINA", DetectorID: "DFMS_HR", ProductID: "P1"},
		Params:     filter.Params{HeadDrop: 5, MADMultiplier: 800, CPSThreshold: 1e8},
		Conclusion: "water and methane",
	}
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	id, err := w.WriteRun(testRun())
	if err != nil {
		t.Fatalf("WriteRun() error = %v", err)
	}
	if id != 1 {
		t.Errorf("WriteRun() id = %d, want 1", id)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var (
		det, level, instrument, conclusion string
		headDrop, total                    int
		xMin, xMax                         float64
		massBlob, cpsBlob                  []byte
	)
	err = db.QueryRow(`
		SELECT Detector, FilterLevel, InstrumentId, Conclusion, HeadDrop,
		       TotalPoints, XMin, XMax, blobMass, blobCPS
		FROM RunTable WHERE RunId = 1`).Scan(
		&det, &level, &instrument, &conclusion, &headDrop,
		&total, &xMin, &xMax, &massBlob, &cpsBlob)
	if err != nil {
		t.Fatalf("query run: %v", err)
	}

	if det != "DFMS" || level != "low" || instrument != "ROSINA" {
		t.Errorf("run = %s/%s/%s", det, level, instrument)
	}
	if conclusion != "water and methane" || headDrop != 5 {
		t.Errorf("conclusion = %q, head drop = %d", conclusion, headDrop)
	}
	if total != 3 {
		t.Errorf("TotalPoints = %d, want 3", total)
	}
	if xMin != 16 || xMax != 18 {
		t.Errorf("x range = [%g, %g], want [16, 18]", xMin, xMax)
	}

	mass, err := DecodeFloat64(massBlob)
	if err != nil {
		t.Fatalf("DecodeFloat64() error = %v", err)
	}
	if len(mass) != 3 || mass[0] != 12 || mass[2] != 18 {
		t.Errorf("blobMass = %v", mass)
	}
	cps, _ := DecodeFloat64(cpsBlob)
	if len(cps) != 3 || cps[0] != -1 || cps[2] != 7.5 {
		t.Errorf("blobCPS = %v", cps)
	}

	var bins int
	if err := db.QueryRow(`SELECT COUNT(*) FROM BinTable WHERE RunId = 1`).Scan(&bins); err != nil {
		t.Fatalf("query bins: %v", err)
	}
	if bins != 2 {
		t.Errorf("BinTable rows = %d, want 2", bins)
	}

	var version, added int
	if err := db.QueryRow(`SELECT version FROM HeaderTable`).Scan(&version); err != nil {
		t.Fatalf("query header: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("version = %d, want %d", version, schemaVersion)
	}
	if err := db.QueryRow(`SELECT NoofRunsAdded FROM MaintenanceTable`).Scan(&added); err != nil {
		t.Fatalf("query maintenance: %v", err)
	}
	if added != 1 {
		t.Errorf("NoofRunsAdded = %d, want 1", added)
	}
}

func TestWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	for want := 1; want <= 2; want++ {
		w, err := NewWriter(path)
		if err != nil {
			t.Fatalf("NewWriter() error = %v", err)
		}
		id, err := w.WriteRun(testRun())
		if err != nil {
			t.Fatalf("WriteRun() error = %v", err)
		}
		if id != want {
			t.Errorf("WriteRun() id = %d, want %d", id, want)
		}
		if err := w.Finalize(); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
	}

	db, _ := sql.Open("sqlite3", path)
	defer db.Close()
	var headers int
	db.QueryRow(`SELECT COUNT(*) FROM HeaderTable`).Scan(&headers)
	if headers != 1 {
		t.Errorf("HeaderTable rows = %d, want 1", headers)
	}
}

func TestWriterRejects(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	empty := &Run{Spectrum: &core.Spectrum{Detector: core.RTOF}}
	if _, err := w.WriteRun(empty); err == nil {
		t.Error("WriteRun() expected validation error for empty spectrum")
	}

	negative := &Run{Spectrum: &core.Spectrum{
		Detector: core.RTOF,
		Samples:  []core.CleanedSample{{X: 1, CPS: -3}},
	}}
	if _, err := w.WriteRun(negative); err == nil {
		t.Error("WriteRun() expected error when nothing can be summarized")
	}
}

func TestDecodeFloat64(t *testing.T) {
	if _, err := DecodeFloat64([]byte{1, 2, 3}); err == nil {
		t.Error("DecodeFloat64() expected error for short blob")
	}
	values, err := DecodeFloat64(nil)
	if err != nil || len(values) != 0 {
		t.Errorf("DecodeFloat64(nil) = %v, %v", values, err)
	}
}
