// Package sqlite provides SQLite database writing for processed spectra
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ChrisMcGann/rosetta/pkg/core"
	"github.com/ChrisMcGann/rosetta/pkg/filter"
	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
	"github.com/ChrisMcGann/rosetta/pkg/summary"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Timestamp stored with every run
	runDateFormat = time.RFC3339

	schemaVersion = 1
)

// Run is one processed file and everything derived from it.
type Run struct {
	Spectrum   *core.Spectrum
	Header     *label.Header
	Params     filter.Params
	Summary    *summary.Summary
	Conclusion string
}

// Writer handles writing runs to SQLite database files
type Writer struct {
	db      *sql.DB
	runStmt *sql.Stmt
	binStmt *sql.Stmt
	runID   int
	written int
	closed  bool
}

// NewWriter creates a new SQLite writer. Runs are appended after any runs
// already stored at outputPath.
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{db: db}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.db.QueryRow(`SELECT COALESCE(MAX(RunId), 0) FROM RunTable`).Scan(&w.runID); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read last run id: %w", err)
	}
	w.runID++

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId INTEGER PRIMARY KEY,
		SourceFile TEXT,
		Detector TEXT,
		FilterLevel TEXT,
		InstrumentId TEXT,
		DetectorId TEXT,
		ProductId TEXT,
		StartTime TEXT,
		StopTime TEXT,
		HeadDrop INTEGER,
		MADMultiplier DOUBLE,
		CPSThreshold DOUBLE,
		TotalPoints INTEGER,
		XMin DOUBLE,
		XMax DOUBLE,
		CPSMin DOUBLE,
		CPSMax DOUBLE,
		blobMass BLOB,
		blobCPS BLOB,
		Conclusion TEXT,
		CreationDate TEXT
	);

	CREATE TABLE IF NOT EXISTS BinTable (
		RunId INTEGER REFERENCES RunTable(RunId),
		BinIndex INTEGER,
		Mass DOUBLE,
		CPS DOUBLE,
		PRIMARY KEY (RunId, BinIndex)
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT
	);

	CREATE TABLE IF NOT EXISTS MaintenanceTable (
		CreationDate TEXT,
		NoofRunsAdded INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.runStmt, err = w.db.Prepare(`
		INSERT INTO RunTable (
			RunId, SourceFile, Detector, FilterLevel, InstrumentId, DetectorId,
			ProductId, StartTime, StopTime, HeadDrop, MADMultiplier, CPSThreshold,
			TotalPoints, XMin, XMax, CPSMin, CPSMax, blobMass, blobCPS,
			Conclusion, CreationDate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run statement: %w", err)
	}

	w.binStmt, err = w.db.Prepare(`
		INSERT INTO BinTable (RunId, BinIndex, Mass, CPS) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare bin statement: %w", err)
	}

	return nil
}

// WriteRun writes a single processed run and its bins to the database and
// returns the run id.
func (w *Writer) WriteRun(run *Run) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("writer is closed")
	}
	spec := run.Spectrum
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	h := run.Header
	if h == nil {
		h = &label.Header{}
	}

	sum := run.Summary
	if sum == nil {
		var err error
		if sum, err = summary.Build(spec); err != nil {
			return 0, err
		}
	}

	// Encode samples as binary blobs (little-endian float64)
	massBlob := encodeSamplesFloat64(spec.Samples, true)
	cpsBlob := encodeSamplesFloat64(spec.Samples, false)

	_, err := w.runStmt.Exec(
		w.runID,                    // RunId
		spec.SourceFile,            // SourceFile
		string(spec.Detector),      // Detector
		spec.FilterLevel,           // FilterLevel
		h.InstrumentID,             // InstrumentId
		h.DetectorID,               // DetectorId
		h.ProductID,                // ProductId
		h.StartTime,                // StartTime
		h.StopTime,                 // StopTime
		run.Params.HeadDrop,        // HeadDrop
		run.Params.MADMultiplier,   // MADMultiplier
		run.Params.CPSThreshold,    // CPSThreshold
		sum.TotalPoints,            // TotalPoints
		sum.XRange.Min,             // XMin
		sum.XRange.Max,             // XMax
		sum.CPSRange.Min,           // CPSMin
		sum.CPSRange.Max,           // CPSMax
		massBlob,                   // blobMass
		cpsBlob,                    // blobCPS
		nullString(run.Conclusion), // Conclusion
		time.Now().UTC().Format(runDateFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	for i, b := range sum.Bins {
		if _, err := w.binStmt.Exec(w.runID, i, b.X, b.CPS); err != nil {
			return 0, fmt.Errorf("failed to insert bin %d: %w", i, err)
		}
	}

	id := w.runID
	w.runID++
	w.written++
	return id, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// encodeSamplesFloat64 encodes sample data as little-endian float64 blob
func encodeSamplesFloat64(samples []core.CleanedSample, useMass bool) []byte {
	buf := make([]byte, len(samples)*8)
	for i, s := range samples {
		value := s.CPS
		if useMass {
			value = s.X
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// DecodeFloat64 decodes a little-endian float64 blob.
func DecodeFloat64(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values, nil
}

// Finalize writes the header and maintenance tables and closes the database.
// Calling it more than once is a no-op.
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	now := time.Now().Format(headerDateFormat)

	// Write HeaderTable once per database, then only bump the modified date
	var count int
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM HeaderTable`).Scan(&count); err != nil {
		w.closeAll()
		return fmt.Errorf("failed to read header: %w", err)
	}
	var err error
	if count == 0 {
		_, err = w.db.Exec(`
			INSERT INTO HeaderTable (version, CreationDate, LastModifiedDate, Description)
			VALUES (?, ?, ?, ?)
		`, schemaVersion, now, now, "Rosetta processed spectra")
	} else {
		_, err = w.db.Exec(`UPDATE HeaderTable SET LastModifiedDate = ?`, now)
	}
	if err != nil {
		w.closeAll()
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write MaintenanceTable
	_, err = w.db.Exec(`
		INSERT INTO MaintenanceTable (CreationDate, NoofRunsAdded, Description)
		VALUES (?, ?, ?)
	`, now, w.written, "")
	if err != nil {
		w.closeAll()
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	return w.closeAll()
}

func (w *Writer) closeAll() error {
	// Close prepared statements
	if w.runStmt != nil {
		w.runStmt.Close()
	}
	if w.binStmt != nil {
		w.binStmt.Close()
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
