package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
)

// Row maps a column name to its trimmed raw value.
type Row map[string]string

// Table is a decoded set of records with the column order of its schema.
type Table struct {
	Columns []string
	Rows    []Row
}

// Read decodes fixed-length records from r. It skips (startRecord-1)
// records, stops at the first short record and after maxRows rows when
// maxRows > 0. Records containing a comma are split as CSV, everything else
// is sliced at the schema's byte offsets.
func Read(r io.ReadSeeker, schema Schema, recordBytes, startRecord, maxRows int) (*Table, error) {
	if recordBytes <= 0 {
		return nil, fmt.Errorf("record length must be positive, got %d", recordBytes)
	}
	if startRecord < 1 {
		startRecord = 1
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind input: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	t := &Table{Columns: schema.Names()}

	if startRecord-1 > len(data)/recordBytes {
		return t, nil
	}
	offset := (startRecord - 1) * recordBytes
	for pos := offset; pos+recordBytes <= len(data); pos += recordBytes {
		rec := strings.TrimRight(label.DecodeLatin1(data[pos:pos+recordBytes]), "\r\n")

		var row Row
		if strings.Contains(rec, ",") && len(schema) > 0 {
			row = splitDelimited(rec, t.Columns)
		} else {
			row = sliceFixed(rec, schema)
		}
		t.Rows = append(t.Rows, row)

		if maxRows > 0 && len(t.Rows) >= maxRows {
			break
		}
	}

	return t, nil
}

// splitDelimited parses rec as one CSV record and assigns fields positionally,
// padding or truncating to the number of columns.
func splitDelimited(rec string, columns []string) Row {
	fields, err := parseCSVRecord(rec)
	if err != nil {
		fields = strings.Split(rec, ",")
	}

	row := make(Row, len(columns))
	for i, name := range columns {
		v := ""
		if i < len(fields) {
			v = fields[i]
		}
		row[name] = clean(v)
	}
	return row
}

func parseCSVRecord(rec string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(rec))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	fields, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	return fields, err
}

// sliceFixed cuts rec at each column's byte range. Ranges past the end of
// the record yield empty values.
func sliceFixed(rec string, schema Schema) Row {
	raw := []rune(rec)
	row := make(Row, len(schema))
	for i, col := range schema {
		start := col.StartByte - 1
		if start < 0 {
			start = 0
		}
		end := start + col.Bytes
		if end > len(raw) {
			end = len(raw)
		}
		v := ""
		if col.Bytes > 0 && start < end {
			v = string(raw[start:end])
		}
		row[col.columnName(i)] = clean(v)
	}
	return row
}

func clean(v string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(v), `"`))
}
