// Package table resolves fixed-width column layouts from a label and reads
// structured table records
package table

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/rosetta/pkg/reader/label"
)

// ColumnSpec describes one column of a fixed-width record.
type ColumnSpec struct {
	Name      string
	StartByte int // 1-based, inclusive
	Bytes     int
}

// Schema is an ordered list of columns. Columns may overlap or leave gaps.
type Schema []ColumnSpec

// MaxSyntheticColumns bounds the COLUMNS value accepted for a synthesized
// schema. Larger counts are treated as an unusable layout.
const MaxSyntheticColumns = 1 << 16

var columnBlock = regexp.MustCompile(`(?is)COLUMN\s*=\s*\{(.*?)\}`)

// ParseColumns extracts COLUMN = { NAME = ..., START_BYTE = ..., BYTES = ... }
// blocks from text in order of appearance.
func ParseColumns(text string) Schema {
	var schema Schema
	for _, m := range columnBlock.FindAllStringSubmatch(text, -1) {
		block := m[1]

		name, ok := blockValue(block, "NAME")
		if !ok {
			name, _ = blockValue(block, "COLUMN_NAME")
		}
		schema = append(schema, ColumnSpec{
			Name:      name,
			StartByte: blockInt(block, "START_BYTE", 1),
			Bytes:     blockInt(block, "BYTES", 0),
		})
	}
	return schema
}

// blockValue returns the value of key inside a column block. Values end at
// a comma or a line break.
func blockValue(block, key string) (string, bool) {
	pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(key) + `\s*=\s*([^,\n]+)`)
	m := pattern.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	v := strings.Trim(label.StripComments(m[1]), `"`)
	return strings.TrimSpace(v), true
}

func blockInt(block, key string, def int) int {
	v, ok := blockValue(block, key)
	if !ok {
		return def
	}
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return def
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return def
	}
	return n
}

// ResolveSchema returns the explicit columns declared in the header or, when
// there are none, COLUMNS equal-width columns spanning ROW_BYTES. An empty
// schema means fixed-width reading is impossible.
func ResolveSchema(h *label.Header) Schema {
	if schema := ParseColumns(h.Text); len(schema) > 0 {
		return schema
	}
	if h.Columns == nil || h.RowBytes == nil {
		return nil
	}
	if n := *h.Columns; n <= 0 || n > MaxSyntheticColumns {
		return nil
	}
	return Synthesize(*h.Columns, *h.RowBytes)
}

// Synthesize builds n unnamed columns of equal width covering rowBytes.
// It returns nil unless 0 < n <= MaxSyntheticColumns.
func Synthesize(n, rowBytes int) Schema {
	if n <= 0 || n > MaxSyntheticColumns {
		return nil
	}
	width := rowBytes / n
	if width < 1 {
		width = 1
	}
	schema := make(Schema, n)
	for i := range schema {
		schema[i] = ColumnSpec{
			Name:      fmt.Sprintf("COL_%d", i+1),
			StartByte: i*width + 1,
			Bytes:     width,
		}
	}
	return schema
}

// Names returns the column names, substituting COL_i for unnamed columns.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.columnName(i)
	}
	return names
}

func (c ColumnSpec) columnName(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("COL_%d", i+1)
}
