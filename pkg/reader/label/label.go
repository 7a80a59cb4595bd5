// Package label parses the textual PDS3 label header that precedes instrument data
package label

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/ChrisMcGann/rosetta/pkg/core"
)

// Header holds the label metadata used to interpret a data file.
// Integer fields are nil when the key is absent or unparseable.
type Header struct {
	RecordBytes  *int
	LabelRecords *int
	Rows         *int
	Columns      *int
	RowBytes     *int

	InstrumentID     string
	DetectorID       string
	InstrumentModeID string
	ProductID        string
	StartTime        string
	StopTime         string
	DataQualityID    string

	// ^STRUCTURE pointer, raw and reduced to its filename
	StructureRaw  string
	StructureFile string

	// Text is the header block including the END line.
	Text string
}

// field binds a label key to the Header member it populates.
type field struct {
	key    string
	assign func(h *Header, value string)
}

var labelFields = []field{
	{"RECORD_BYTES", func(h *Header, v string) { h.RecordBytes = toInt(v) }},
	{"LABEL_RECORDS", func(h *Header, v string) { h.LabelRecords = toInt(v) }},
	{"INSTRUMENT_ID", func(h *Header, v string) { h.InstrumentID = unquote(v) }},
	{"DETECTOR_ID", func(h *Header, v string) { h.DetectorID = unquote(v) }},
	{"INSTRUMENT_MODE_ID", func(h *Header, v string) { h.InstrumentModeID = unquote(v) }},
	{"PRODUCT_ID", func(h *Header, v string) { h.ProductID = unquote(v) }},
	{"START_TIME", func(h *Header, v string) { h.StartTime = unquote(v) }},
	{"STOP_TIME", func(h *Header, v string) { h.StopTime = unquote(v) }},
	{"DATA_QUALITY_ID", func(h *Header, v string) { h.DataQualityID = unquote(v) }},
	{"ROWS", func(h *Header, v string) { h.Rows = toInt(v) }},
	{"COLUMNS", func(h *Header, v string) { h.Columns = toInt(v) }},
	{"ROW_BYTES", func(h *Header, v string) { h.RowBytes = toInt(v) }},
}

var (
	commentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

	pointerTuple  = regexp.MustCompile(`^\(\s*["']?([^,"')]+)["']?\s*(?:,\s*\d+)?\s*\)$`)
	pointerQuoted = regexp.MustCompile(`^["']([^"']+)["']$`)
)

// Read decodes the whole stream as Latin-1 from offset 0 and parses its header.
func Read(r io.ReadSeeker) (*Header, error) {
	content, err := ReadContent(r)
	if err != nil {
		return nil, err
	}
	return Parse(content), nil
}

// ReadContent rewinds r and returns its full content decoded as Latin-1.
func ReadContent(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind input: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return DecodeLatin1(data), nil
}

// DecodeLatin1 decodes ISO-8859-1 bytes to UTF-8.
func DecodeLatin1(data []byte) string {
	// Every byte has an ISO-8859-1 mapping, so decoding cannot fail.
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(out)
}

// Parse extracts label fields from content. It never fails: keys that are
// missing or malformed leave their fields empty.
func Parse(content string) *Header {
	h := &Header{Text: HeaderText(content)}

	for _, f := range labelFields {
		if v, ok := Lookup(h.Text, f.key); ok {
			f.assign(h, v)
		}
	}

	raw, ok := Lookup(h.Text, "^STRUCTURE")
	if !ok {
		raw, ok = Lookup(h.Text, "STRUCTURE")
	}
	if ok && raw != "" {
		h.StructureRaw = raw
		h.StructureFile = parsePointer(raw)
	}

	return h
}

// HeaderText returns the lines of content up to and including the first END
// line, or all of content when there is none.
func HeaderText(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.ToUpper(strings.TrimSpace(line)) == "END" {
			return strings.Join(lines[:i+1], "\n")
		}
	}
	return strings.TrimSuffix(content, "\n")
}

// Lookup returns the comment-stripped right-hand side of the first
// "KEY = value" line in text. Matching is case-insensitive and tolerates
// leading whitespace.
func Lookup(text, key string) (string, bool) {
	pattern := regexp.MustCompile(`(?im)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=[ \t]*(.+)$`)
	m := pattern.FindStringSubmatchIndex(text)
	if m == nil {
		return "", false
	}

	// A block comment may continue past the end of the line.
	rhs := text[m[2]:m[3]]
	if open := strings.Index(rhs, "/*"); open >= 0 && !strings.Contains(rhs[open:], "*/") {
		if end := strings.Index(text[m[3]:], "*/"); end >= 0 {
			rhs = text[m[2] : m[3]+end+2]
		}
	}
	return StripComments(rhs), true
}

// StripComments removes C-style block comments and surrounding whitespace.
func StripComments(s string) string {
	return strings.TrimSpace(commentPattern.ReplaceAllString(s, ""))
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

// toInt parses the first whitespace-delimited token of v.
func toInt(v string) *int {
	fields := strings.Fields(unquote(v))
	if len(fields) == 0 {
		return nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &n
}

// parsePointer reduces a pointer value to its filename.
// Accepted shapes: ("FILE.FMT", 3), "FILE.FMT" and FILE.FMT.
func parsePointer(raw string) string {
	s := strings.TrimSpace(raw)
	if m := pointerTuple.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := pointerQuoted.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Detector resolves the detector from DETECTOR_ID.
func (h *Header) Detector() core.Detector {
	return core.DetectDetector(h.DetectorID)
}

// Int returns the value of an integer field, or def when it is absent.
func Int(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
