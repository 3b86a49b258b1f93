package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/promptlab/promptlab/internal/models"
)

// Row maps a CSV column name to its value.
type Row map[string]string

// Table is a parsed CSV file. Headers keeps the column order of the file.
type Table struct {
	Headers []string
	Rows    []Row
}

// ReadCSV parses CSV from r. The first record is the header row. A leading
// UTF-8 byte order mark is skipped.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	records, err := csv.NewReader(br).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: empty input (no header row)")
	}

	t := &Table{Headers: records[0], Rows: make([]Row, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make(Row, len(t.Headers))
		for j, h := range t.Headers {
			row[h] = record[j]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// LoadCSV reads and parses the CSV file at path.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Range returns rows start..end, 1-based and inclusive. Row 1 is the first
// data row. end is clamped to the available rows.
func (t *Table) Range(start, end int) ([]Row, error) {
	if start < 1 {
		return nil, fmt.Errorf("csv: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("csv: range end (%d) must be >= start (%d)", end, start)
	}
	if start > len(t.Rows) {
		return []Row{}, nil
	}
	return t.Rows[start-1 : min(end, len(t.Rows))], nil
}

// Row returns data row n (1-based).
func (t *Table) Row(n int) (Row, error) {
	if n < 1 || n > len(t.Rows) {
		return nil, fmt.Errorf("csv: row %d out of range (1-%d)", n, len(t.Rows))
	}
	return t.Rows[n-1], nil
}

// ImportOptions controls how CSV columns become test case fields.
type ImportOptions struct {
	// IDColumn, when present in the file, supplies case ids.
	IDColumn             string
	ExpectedOutputColumn string
	// Columns starting with MetadataPrefix go to Metadata with the prefix
	// removed.
	MetadataPrefix string
}

// DefaultImportOptions matches the layout written by WriteCSV.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		IDColumn:             "id",
		ExpectedOutputColumn: "expected_output",
		MetadataPrefix:       "_",
	}
}

// Cases converts every row into a test case of datasetID. Rows without an
// id are numbered case-1, case-2, ... by position. The is_edge_case and
// is_error_pattern metadata columns set the matching flags.
func (t *Table) Cases(datasetID string, opts ImportOptions) []models.TestCase {
	cases := make([]models.TestCase, 0, len(t.Rows))
	for i, row := range t.Rows {
		tc := models.TestCase{
			ID:        fmt.Sprintf("case-%d", i+1),
			DatasetID: datasetID,
			RawInput:  make(map[string]any, len(row)),
		}
		meta := map[string]any{}
		for k, v := range row {
			switch {
			case opts.IDColumn != "" && k == opts.IDColumn:
				if v != "" {
					tc.ID = v
				}
			case opts.ExpectedOutputColumn != "" && k == opts.ExpectedOutputColumn:
				if v != "" {
					tc.ExpectedOutput = &v
				}
			case opts.MetadataPrefix != "" && strings.HasPrefix(k, opts.MetadataPrefix):
				meta[strings.TrimPrefix(k, opts.MetadataPrefix)] = v
			default:
				tc.RawInput[k] = v
			}
		}
		tc.IsEdgeCase = truthy(meta, "is_edge_case")
		tc.IsErrorPattern = truthy(meta, "is_error_pattern")
		if len(meta) > 0 {
			tc.Metadata = meta
		}
		cases = append(cases, tc)
	}
	return cases
}

func truthy(meta map[string]any, key string) bool {
	v, ok := meta[key]
	if !ok {
		return false
	}
	delete(meta, key)
	switch strings.ToLower(fmt.Sprint(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// WriteCSV exports cases with their raw input columns sorted, followed by
// id, expected_output and the two flag columns.
func WriteCSV(w io.Writer, cases []models.TestCase) error {
	colSet := map[string]bool{}
	for _, c := range cases {
		for k := range c.RawInput {
			colSet[k] = true
		}
	}
	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	cw := csv.NewWriter(w)
	header := append(append([]string{}, cols...), "id", "expected_output", "_is_edge_case", "_is_error_pattern")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, c := range cases {
		rec := make([]string, 0, len(header))
		for _, col := range cols {
			if v, ok := c.RawInput[col]; ok && v != nil {
				rec = append(rec, fmt.Sprint(v))
			} else {
				rec = append(rec, "")
			}
		}
		expected := ""
		if c.ExpectedOutput != nil {
			expected = *c.ExpectedOutput
		}
		rec = append(rec, c.ID, expected, fmt.Sprint(c.IsEdgeCase), fmt.Sprint(c.IsErrorPattern))
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv: write case %s: %w", c.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}
