package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		wantRows    int
		wantHeaders []string
		wantErr     string
	}{
		{
			name:        "three rows",
			csv:         "question,context\nWhat is Go?,docs\nWho made it?,history\nWhen?,timeline\n",
			wantRows:    3,
			wantHeaders: []string{"question", "context"},
		},
		{
			name:        "headers only",
			csv:         "question,context\n",
			wantRows:    0,
			wantHeaders: []string{"question", "context"},
		},
		{
			name:        "byte order mark stripped",
			csv:         "\xef\xbb\xbfquestion\n안녕하세요\n",
			wantRows:    1,
			wantHeaders: []string{"question"},
		},
		{
			name:    "mismatched column count",
			csv:     "a,b\nok,fine\nbad\n",
			wantErr: "wrong number of fields",
		},
		{
			name:    "empty input",
			csv:     "",
			wantErr: "no header row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tt.csv))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, table.Rows, tt.wantRows)
			assert.Equal(t, tt.wantHeaders, table.Headers)
		})
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV("/nonexistent/path/data.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: open")
}

func TestTable_Range(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.csv", "name,prompt\na,p1\nb,p2\nc,p3\nd,p4\ne,p5\n")
	table, err := LoadCSV(path)
	require.NoError(t, err)

	tests := []struct {
		name     string
		start    int
		end      int
		wantRows int
		wantErr  string
	}{
		{"range 2-3 of 5", 2, 3, 2, ""},
		{"single row", 1, 1, 1, ""},
		{"end clamps", 4, 100, 2, ""},
		{"start beyond available", 6, 10, 0, ""},
		{"start below one", 0, 1, 0, "range start must be >= 1"},
		{"end before start", 3, 1, 0, "range end (1) must be >= start (3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := table.Range(tt.start, tt.end)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
		})
	}

	rows, err := table.Range(2, 3)
	require.NoError(t, err)
	assert.Equal(t, "b", rows[0]["name"])
	assert.Equal(t, "p3", rows[1]["prompt"])
}

func TestTable_Row(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("q\nfirst\nsecond\n"))
	require.NoError(t, err)

	row, err := table.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "second", row["q"])

	_, err = table.Row(3)
	assert.ErrorContains(t, err, "out of range (1-2)")
}

func TestTable_Cases(t *testing.T) {
	csvData := "id,user_query,expected_output,_source,_is_edge_case\n" +
		"q-1,What is Go?,A language,manual,yes\n" +
		",Second,,import,false\n"
	table, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)

	cases := table.Cases("ds", DefaultImportOptions())
	require.Len(t, cases, 2)

	first := cases[0]
	assert.Equal(t, "q-1", first.ID)
	assert.Equal(t, "ds", first.DatasetID)
	assert.Equal(t, map[string]any{"user_query": "What is Go?"}, first.RawInput)
	require.NotNil(t, first.ExpectedOutput)
	assert.Equal(t, "A language", *first.ExpectedOutput)
	assert.Equal(t, map[string]any{"source": "manual"}, first.Metadata)
	assert.True(t, first.IsEdgeCase)

	second := cases[1]
	assert.Equal(t, "case-2", second.ID)
	assert.Nil(t, second.ExpectedOutput)
	assert.False(t, second.IsEdgeCase)
	assert.Nil(t, second.Assertions)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	expected := "4"
	cases := []models.TestCase{
		{ID: "c1", RawInput: map[string]any{"b": "x", "a": 1}, ExpectedOutput: &expected, IsErrorPattern: true},
		{ID: "c2", RawInput: map[string]any{"a": "only a"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cases))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a,b,id,expected_output,_is_edge_case,_is_error_pattern", lines[0])
	assert.Equal(t, "1,x,c1,4,false,true", lines[1])

	table, err := ReadCSV(&buf)
	require.NoError(t, err)
	back := table.Cases("ds", DefaultImportOptions())
	require.Len(t, back, 2)
	assert.Equal(t, "c1", back[0].ID)
	assert.True(t, back[0].IsErrorPattern)
	assert.Equal(t, "4", *back[0].ExpectedOutput)
	assert.Equal(t, map[string]any{"a": "only a", "b": ""}, back[1].RawInput)
}
