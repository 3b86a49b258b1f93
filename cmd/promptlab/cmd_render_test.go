package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/template"
)

func TestVarsCommand(t *testing.T) {
	inTempDir(t)

	t.Run("text", func(t *testing.T) {
		out, _, err := runCLI(t, "Use {{context}} to answer {{question}}. {{context}} again.", "vars", "-")
		require.NoError(t, err)
		assert.Equal(t, "context\nquestion\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := runCLI(t, "no placeholders", "vars", "-", "--format", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"variables": []}`, out)
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, err := runCLI(t, "", "vars", "-", "--format", "xml")
		assert.ErrorContains(t, err, `unsupported format "xml"`)
	})
}

func TestRenderCommand_Vars(t *testing.T) {
	dir := inTempDir(t)
	path := writeTestFile(t, dir, "greet.txt", "Hi {{name}}, re: {{topic}}")

	out, stderr, err := runCLI(t, "", "render", path, "--var", "name=Ada")
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada, re: {{topic}}\n", out)
	assert.Equal(t, "unresolved: topic\n", stderr)
}

func TestRenderCommand_Strict(t *testing.T) {
	inTempDir(t)

	_, _, err := runCLI(t, "Hi {{name}} and {{friend}}", "render", "-", "--strict", "--var", "name=Ada")
	var missing *template.MissingVariablesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"friend"}, missing.Variables)
}

func TestRenderCommand_JSON(t *testing.T) {
	inTempDir(t)

	out, _, err := runCLI(t, "{{a}}-{{b}}", "render", "-", "--var", "a=1", "--format", "json")
	require.NoError(t, err)

	var res template.RenderResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "1-{{b}}", res.Output)
	assert.Equal(t, []string{"b"}, res.Unresolved)
}

func TestRenderCommand_CSVRow(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "rows.csv", "user_query,topic\nWhere is my order?,shipping\nCan I get a refund?,billing\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "auto mapping uses column names",
			args: []string{"--csv", "rows.csv", "--row", "2", "--var", "question=override"},
			want: "Q: override T: billing\n",
		},
		{
			name: "explicit mapping keeps only mapped columns",
			args: []string{"--csv", "rows.csv", "--map", "user_query=question"},
			want: "Q: Where is my order? T: {{topic}}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", "-"}, tt.args...)
			out, _, err := runCLI(t, "Q: {{question}} T: {{topic}}", args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderCommand_DatasetCase(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "support.yaml", supportDataset)

	out, _, err := runCLI(t, "Answer: {{question}}", "render", "-", "--dataset", "support.yaml", "--case", "c2")
	require.NoError(t, err)
	assert.Equal(t, "Answer: Can I get a refund?\n", out)

	_, _, err = runCLI(t, "x", "render", "-", "--dataset", "support.yaml", "--case", "nope")
	assert.ErrorContains(t, err, `case "nope" not found`)
}

func TestRenderCommand_Errors(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "rows.csv", "a\n1\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing file", []string{"render", "nope.txt"}, "reading nope.txt"},
		{"bad var", []string{"render", "-", "--var", "novalue"}, `invalid assignment "novalue"`},
		{"bad map", []string{"render", "-", "--csv", "rows.csv", "--map", "a="}, `--map: empty variable for column "a"`},
		{"row out of range", []string{"render", "-", "--csv", "rows.csv", "--row", "5"}, "csv: row 5 out of range"},
		{"csv and dataset", []string{"render", "-", "--csv", "rows.csv", "--dataset", "d.yaml"}, "none of the others can be"},
		{"bad format", []string{"render", "-", "--format", "yaml"}, `unsupported format "yaml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "{{a}}", tt.args...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

const supportDataset = `id: support
name: Support questions
column_mapping:
  user_query: question
default_assertions:
  - type: is-json
  - type: contains
    value: order
cases:
  - id: c1
    input:
      user_query: Where is my order?
  - id: c2
    input:
      user_query: Can I get a refund?
    expected: refund
    assertions:
      - type: contains
        value: order
        description: must mention the order
  - id: c3
    input:
      user_query: Hello?
    assertions: []
`
