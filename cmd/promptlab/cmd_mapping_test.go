package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/mapping"
)

func TestMappingPreviewCommand(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "support.yaml", supportDataset)
	writeTestFile(t, dir, "prompt.txt", "Q: {{question}}\n")

	out, _, err := runCLI(t, "", "mapping", "preview", "--template", "prompt.txt", "--dataset", "support.yaml", "--samples", "2")
	require.NoError(t, err)
	assert.Equal(t, `Dataset:   support (3 cases)
Variables: question
Mapping (dataset_default):
  user_query -> question
Validation: valid

--- Sample 1: c1 ---
Q: Where is my order?

--- Sample 2: c2 ---
Q: Can I get a refund?
`, out)
}

func TestMappingPreviewCommand_RunMappingInvalid(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "support.yaml", supportDataset)

	out, _, err := runCLI(t, "Q: {{question}}", "mapping", "preview", "-t", "-", "-d", "support.yaml",
		"--map", "user_query=query", "--format", "json", "--check")

	var failure *TestFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "mapping leaves variables unbound: question", failure.Message)

	var res mapping.PreviewResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, mapping.SourceRun, res.MappingSource)
	assert.False(t, res.Validation.IsValid)
	require.Len(t, res.Samples, 3)
	require.NotNil(t, res.Samples[0].Error)
	assert.Equal(t, "template: missing variables: question", *res.Samples[0].Error)
	assert.Nil(t, res.Samples[0].Rendered)
}

func TestMappingPreviewCommand_ProjectMapping(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, ".promptlab.yaml", "mapping:\n  q: question\n")
	writeTestFile(t, dir, "rows.csv", "id,q,notes\nr1,Why?,internal\n")

	out, _, err := runCLI(t, "{{question}}", "mapping", "preview", "-t", "-", "-d", "rows.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Mapping (dataset_default):\n  q -> question\n")
	assert.Contains(t, out, "  unused columns: notes\n")
	assert.Contains(t, out, "--- Sample 1: r1 ---\nWhy?\n")
}

func TestMappingSuggestCommand(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "rows.csv", "Query,doc,extra\nWhere?,Shipping policy,x\n")
	const tmpl = "{{question}} {{context}} {{answer}}"

	t.Run("text", func(t *testing.T) {
		out, stderr, err := runCLI(t, tmpl, "mapping", "suggest", "-t", "-", "-d", "rows.csv")
		require.NoError(t, err)
		assert.Equal(t, "Query -> question\ndoc -> context\n", out)
		assert.Equal(t, "no column found for: answer\n", stderr)
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := runCLI(t, tmpl, "mapping", "suggest", "-t", "-", "-d", "rows.csv", "--format", "yaml")
		require.NoError(t, err)
		assert.Equal(t, "column_mapping:\n  Query: question\n  doc: context\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := runCLI(t, tmpl, "mapping", "suggest", "-t", "-", "-d", "rows.csv", "--format", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"column_mapping": {"Query": "question", "doc": "context"}}`, out)
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, err := runCLI(t, tmpl, "mapping", "suggest", "-t", "-", "-d", "rows.csv", "--format", "toml")
		assert.ErrorContains(t, err, `unsupported format "toml"`)
	})
}

func TestAssertionsMergeCommand(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "support.yaml", supportDataset)

	out, _, err := runCLI(t, "", "assertions", "merge", "--dataset", "support.yaml")
	require.NoError(t, err)
	assert.Equal(t, `c1 (2)
  is-json
  contains "order"

c2 (3)
  is-json
  contains "order"
  contains "refund"

c3 (2)
  is-json
  contains "order"
`, out)
}

func TestAssertionsMergeCommand_JSONCase(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "support.yaml", supportDataset)

	out, _, err := runCLI(t, "", "assertions", "merge", "-d", "support.yaml", "--case", "c2", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"case_id": "c2", "assertions": [
		{"type": "is-json"},
		{"type": "contains", "value": "order", "description": "must mention the order"},
		{"type": "contains", "value": "refund"}
	]}]`, out)

	_, _, err = runCLI(t, "", "assertions", "merge", "-d", "support.yaml", "--case", "c9")
	assert.ErrorContains(t, err, `case "c9" not found`)
}
