package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/models"
)

func TestResolve(t *testing.T) {
	columns := []string{"user_query", "doc_chunk"}
	run := Mapping{"user_query": "question"}
	dataset := Mapping{"doc_chunk": "context"}

	tests := []struct {
		name       string
		run        Mapping
		dataset    Mapping
		want       Mapping
		wantSource Source
	}{
		{"run override wins", run, dataset, run, SourceRun},
		{"dataset default", nil, dataset, dataset, SourceDataset},
		{"empty run falls through", Mapping{}, dataset, dataset, SourceDataset},
		{"identity fallback", nil, nil, Mapping{"user_query": "user_query", "doc_chunk": "doc_chunk"}, SourceAuto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, src := Resolve(tt.run, tt.dataset, columns)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSource, src)
		})
	}
}

func TestApply(t *testing.T) {
	row := map[string]any{"user_query": "안녕", "doc_chunk": "내용", "extra": 1}

	got := Apply(row, Mapping{"user_query": "question", "doc_chunk": "context", "missing": "x"})
	assert.Equal(t, map[string]any{"question": "안녕", "context": "내용"}, got)

	assert.Equal(t, row, Apply(row, nil))
}

func TestBindings(t *testing.T) {
	got := Bindings(map[string]any{"n": 3, "s": "text", "nil": nil, "b": true})
	assert.Equal(t, map[string]string{"n": "3", "s": "text", "nil": "", "b": "true"}, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mapping   Mapping
		variables []string
		columns   []string
		want      Validation
	}{
		{
			name:      "complete mapping",
			mapping:   Mapping{"q": "question", "d": "context"},
			variables: []string{"question", "context"},
			columns:   []string{"q", "d"},
			want:      Validation{IsValid: true, MissingVariables: []string{}, UnusedColumns: []string{}, Warnings: []string{}},
		},
		{
			name:      "missing variable and unused column",
			mapping:   Mapping{"q": "question"},
			variables: []string{"question", "context", "answer"},
			columns:   []string{"q", "z", "a"},
			want: Validation{
				MissingVariables: []string{"answer", "context"},
				UnusedColumns:    []string{"a", "z"},
				Warnings:         []string{},
			},
		},
		{
			name:      "mapped column absent from data",
			mapping:   Mapping{"q": "question", "ghost": "context", "phantom": "x"},
			variables: []string{"question"},
			columns:   []string{"q"},
			want: Validation{
				IsValid:          true,
				MissingVariables: []string{},
				UnusedColumns:    []string{},
				Warnings:         []string{"mapped columns not present in data: ghost, phantom"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.mapping, tt.variables, tt.columns))
		})
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		variables []string
		want      Mapping
	}{
		{"exact", []string{"question"}, []string{"question"}, Mapping{"question": "question"}},
		{"case insensitive", []string{"Question"}, []string{"question"}, Mapping{"Question": "question"}},
		{"alias", []string{"user_query", "doc_chunk", "gold"}, []string{"question", "context", "answer"},
			Mapping{"user_query": "question", "doc_chunk": "context", "gold": "answer"}},
		{"alias preference order", []string{"text", "document"}, []string{"context"}, Mapping{"document": "context"}},
		{"case collision keeps last column", []string{"Query", "query"}, []string{"question"}, Mapping{"query": "question"}},
		{"case collision on variable keeps last column", []string{"QUESTION", "Question"}, []string{"question"}, Mapping{"Question": "question"}},
		{"no match", []string{"foo"}, []string{"bar"}, Mapping{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.columns, tt.variables))
		})
	}
}

func TestPreview(t *testing.T) {
	ds := models.Dataset{ID: "ds-1", ColumnMapping: map[string]string{"user_query": "question"}}
	cases := []models.TestCase{
		{ID: "c1", RawInput: map[string]any{"user_query": "What is Go?"}},
		{ID: "c2", RawInput: map[string]any{"other": "x"}},
		{ID: "c3", RawInput: map[string]any{"user_query": "ignored"}},
	}

	res, err := Preview("Q: {{question}}", ds, cases, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, "ds-1", res.DatasetID)
	assert.Equal(t, SourceDataset, res.MappingSource)
	assert.Equal(t, []string{"question"}, res.Variables)
	assert.True(t, res.Validation.IsValid)
	require.Len(t, res.Samples, 2)

	require.NotNil(t, res.Samples[0].Rendered)
	assert.Equal(t, "Q: What is Go?", *res.Samples[0].Rendered)
	assert.Nil(t, res.Samples[0].Error)

	assert.Nil(t, res.Samples[1].Rendered)
	require.NotNil(t, res.Samples[1].Error)
	assert.Contains(t, *res.Samples[1].Error, "question")
}

func TestPreview_RunOverrideAndDefaults(t *testing.T) {
	cases := make([]models.TestCase, 5)
	for i := range cases {
		cases[i] = models.TestCase{ID: string(rune('a' + i)), RawInput: map[string]any{"q": i}}
	}

	res, err := Preview("{{question}}", models.Dataset{}, cases, Mapping{"q": "question"}, 0)
	require.NoError(t, err)
	assert.Equal(t, SourceRun, res.MappingSource)
	require.Len(t, res.Samples, DefaultSampleCount)
	assert.Equal(t, "2", *res.Samples[2].Rendered)
}

func TestPreview_NoCases(t *testing.T) {
	_, err := Preview("{{x}}", models.Dataset{}, nil, nil, 3)
	assert.ErrorIs(t, err, ErrNoCases)
}
