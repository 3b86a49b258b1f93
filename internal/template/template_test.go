package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want []string
	}{
		{name: "empty string", tmpl: "", want: []string{}},
		{name: "no placeholders", tmpl: "no placeholders here", want: []string{}},
		{name: "dedup keeps first occurrence order", tmpl: "{{a}} and {{b}} and {{a}}", want: []string{"a", "b"}},
		{name: "adjacent placeholders", tmpl: "{{a}}{{b}}{{c}}", want: []string{"a", "b", "c"}},
		{name: "digits and underscores", tmpl: "{{user_1}} {{2nd}}", want: []string{"user_1", "2nd"}},
		{name: "unclosed delimiter ignored", tmpl: "{{open and {{closed}}", want: []string{"closed"}},
		{name: "whitespace inside braces ignored", tmpl: "{{ spaced }} {{tight}}", want: []string{"tight"}},
		{name: "hyphen not a word character", tmpl: "{{a-b}}", want: []string{}},
		{name: "single braces ignored", tmpl: "{single} {$dollar}", want: []string{}},
		{name: "triple braces match inner", tmpl: "{{{x}}}", want: []string{"x"}},
		{name: "korean text around placeholder", tmpl: "질문: {{question}}\n문맥: {{context}}", want: []string{"question", "context"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractVariables(tc.tmpl)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractVariables_Idempotent(t *testing.T) {
	tmpl := "{{x}} {{y}} {{x}} {{z}} {{y}}"
	first := ExtractVariables(tmpl)
	second := ExtractVariables(tmpl)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"x", "y", "z"}, first)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name           string
		tmpl           string
		bindings       map[string]string
		want           string
		wantUnresolved []string
	}{
		{
			name:           "all bound",
			tmpl:           "Hello {{name}}, you are {{role}}",
			bindings:       map[string]string{"name": "alice", "role": "admin"},
			want:           "Hello alice, you are admin",
			wantUnresolved: []string{},
		},
		{
			name:           "repeated placeholder",
			tmpl:           "{{a}}-{{a}}",
			bindings:       map[string]string{"a": "1"},
			want:           "1-1",
			wantUnresolved: []string{},
		},
		{
			name:           "missing binding kept verbatim",
			tmpl:           "Q: {{question}} C: {{context}} Q again: {{question}}",
			bindings:       map[string]string{"context": "doc"},
			want:           "Q: {{question}} C: doc Q again: {{question}}",
			wantUnresolved: []string{"question"},
		},
		{
			name:           "empty value counts as bound",
			tmpl:           "[{{x}}]",
			bindings:       map[string]string{"x": ""},
			want:           "[]",
			wantUnresolved: []string{},
		},
		{
			name:           "values are not rescanned",
			tmpl:           "{{a}}",
			bindings:       map[string]string{"a": "{{b}}", "b": "nope"},
			want:           "{{b}}",
			wantUnresolved: []string{},
		},
		{
			name:           "nil bindings",
			tmpl:           "{{a}} {{b}}",
			want:           "{{a}} {{b}}",
			wantUnresolved: []string{"a", "b"},
		},
		{
			name:           "no templates passthrough",
			tmpl:           "plain string",
			bindings:       map[string]string{"a": "1"},
			want:           "plain string",
			wantUnresolved: []string{},
		},
		{
			name:           "malformed left alone",
			tmpl:           "{{ a }} {{a}",
			bindings:       map[string]string{"a": "1"},
			want:           "{{ a }} {{a}",
			wantUnresolved: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Render(tc.tmpl, tc.bindings)
			assert.Equal(t, tc.want, got.Output)
			assert.Equal(t, tc.wantUnresolved, got.Unresolved)
		})
	}
}

func TestRender_BindingEveryExtractedVariableResolvesAll(t *testing.T) {
	tmpl := "{{system}}\n\n{{question}} / {{context}} / {{system}}"
	bindings := map[string]string{}
	for _, v := range ExtractVariables(tmpl) {
		bindings[v] = "v-" + v
	}

	got := Render(tmpl, bindings)
	assert.Empty(t, got.Unresolved)
	assert.Equal(t, "v-system\n\nv-question / v-context / v-system", got.Output)
}

func TestRenderStrict(t *testing.T) {
	out, err := RenderStrict("{{a}}+{{b}}", map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.Equal(t, "1+2", out)

	_, err = RenderStrict("{{a}}+{{b}}+{{c}}", map[string]string{"b": "2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template:")

	var missing *MissingVariablesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"a", "c"}, missing.Variables)
}

func TestMissing(t *testing.T) {
	assert.Equal(t, []string{"b"}, Missing("{{a}} {{b}}", map[string]string{"a": "x"}))
	assert.Equal(t, []string{}, Missing("none", nil))
}
