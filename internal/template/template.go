// Package template extracts and substitutes {{identifier}} placeholders in
// prompt templates.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {{name}} where name is one or more ASCII word
// characters. Whitespace inside the braces is not a placeholder.
var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// RenderResult is the output of [Render].
type RenderResult struct {
	// Output is the rendered text. Placeholders without a binding are kept
	// verbatim.
	Output string `json:"output"`

	// Unresolved lists the identifiers that had no binding, in order of
	// first appearance.
	Unresolved []string `json:"unresolved"`
}

// MissingVariablesError is returned by [RenderStrict] when one or more
// placeholders have no binding.
type MissingVariablesError struct {
	Variables []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("template: missing variables: %s", strings.Join(e.Variables, ", "))
}

// ExtractVariables returns each placeholder identifier in tmpl exactly once,
// in order of first appearance. Malformed delimiters are ignored.
func ExtractVariables(tmpl string) []string {
	vars := []string{}
	if !strings.Contains(tmpl, "{{") {
		return vars
	}

	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	return vars
}

// Render replaces every placeholder that has an entry in bindings. Values
// are inserted literally and are not scanned for further placeholders.
func Render(tmpl string, bindings map[string]string) RenderResult {
	result := RenderResult{Output: tmpl, Unresolved: []string{}}
	if !strings.Contains(tmpl, "{{") {
		return result
	}

	seen := make(map[string]bool)
	result.Output = placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-2]
		if v, ok := bindings[name]; ok {
			return v
		}
		if !seen[name] {
			seen[name] = true
			result.Unresolved = append(result.Unresolved, name)
		}
		return match
	})
	return result
}

// RenderStrict is like [Render] but fails with a [*MissingVariablesError]
// when any placeholder is left unresolved.
func RenderStrict(tmpl string, bindings map[string]string) (string, error) {
	res := Render(tmpl, bindings)
	if len(res.Unresolved) > 0 {
		return "", &MissingVariablesError{Variables: res.Unresolved}
	}
	return res.Output, nil
}

// Missing returns the variables of tmpl that have no entry in bindings.
func Missing(tmpl string, bindings map[string]string) []string {
	missing := []string{}
	for _, v := range ExtractVariables(tmpl) {
		if _, ok := bindings[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
