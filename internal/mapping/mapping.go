// Package mapping turns dataset columns into template variables.
//
// A mapping is resolved in priority order: the run's override, then the
// dataset default, then a 1:1 mapping of every column onto a variable of
// the same name.
package mapping

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Mapping maps a dataset column name to a template variable name.
type Mapping map[string]string

// Source records which level of the fallback chain produced a mapping.
type Source string

const (
	SourceRun     Source = "run_override"
	SourceDataset Source = "dataset_default"
	SourceAuto    Source = "auto_1to1"
)

// Resolve picks the run mapping when it is non-empty, then the dataset
// mapping, then the identity mapping over columns.
func Resolve(run, dataset Mapping, columns []string) (Mapping, Source) {
	if len(run) > 0 {
		return run, SourceRun
	}
	if len(dataset) > 0 {
		return dataset, SourceDataset
	}
	m := make(Mapping, len(columns))
	for _, c := range columns {
		m[c] = c
	}
	return m, SourceAuto
}

// Apply renames the columns of row according to m. Columns not in m are
// dropped and mapped columns missing from row are skipped. An empty
// mapping returns row itself.
func Apply(row map[string]any, m Mapping) map[string]any {
	if len(m) == 0 {
		return row
	}
	out := make(map[string]any, len(m))
	for col, v := range m {
		if val, ok := row[col]; ok {
			out[v] = val
		}
	}
	return out
}

// Bindings stringifies mapped values for template rendering. Nil values
// become empty strings.
func Bindings(mapped map[string]any) map[string]string {
	b := make(map[string]string, len(mapped))
	for k, v := range mapped {
		if v == nil {
			b[k] = ""
			continue
		}
		b[k] = fmt.Sprint(v)
	}
	return b
}

// Validation is the outcome of checking a mapping against a template's
// variables and a dataset's columns. All lists are sorted.
type Validation struct {
	IsValid          bool     `json:"is_valid"`
	MissingVariables []string `json:"missing_variables"`
	UnusedColumns    []string `json:"unused_columns"`
	Warnings         []string `json:"warnings"`
}

// Validate reports variables no column maps to, columns the mapping
// ignores, and mapped columns absent from the data. Only missing
// variables make a mapping invalid.
func Validate(m Mapping, variables, columns []string) Validation {
	mapped := make(map[string]bool, len(m))
	for _, v := range m {
		mapped[v] = true
	}
	available := make(map[string]bool, len(columns))
	for _, c := range columns {
		available[c] = true
	}

	res := Validation{
		MissingVariables: []string{},
		UnusedColumns:    []string{},
		Warnings:         []string{},
	}
	for _, v := range variables {
		if !mapped[v] && !slices.Contains(res.MissingVariables, v) {
			res.MissingVariables = append(res.MissingVariables, v)
		}
	}
	for c := range available {
		if _, ok := m[c]; !ok {
			res.UnusedColumns = append(res.UnusedColumns, c)
		}
	}
	var unknown []string
	for c := range m {
		if !available[c] {
			unknown = append(unknown, c)
		}
	}

	sort.Strings(res.MissingVariables)
	sort.Strings(res.UnusedColumns)
	if len(unknown) > 0 {
		sort.Strings(unknown)
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("mapped columns not present in data: %s", strings.Join(unknown, ", ")))
	}
	res.IsValid = len(res.MissingVariables) == 0
	return res
}

// aliases lists common column names for well-known variables, in
// preference order.
var aliases = map[string][]string{
	"question": {"query", "q", "user_query", "input", "user_input"},
	"context":  {"document", "doc", "doc_chunk", "chunk", "passage", "text"},
	"answer":   {"response", "output", "expected", "expected_output", "gold"},
}

// Suggest proposes a mapping for variables from the available columns.
// For each variable it tries an exact column name, then a
// case-insensitive match, then the alias table. Variables with no match
// are left out. When columns differ only by case, the last one wins the
// case-insensitive and alias matches.
func Suggest(columns, variables []string) Mapping {
	lower := make(map[string]string, len(columns))
	for _, c := range columns {
		lower[strings.ToLower(c)] = c
	}

	m := Mapping{}
	for _, v := range variables {
		if slices.Contains(columns, v) {
			m[v] = v
			continue
		}
		vl := strings.ToLower(v)
		if c, ok := lower[vl]; ok {
			m[c] = v
			continue
		}
		for _, alias := range aliases[vl] {
			if c, ok := lower[alias]; ok {
				m[c] = v
				break
			}
		}
	}
	return m
}
