package models

import (
	"fmt"
	"sort"
	"time"
)

// AssertionType names a check the execution service applies to a model
// output.
type AssertionType string

const (
	AssertionContains    AssertionType = "contains"
	AssertionNotContains AssertionType = "not-contains"
	AssertionIsJSON      AssertionType = "is-json"
	AssertionRegex       AssertionType = "regex"
	AssertionLLMRubric   AssertionType = "llm-rubric"
	AssertionEquals      AssertionType = "equals"
	AssertionStartsWith  AssertionType = "starts-with"
)

// AssertionTypes lists every known assertion type.
var AssertionTypes = []AssertionType{
	AssertionContains,
	AssertionNotContains,
	AssertionIsJSON,
	AssertionRegex,
	AssertionLLMRubric,
	AssertionEquals,
	AssertionStartsWith,
}

// ParseAssertionType validates s as a known assertion type.
func ParseAssertionType(s string) (AssertionType, error) {
	for _, t := range AssertionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown assertion type %q", s)
}

// Assertion is a check definition attached to a dataset or a case.
type Assertion struct {
	Type        AssertionType `json:"type" yaml:"type" mapstructure:"type"`
	Value       string        `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Threshold   *float64      `json:"threshold,omitempty" yaml:"threshold,omitempty" mapstructure:"threshold"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

// DatasetType classifies a dataset.
type DatasetType string

const (
	DatasetGolden     DatasetType = "golden"
	DatasetEvaluation DatasetType = "evaluation"
	DatasetSynthetic  DatasetType = "synthetic"
)

// Dataset is a named collection of test cases plus defaults shared by all
// of them.
type Dataset struct {
	ID                string            `json:"id" yaml:"id"`
	Name              string            `json:"name" yaml:"name"`
	Description       *string           `json:"description" yaml:"description,omitempty"`
	DatasetType       DatasetType       `json:"dataset_type" yaml:"dataset_type,omitempty"`
	ColumnMapping     map[string]string `json:"column_mapping" yaml:"column_mapping,omitempty"`
	DefaultAssertions []Assertion       `json:"default_assertions" yaml:"default_assertions,omitempty"`
	CaseCount         int               `json:"case_count" yaml:"case_count,omitempty"`
	CreatedAt         time.Time         `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt         time.Time         `json:"updated_at" yaml:"updated_at,omitempty"`
}

// TestCase is one fixed input of a dataset. RawInput holds the source
// columns before any mapping to template variables. Assertions is nil when
// the case defines none, which is distinct from an explicitly empty list.
type TestCase struct {
	ID             string         `json:"id" yaml:"id" mapstructure:"id"`
	DatasetID      string         `json:"dataset_id" yaml:"dataset_id,omitempty" mapstructure:"dataset_id"`
	RawInput       map[string]any `json:"raw_input" yaml:"raw_input" mapstructure:"raw_input"`
	ExpectedOutput *string        `json:"expected_output" yaml:"expected_output,omitempty" mapstructure:"expected_output"`
	Assertions     []Assertion    `json:"assertions" yaml:"assertions,omitempty" mapstructure:"assertions"`
	Metadata       map[string]any `json:"metadata" yaml:"metadata,omitempty" mapstructure:"metadata"`
	IsEdgeCase     bool           `json:"is_edge_case" yaml:"is_edge_case,omitempty" mapstructure:"is_edge_case"`
	IsErrorPattern bool           `json:"is_error_pattern" yaml:"is_error_pattern,omitempty" mapstructure:"is_error_pattern"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at,omitempty" mapstructure:"-"`
}

// Columns returns the sorted raw input column names.
func (c *TestCase) Columns() []string {
	cols := make([]string, 0, len(c.RawInput))
	for k := range c.RawInput {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
