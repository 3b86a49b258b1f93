// Package assertions merges, decodes and validates the assertion lists
// attached to datasets and their cases.
package assertions

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/promptlab/promptlab/internal/models"
)

// Key identifies an assertion for merging. llm-rubric is keyed by type
// alone so a case carries at most one rubric.
func Key(a models.Assertion) string {
	if a.Type == models.AssertionLLMRubric {
		return string(a.Type)
	}
	return string(a.Type) + ":" + a.Value
}

// Merge combines dataset defaults with case assertions. A case assertion
// replaces the dataset assertion with the same Key in place; others are
// appended in order. When expectedOutput is non-empty and no contains
// assertion with that value exists, one is appended.
func Merge(defaults, overrides []models.Assertion, expectedOutput *string) []models.Assertion {
	merged := make([]models.Assertion, 0, len(defaults)+len(overrides)+1)
	index := make(map[string]int, cap(merged))

	put := func(a models.Assertion) {
		k := Key(a)
		if i, ok := index[k]; ok {
			merged[i] = a
			return
		}
		index[k] = len(merged)
		merged = append(merged, a)
	}
	for _, a := range defaults {
		put(a)
	}
	for _, a := range overrides {
		put(a)
	}

	if expectedOutput != nil && *expectedOutput != "" {
		safety := models.Assertion{Type: models.AssertionContains, Value: *expectedOutput}
		if _, ok := index[Key(safety)]; !ok {
			merged = append(merged, safety)
		}
	}
	return merged
}

// MergeCase is Merge for a case of ds.
func MergeCase(ds models.Dataset, tc models.TestCase) []models.Assertion {
	return Merge(ds.DefaultAssertions, tc.Assertions, tc.ExpectedOutput)
}

// Decode converts a loosely typed list, as produced by YAML or JSON
// unmarshalling into any, into assertions and validates each one. A nil
// input decodes to nil.
func Decode(raw any) ([]models.Assertion, error) {
	if raw == nil {
		return nil, nil
	}
	var out []models.Assertion
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("assertions: creating decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("assertions: decoding: %w", err)
	}

	var errs []error
	for i, a := range out {
		if err := Validate(a); err != nil {
			errs = append(errs, fmt.Errorf("assertion %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("assertions: %w", err)
	}
	return out, nil
}

// Validate checks the type is known, a value is present for every type
// except is-json, and any threshold lies in [0, 1].
func Validate(a models.Assertion) error {
	if _, err := models.ParseAssertionType(string(a.Type)); err != nil {
		return err
	}
	if a.Type != models.AssertionIsJSON && a.Value == "" {
		return fmt.Errorf("%s assertion requires a value", a.Type)
	}
	if a.Threshold != nil && (*a.Threshold < 0 || *a.Threshold > 1) {
		return fmt.Errorf("%s threshold %v outside [0, 1]", a.Type, *a.Threshold)
	}
	return nil
}

// Tally counts assertion results of one type.
type Tally struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summarize counts results by assertion type.
func Summarize(results []models.AssertionResult) map[models.AssertionType]Tally {
	out := make(map[models.AssertionType]Tally)
	for _, r := range results {
		t := out[r.Type]
		if r.Passed {
			t.Passed++
		} else {
			t.Failed++
		}
		out[r.Type] = t
	}
	return out
}

// SummarizeOutcomes is Summarize over the assertion results of every
// outcome.
func SummarizeOutcomes(outcomes []models.EvaluationOutcome) map[models.AssertionType]Tally {
	var all []models.AssertionResult
	for _, o := range outcomes {
		all = append(all, o.AssertionResults...)
	}
	return Summarize(all)
}
