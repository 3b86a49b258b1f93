package mapping

import (
	"errors"

	"github.com/promptlab/promptlab/internal/models"
	"github.com/promptlab/promptlab/internal/template"
)

// DefaultSampleCount is the number of cases rendered by Preview when the
// caller does not ask for a specific number.
const DefaultSampleCount = 3

// ErrNoCases is returned by Preview for a dataset without cases.
var ErrNoCases = errors.New("mapping: dataset has no cases")

// Sample is one case rendered through the resolved mapping. Exactly one of
// Rendered and Error is set.
type Sample struct {
	CaseID      string         `json:"case_id"`
	RawInput    map[string]any `json:"raw_input"`
	MappedInput map[string]any `json:"mapped_input"`
	Rendered    *string        `json:"rendered_prompt"`
	Error       *string        `json:"error"`
}

// PreviewResult shows how a template would be fed from a dataset before a
// run is started.
type PreviewResult struct {
	DatasetID       string     `json:"dataset_id"`
	Variables       []string   `json:"variables"`
	ResolvedMapping Mapping    `json:"resolved_mapping"`
	MappingSource   Source     `json:"mapping_source"`
	Validation      Validation `json:"validation"`
	Samples         []Sample   `json:"samples"`
}

// Preview resolves the mapping for ds, validates it against tmpl and
// renders the first sampleCount cases strictly. Columns are taken from
// the first case. Render failures are recorded on the sample rather than
// returned.
func Preview(tmpl string, ds models.Dataset, cases []models.TestCase, run Mapping, sampleCount int) (PreviewResult, error) {
	if len(cases) == 0 {
		return PreviewResult{}, ErrNoCases
	}
	if sampleCount <= 0 {
		sampleCount = DefaultSampleCount
	}
	cases = cases[:min(sampleCount, len(cases))]

	columns := cases[0].Columns()
	resolved, source := Resolve(run, ds.ColumnMapping, columns)
	vars := template.ExtractVariables(tmpl)

	res := PreviewResult{
		DatasetID:       ds.ID,
		Variables:       vars,
		ResolvedMapping: resolved,
		MappingSource:   source,
		Validation:      Validate(resolved, vars, columns),
		Samples:         make([]Sample, 0, len(cases)),
	}
	for _, c := range cases {
		mapped := Apply(c.RawInput, resolved)
		s := Sample{CaseID: c.ID, RawInput: c.RawInput, MappedInput: mapped}
		out, err := template.RenderStrict(tmpl, Bindings(mapped))
		if err != nil {
			msg := err.Error()
			s.Error = &msg
		} else {
			s.Rendered = &out
		}
		res.Samples = append(res.Samples, s)
	}
	return res, nil
}
