package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/promptlab/promptlab/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to the outcomes of one model.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one evaluation outcome.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents failed assertions.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an error recorded by the execution service.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit builds one test suite per model in r, in the report's
// model order. Each outcome becomes a test case named by its dataset case
// and classed by its prompt.
func ConvertToJUnit(r *Report) *JUnitTestSuites {
	byModel := make(map[string][]*models.EvaluationOutcome, len(r.Summary.ModelIDs))
	for i := range r.Outcomes {
		o := &r.Outcomes[i]
		byModel[o.ModelID] = append(byModel[o.ModelID], o)
	}

	out := &JUnitTestSuites{Name: r.Summary.TestRunID}
	timestamp := r.GeneratedAt.Format(time.RFC3339)
	for _, id := range r.Summary.ModelIDs {
		st := r.Summary.ByModel[id]
		suite := JUnitTestSuite{
			Name:      id,
			Timestamp: timestamp,
			Properties: []JUnitProperty{
				{Name: "model", Value: id},
				{Name: "pass_rate", Value: fmt.Sprintf("%d", st.PassRate)},
				{Name: "grade", Value: string(r.Grades[id])},
			},
		}
		for _, o := range byModel[id] {
			tc := convertOutcome(o)
			suite.Tests++
			suite.Time += tc.Time
			switch {
			case tc.Error != nil:
				suite.Errors++
			case tc.Failure != nil:
				suite.Failures++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}

		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.Time += suite.Time
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

func convertOutcome(o *models.EvaluationOutcome) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      o.DatasetCaseID,
		Classname: o.PromptID,
		Time:      o.LatencyMs / 1000.0,
	}

	switch o.Status() {
	case models.StatusError:
		tc.Error = &JUnitError{
			Message: *o.Error,
			Type:    "ExecutionError",
		}
	case models.StatusFailed:
		tc.Failure = buildFailure(o)
	}
	return tc
}

func buildFailure(o *models.EvaluationOutcome) *JUnitFailure {
	failed := o.FailedAssertions()
	msg := fmt.Sprintf("%d of %d assertions failed", len(failed), len(o.AssertionResults))
	if len(o.AssertionResults) == 0 {
		msg = "outcome marked as failed"
	}
	return &JUnitFailure{
		Message: msg,
		Type:    "AssertionFailure",
		Body:    formatFailedAssertions(failed),
	}
}

func formatFailedAssertions(failed []models.AssertionResult) string {
	var b strings.Builder
	for _, a := range failed {
		fmt.Fprintf(&b, "[FAIL] %s", a.Type)
		if a.Value != nil && *a.Value != "" {
			fmt.Fprintf(&b, " %q", *a.Value)
		}
		if a.Message != nil && *a.Message != "" {
			fmt.Fprintf(&b, ": %s", *a.Message)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteJUnitXML writes r as JUnit XML to w.
func WriteJUnitXML(w io.Writer, r *Report) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(r), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
