// Package validation checks result, dataset and project files against the
// embedded JSON Schemas before they are loaded.
package validation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/promptlab/promptlab/internal/projectconfig"
	"github.com/promptlab/promptlab/internal/results"
	"github.com/promptlab/promptlab/schemas"
)

// Kind is the type of file a path was validated as.
type Kind string

const (
	KindResults Kind = "results"
	KindDataset Kind = "dataset"
	KindConfig  Kind = "config"
)

// schemaBase anchors the embedded schemas so relative $refs between them
// resolve.
const schemaBase = "https://promptlab.dev/schemas/"

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var (
	outcomeSchema *jsonschema.Schema
	runFileSchema *jsonschema.Schema
	datasetSchema *jsonschema.Schema
	configSchema  *jsonschema.Schema
)

func init() {
	compiled := mustCompileSchemas(map[string]string{
		"outcome.schema.json": schemas.OutcomeSchemaJSON,
		"runfile.schema.json": schemas.RunFileSchemaJSON,
		"dataset.schema.json": schemas.DatasetSchemaJSON,
		"config.schema.json":  schemas.ConfigSchemaJSON,
	})
	outcomeSchema = compiled["outcome.schema.json"]
	runFileSchema = compiled["runfile.schema.json"]
	datasetSchema = compiled["dataset.schema.json"]
	configSchema = compiled["config.schema.json"]
}

// mustCompileSchemas adds every schema to one compiler before compiling
// any of them, since runfile.schema.json refers to outcome.schema.json.
func mustCompileSchemas(raw map[string]string) map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	for name, text := range raw {
		var schemaDoc any
		if err := json.Unmarshal([]byte(text), &schemaDoc); err != nil {
			panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
		}
		if err := compiler.AddResource(schemaBase+name, schemaDoc); err != nil {
			panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
		}
	}

	out := make(map[string]*jsonschema.Schema, len(raw))
	for name := range raw {
		sch, err := compiler.Compile(schemaBase + name)
		if err != nil {
			panic(fmt.Sprintf("failed to compile %s: %v", name, err))
		}
		out[name] = sch
	}
	return out
}

// Report is the outcome of validating one file.
type Report struct {
	Path   string   `json:"path"`
	Kind   Kind     `json:"kind"`
	Errors []string `json:"errors"`
}

// Valid reports whether no schema errors were found.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateFile validates the file at path. The kind is taken from the file
// name: the project file by its name, result files by a .json/.jsonl
// extension (optionally .gz or .zst compressed) and datasets by .yaml/.yml.
// A plain .json file holding a dataset (an object with "cases" and no
// "results") is validated as a dataset.
func ValidateFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("validation: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	rc, name, err := results.Decompress(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("validation: %s: %w", path, err)
	}
	defer rc.Close() //nolint:errcheck

	report := &Report{Path: path}
	if strings.HasSuffix(name, ".jsonl") {
		report.Kind = KindResults
		report.Errors, err = ValidateResultLines(rc)
		if err != nil {
			return nil, fmt.Errorf("validation: %s: %w", path, err)
		}
		return report, nil
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("validation: reading %s: %w", path, err)
	}

	report.Kind = detectKind(name, data)
	switch report.Kind {
	case KindConfig:
		report.Errors = ValidateConfigBytes(data)
	case KindDataset:
		report.Errors = ValidateDatasetBytes(data)
	default:
		report.Errors = ValidateResultBytes(data)
	}
	return report, nil
}

func detectKind(name string, data []byte) Kind {
	if name == projectconfig.FileName {
		return KindConfig
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".yaml" || ext == ".yml" {
		return KindDataset
	}
	var probe map[string]json.RawMessage
	if json.Unmarshal(data, &probe) == nil {
		_, hasCases := probe["cases"]
		_, hasResults := probe["results"]
		if hasCases && !hasResults {
			return KindDataset
		}
	}
	return KindResults
}

// ValidateResultBytes validates a JSON result file body: either a
// {"run", "results"} object or a bare array of outcomes.
func ValidateResultBytes(data []byte) []string {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	if items, ok := doc.([]any); ok {
		var errs []string
		for i, item := range items {
			for _, e := range validateAgainstSchema(outcomeSchema, item) {
				if strings.HasPrefix(e, "/:") {
					e = e[1:]
				}
				errs = append(errs, fmt.Sprintf("/%d%s", i, e))
			}
		}
		return errs
	}
	return validateAgainstSchema(runFileSchema, doc)
}

// ValidateResultLines validates JSON lines, one outcome per non-blank line.
// Errors are prefixed with the 1-based line number. The returned error is
// set only when r cannot be read.
func ValidateResultLines(r io.Reader) ([]string, error) {
	var errs []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			errs = append(errs, fmt.Sprintf("line %d: JSON parse error: %v", line, err))
			continue
		}
		for _, e := range validateAgainstSchema(outcomeSchema, doc) {
			errs = append(errs, fmt.Sprintf("line %d: %s", line, e))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return errs, nil
}

// ValidateDatasetBytes validates raw YAML or JSON bytes against the dataset
// schema.
func ValidateDatasetBytes(data []byte) []string {
	return validateYAMLBytes(datasetSchema, data)
}

// ValidateConfigBytes validates raw YAML bytes against the project file
// schema.
func ValidateConfigBytes(data []byte) []string {
	return validateYAMLBytes(configSchema, data)
}

func validateYAMLBytes(schema *jsonschema.Schema, data []byte) []string {
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	if yamlDoc == nil {
		yamlDoc = map[string]any{}
	}
	return validateAgainstSchema(schema, convertToJSONCompatible(yamlDoc))
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible rewrites YAML-decoded values into the shapes the
// schema validator accepts. Maps with non-string keys get their keys
// formatted as strings.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[fmt.Sprint(k)] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
