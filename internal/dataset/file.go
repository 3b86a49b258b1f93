// Package dataset loads evaluation datasets from YAML, JSON and CSV files.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/promptlab/promptlab/internal/assertions"
	"github.com/promptlab/promptlab/internal/models"
)

// File is a dataset together with its cases.
type File struct {
	Dataset models.Dataset
	Cases   []models.TestCase
}

// fileFormat is the on-disk layout shared by the YAML and JSON forms.
// Cases stay loosely typed until decodeCase so that the "input" and
// "expected" aliases can be accepted.
type fileFormat struct {
	ID                string            `yaml:"id" json:"id"`
	Name              string            `yaml:"name" json:"name"`
	Description       *string           `yaml:"description" json:"description"`
	DatasetType       string            `yaml:"dataset_type" json:"dataset_type"`
	ColumnMapping     map[string]string `yaml:"column_mapping" json:"column_mapping"`
	DefaultAssertions any               `yaml:"default_assertions" json:"default_assertions"`
	Cases             []map[string]any  `yaml:"cases" json:"cases"`
}

// Load reads a dataset file, choosing the format from the extension:
// .yaml/.yml, .json or .csv. A CSV file becomes a dataset named after the
// file, with default import options.
func Load(path string) (*File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		t, err := LoadCSV(path)
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cases := t.Cases(id, DefaultImportOptions())
		slog.Debug("Loaded CSV dataset", "path", path, "cases", len(cases))
		return &File{
			Dataset: models.Dataset{ID: id, Name: id, DatasetType: models.DatasetEvaluation, CaseCount: len(cases)},
			Cases:   cases,
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
	}
	var ff fileFormat
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ff)
	case ".json":
		err = json.Unmarshal(data, &ff)
	default:
		return nil, fmt.Errorf("dataset: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: parsing %s: %w", path, err)
	}

	f, err := ff.build(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	slog.Debug("Loaded dataset", "path", path, "id", f.Dataset.ID, "cases", len(f.Cases))
	return f, nil
}

func (ff *fileFormat) build(fallbackID string) (*File, error) {
	ds := models.Dataset{
		ID:            ff.ID,
		Name:          ff.Name,
		Description:   ff.Description,
		DatasetType:   models.DatasetType(ff.DatasetType),
		ColumnMapping: ff.ColumnMapping,
	}
	if ds.ID == "" {
		ds.ID = fallbackID
	}
	if ds.Name == "" {
		ds.Name = ds.ID
	}
	switch ds.DatasetType {
	case "":
		ds.DatasetType = models.DatasetEvaluation
	case models.DatasetGolden, models.DatasetEvaluation, models.DatasetSynthetic:
	default:
		return nil, fmt.Errorf("unknown dataset_type %q", ff.DatasetType)
	}

	defaults, err := assertions.Decode(ff.DefaultAssertions)
	if err != nil {
		return nil, fmt.Errorf("default_assertions: %w", err)
	}
	ds.DefaultAssertions = defaults

	var errs []error
	cases := make([]models.TestCase, 0, len(ff.Cases))
	seen := make(map[string]bool, len(ff.Cases))
	for i, raw := range ff.Cases {
		tc, err := decodeCase(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("case %d: %w", i+1, err))
			continue
		}
		if tc.ID == "" {
			tc.ID = fmt.Sprintf("case-%d", i+1)
		}
		if seen[tc.ID] {
			errs = append(errs, fmt.Errorf("case %d: duplicate id %q", i+1, tc.ID))
			continue
		}
		seen[tc.ID] = true
		tc.DatasetID = ds.ID
		cases = append(cases, tc)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	ds.CaseCount = len(cases)
	return &File{Dataset: ds, Cases: cases}, nil
}

// decodeCase accepts "input" for raw_input and "expected" for
// expected_output. A scalar input is wrapped as {"input": value}.
func decodeCase(raw map[string]any) (models.TestCase, error) {
	m := make(map[string]any, len(raw))
	for k, v := range raw {
		m[k] = v
	}
	if v, ok := m["input"]; ok {
		if _, dup := m["raw_input"]; !dup {
			m["raw_input"] = v
		}
		delete(m, "input")
	}
	if v, ok := m["expected"]; ok {
		if _, dup := m["expected_output"]; !dup {
			m["expected_output"] = v
		}
		delete(m, "expected")
	}
	switch in := m["raw_input"].(type) {
	case nil:
		return models.TestCase{}, errors.New("missing raw_input")
	case map[string]any:
	default:
		m["raw_input"] = map[string]any{"input": in}
	}

	rawAssertions, hasAssertions := m["assertions"]
	delete(m, "assertions")

	var tc models.TestCase
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &tc,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return tc, err
	}
	if err := dec.Decode(m); err != nil {
		return tc, err
	}

	if hasAssertions {
		list, err := assertions.Decode(rawAssertions)
		if err != nil {
			return tc, err
		}
		if list == nil {
			list = []models.Assertion{}
		}
		tc.Assertions = list
	}
	return tc, nil
}
