// Package projectconfig loads .promptlab.yaml project configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".promptlab.yaml"

// Default values for project configuration. New references them and no
// other code should duplicate them.
const (
	DefaultResultsDir  = "results/"
	DefaultDatasetsDir = "datasets/"
	DefaultPromptsDir  = "prompts/"

	DefaultFormat              = "table"
	DefaultFilter              = "all"
	DefaultSamples             = 3
	DefaultConcurrency         = 4
	DefaultBootstrapIterations = 10000
	DefaultConfidenceLevel     = 0.95

	DefaultGoodThreshold = 80
	DefaultFairThreshold = 50
)

// maxWalkUp bounds how many parent directories Load searches.
const maxWalkUp = 10

// PathsConfig holds directory paths for results, datasets and prompts.
type PathsConfig struct {
	Results  string `yaml:"results,omitempty"`
	Datasets string `yaml:"datasets,omitempty"`
	Prompts  string `yaml:"prompts,omitempty"`
}

// DefaultsConfig holds default command parameters.
type DefaultsConfig struct {
	Format              string  `yaml:"format,omitempty"`
	Filter              string  `yaml:"filter,omitempty"`
	Samples             int     `yaml:"samples,omitempty"`
	Concurrency         int     `yaml:"concurrency,omitempty"`
	BootstrapIterations int     `yaml:"bootstrap_iterations,omitempty"`
	ConfidenceLevel     float64 `yaml:"confidence_level,omitempty"`
	Color               *bool   `yaml:"color,omitempty"`
}

// ThresholdsConfig holds pass-rate grade bounds and the optional CI gate.
// MinPassRate 0 disables the gate.
type ThresholdsConfig struct {
	Good        int `yaml:"good,omitempty"`
	Fair        int `yaml:"fair,omitempty"`
	MinPassRate int `yaml:"min_pass_rate,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .promptlab.yaml.
type ProjectConfig struct {
	Paths      PathsConfig       `yaml:"paths,omitempty"`
	Defaults   DefaultsConfig    `yaml:"defaults,omitempty"`
	Thresholds ThresholdsConfig  `yaml:"thresholds,omitempty"`
	Mapping    map[string]string `yaml:"mapping,omitempty"`

	// Path is the file the configuration was read from, empty when only
	// defaults apply.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Results:  DefaultResultsDir,
			Datasets: DefaultDatasetsDir,
			Prompts:  DefaultPromptsDir,
		},
		Defaults: DefaultsConfig{
			Format:              DefaultFormat,
			Filter:              DefaultFilter,
			Samples:             DefaultSamples,
			Concurrency:         DefaultConcurrency,
			BootstrapIterations: DefaultBootstrapIterations,
			ConfidenceLevel:     DefaultConfidenceLevel,
			Color:               boolPtr(true),
		},
		Thresholds: ThresholdsConfig{
			Good: DefaultGoodThreshold,
			Fair: DefaultFairThreshold,
		},
	}
}

// Load finds .promptlab.yaml by walking up from startDir, unmarshals it
// and fills in missing fields with defaults. Without a config file it
// returns defaults and a nil error. Real I/O errors are returned.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Path = path
	return cfg, nil
}

// Find returns the path of the nearest .promptlab.yaml above startDir, or
// os.ErrNotExist.
func Find(startDir string) (string, error) {
	path, _, err := findConfigFile(startDir)
	return path, err
}

func findConfigFile(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxWalkUp {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.Datasets != "" {
		dst.Paths.Datasets = src.Paths.Datasets
	}
	if src.Paths.Prompts != "" {
		dst.Paths.Prompts = src.Paths.Prompts
	}

	if src.Defaults.Format != "" {
		dst.Defaults.Format = src.Defaults.Format
	}
	if src.Defaults.Filter != "" {
		dst.Defaults.Filter = src.Defaults.Filter
	}
	if src.Defaults.Samples != 0 {
		dst.Defaults.Samples = src.Defaults.Samples
	}
	if src.Defaults.Concurrency != 0 {
		dst.Defaults.Concurrency = src.Defaults.Concurrency
	}
	if src.Defaults.BootstrapIterations != 0 {
		dst.Defaults.BootstrapIterations = src.Defaults.BootstrapIterations
	}
	if src.Defaults.ConfidenceLevel != 0 {
		dst.Defaults.ConfidenceLevel = src.Defaults.ConfidenceLevel
	}
	if src.Defaults.Color != nil {
		dst.Defaults.Color = src.Defaults.Color
	}

	if src.Thresholds.Good != 0 {
		dst.Thresholds.Good = src.Thresholds.Good
	}
	if src.Thresholds.Fair != 0 {
		dst.Thresholds.Fair = src.Thresholds.Fair
	}
	if src.Thresholds.MinPassRate != 0 {
		dst.Thresholds.MinPassRate = src.Thresholds.MinPassRate
	}

	if len(src.Mapping) > 0 {
		dst.Mapping = src.Mapping
	}
}

func boolPtr(b bool) *bool {
	return &b
}
