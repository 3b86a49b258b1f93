package version

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promptlab/promptlab/internal/models"
)

// History is the on-disk version list of one prompt.
type History struct {
	PromptID string                 `yaml:"prompt_id"`
	Versions []models.PromptVersion `yaml:"versions"`
}

// LoadHistory reads a history file. A missing file yields an empty
// history for a prompt named after the file.
func LoadHistory(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		base := filepath.Base(path)
		return &History{PromptID: base[:len(base)-len(filepath.Ext(base))]}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("version: reading %s: %w", path, err)
	}
	var h History
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("version: parsing %s: %w", path, err)
	}
	return &h, nil
}

// Save writes h to path as YAML, newest version first.
func (h *History) Save(path string) error {
	out := History{PromptID: h.PromptID, Versions: Sort(h.Versions)}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("version: encoding history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("version: writing %s: %w", path, err)
	}
	return nil
}

// Add appends a new version of content to h and returns it. The first
// version is 1.0.0 and active; later ones are drafts bumped by c from the
// latest.
func (h *History) Add(content string, c Change, note *string, now time.Time) models.PromptVersion {
	v := Next(h.Versions, content, c, note, now)
	if v.PromptID == "" {
		v.PromptID = h.PromptID
	}
	h.Versions = append(h.Versions, v)
	return v
}

// Activate makes id the active version of h.
func (h *History) Activate(id string) error {
	vs, err := Activate(h.Versions, id)
	if err != nil {
		return err
	}
	h.Versions = vs
	return nil
}
