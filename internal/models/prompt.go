package models

import (
	"fmt"
	"time"
)

// PromptStatus is the review state of a prompt version.
type PromptStatus string

const (
	PromptStatusDraft      PromptStatus = "draft"
	PromptStatusInReview   PromptStatus = "in_review"
	PromptStatusActive     PromptStatus = "active"
	PromptStatusDeprecated PromptStatus = "deprecated"
)

// Prompt is a named container of versions.
type Prompt struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Description   *string        `json:"description" yaml:"description,omitempty"`
	Tags          []string       `json:"tags" yaml:"tags,omitempty"`
	ActiveVersion *PromptVersion `json:"active_version" yaml:"active_version,omitempty"`
	VersionCount  int            `json:"version_count" yaml:"version_count,omitempty"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at" yaml:"updated_at,omitempty"`
}

// PromptVersion is one semantically versioned revision of a prompt.
// Variables is expected to equal the extracted variables of Content.
type PromptVersion struct {
	ID         string       `json:"id" yaml:"id"`
	PromptID   string       `json:"prompt_id" yaml:"prompt_id"`
	Major      int          `json:"major" yaml:"major"`
	Minor      int          `json:"minor" yaml:"minor"`
	Patch      int          `json:"patch" yaml:"patch"`
	Content    string       `json:"content" yaml:"content"`
	Variables  []string     `json:"variables" yaml:"variables,omitempty"`
	IsActive   bool         `json:"is_active" yaml:"is_active"`
	Status     PromptStatus `json:"status" yaml:"status"`
	ChangeNote *string      `json:"change_note" yaml:"change_note,omitempty"`
	CreatedBy  *string      `json:"created_by" yaml:"created_by,omitempty"`
	CreatedAt  time.Time    `json:"created_at" yaml:"created_at,omitempty"`
}

// Version returns the "major.minor.patch" string.
func (v *PromptVersion) Version() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
