// Package version implements semantic versioning of prompt revisions.
package version

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptlab/promptlab/internal/models"
	"github.com/promptlab/promptlab/internal/template"
)

// ErrVersionNotFound is returned by Activate for an unknown version id.
var ErrVersionNotFound = errors.New("version: not found")

// Semver is a major.minor.patch triple.
type Semver struct {
	Major, Minor, Patch int
}

func (v Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Of returns the version number of pv.
func Of(pv models.PromptVersion) Semver {
	return Semver{pv.Major, pv.Minor, pv.Patch}
}

// Parse reads "M.m.p", with an optional leading "v".
func Parse(s string) (Semver, error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(s), "v"), ".")
	if len(parts) != 3 {
		return Semver{}, fmt.Errorf("version: %q is not major.minor.patch", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Semver{}, fmt.Errorf("version: %q has invalid component %q", s, p)
		}
		nums[i] = n
	}
	return Semver{nums[0], nums[1], nums[2]}, nil
}

// Change is the kind of version bump.
type Change string

const (
	ChangeMajor Change = "major"
	ChangeMinor Change = "minor"
	ChangePatch Change = "patch"
)

// ParseChange validates s. An empty string means a minor change.
func ParseChange(s string) (Change, error) {
	switch c := Change(strings.ToLower(s)); c {
	case "":
		return ChangeMinor, nil
	case ChangeMajor, ChangeMinor, ChangePatch:
		return c, nil
	default:
		return "", fmt.Errorf("version: unknown change %q (want major, minor or patch)", s)
	}
}

// Bump increments v. A major bump resets minor and patch, a minor bump
// resets patch.
func Bump(v Semver, c Change) Semver {
	switch c {
	case ChangeMajor:
		return Semver{v.Major + 1, 0, 0}
	case ChangeMinor:
		return Semver{v.Major, v.Minor + 1, 0}
	default:
		return Semver{v.Major, v.Minor, v.Patch + 1}
	}
}

// Compare returns -1, 0 or +1 as a is lower than, equal to or higher
// than b.
func Compare(a, b Semver) int {
	switch {
	case a.Major != b.Major:
		return cmpInt(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpInt(a.Minor, b.Minor)
	default:
		return cmpInt(a.Patch, b.Patch)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Latest returns the highest version. ok is false for an empty slice.
func Latest(versions []models.PromptVersion) (latest models.PromptVersion, ok bool) {
	if len(versions) == 0 {
		return models.PromptVersion{}, false
	}
	return slices.MaxFunc(versions, func(a, b models.PromptVersion) int {
		return Compare(Of(a), Of(b))
	}), true
}

// Sort orders versions newest first. The input is not modified.
func Sort(versions []models.PromptVersion) []models.PromptVersion {
	out := slices.Clone(versions)
	slices.SortStableFunc(out, func(a, b models.PromptVersion) int {
		return Compare(Of(b), Of(a))
	})
	return out
}

// Activate returns a copy of versions in which id is the only active
// version. The previously active version becomes deprecated.
func Activate(versions []models.PromptVersion, id string) ([]models.PromptVersion, error) {
	if !slices.ContainsFunc(versions, func(v models.PromptVersion) bool { return v.ID == id }) {
		return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	}
	out := slices.Clone(versions)
	for i := range out {
		switch {
		case out[i].ID == id:
			out[i].IsActive = true
			out[i].Status = models.PromptStatusActive
		case out[i].IsActive:
			out[i].IsActive = false
			out[i].Status = models.PromptStatusDeprecated
		}
	}
	return out, nil
}

// NewID returns a fresh version id.
func NewID() string {
	return "ver_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Initial is the first version of a prompt: 1.0.0 and active.
func Initial(promptID, content string, now time.Time) models.PromptVersion {
	return models.PromptVersion{
		ID:        NewID(),
		PromptID:  promptID,
		Major:     1,
		Content:   content,
		Variables: template.ExtractVariables(content),
		IsActive:  true,
		Status:    models.PromptStatusActive,
		CreatedAt: now,
	}
}

// Next creates a draft version of content bumped from the latest of
// existing. With no existing versions it returns Initial.
func Next(existing []models.PromptVersion, content string, c Change, note *string, now time.Time) models.PromptVersion {
	latest, ok := Latest(existing)
	if !ok {
		return Initial("", content, now)
	}
	v := Bump(Of(latest), c)
	return models.PromptVersion{
		ID:         NewID(),
		PromptID:   latest.PromptID,
		Major:      v.Major,
		Minor:      v.Minor,
		Patch:      v.Patch,
		Content:    content,
		Variables:  template.ExtractVariables(content),
		Status:     models.PromptStatusDraft,
		ChangeNote: note,
		CreatedAt:  now,
	}
}
