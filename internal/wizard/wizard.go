// Package wizard asks for template variable values interactively.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when input is not a terminal and
// accessible prompting was not requested.
var ErrNotInteractive = errors.New("wizard: input is not a terminal")

// IsTerminal reports whether in is an interactive terminal.
func IsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Options controls PromptBindings. Accessible forces huh's line-based
// accessible mode, which also works on non-terminal input.
type Options struct {
	Accessible bool
	Required   bool
}

// PromptBindings asks for a value for every name that has no entry in
// bindings and returns a new map with the answers merged in. When every
// name is already bound, in and out are not used.
func PromptBindings(in io.Reader, out io.Writer, names []string, bindings map[string]string, opts Options) (map[string]string, error) {
	result := make(map[string]string, len(bindings)+len(names))
	maps.Copy(result, bindings)

	unbound := Unbound(names, bindings)
	if len(unbound) == 0 {
		return result, nil
	}
	if !opts.Accessible && !IsTerminal(in) {
		return nil, ErrNotInteractive
	}

	values := make([]string, len(unbound))
	fields := make([]huh.Field, len(unbound))
	for i, name := range unbound {
		input := huh.NewInput().
			Title(name).
			Description(fmt.Sprintf("Value for {{%s}}", name)).
			Value(&values[i])
		if opts.Required {
			input = input.Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("%s is required", name)
				}
				return nil
			})
		}
		fields[i] = input
	}

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithInput(in).
		WithOutput(out).
		WithAccessible(opts.Accessible)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	for i, name := range unbound {
		result[name] = values[i]
	}
	return result, nil
}

// Unbound returns the names without a binding, keeping their order.
func Unbound(names []string, bindings map[string]string) []string {
	var out []string
	for _, n := range names {
		if _, ok := bindings[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// ParseAssignments parses "name=value" pairs as given to --var. The value
// may contain '='; later pairs override earlier ones.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q (want name=value)", p)
		}
		out[name] = value
	}
	return out, nil
}
