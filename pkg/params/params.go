// Package params parses recipe parameters from the command line and
// exposes them as a read-only lookup. Recipes cannot mutate global
// parameters, which keeps nested recipe execution free of ordering bugs
// from shared mutable state.
package params

import (
	"strings"

	"github.com/arthur-debert/loom/pkg/errors"
)

// Params is a case-sensitive, read-only parameter map
type Params struct {
	values map[string]string
}

// Parse builds a Params from CLI-style arguments. Accepted shapes are
// --key=value and --key (a boolean flag, stored as "true"). A later
// occurrence of the same key overrides an earlier one.
func Parse(args []string) (Params, error) {
	values := make(map[string]string, len(args))

	for _, arg := range args {
		rest, ok := strings.CutPrefix(arg, "--")
		if !ok || rest == "" {
			return Params{}, errors.Newf(errors.ErrInvalidInput,
				"invalid parameter %q: expected --key=value or --key", arg)
		}

		key, value, hasValue := strings.Cut(rest, "=")
		if key == "" {
			return Params{}, errors.Newf(errors.ErrInvalidInput,
				"invalid parameter %q: empty key", arg)
		}
		if !hasValue {
			value = "true"
		}
		values[key] = value
	}

	return Params{values: values}, nil
}

// FromMap builds a Params from an existing map, copying it
func FromMap(values map[string]string) Params {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Params{values: copied}
}

// Get returns the value for key and whether it was set
func (p Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// GetDefault returns the value for key, or def if unset
func (p Params) GetDefault(key, def string) string {
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

// Bool reports whether key was set to "true"
func (p Params) Bool(key string) bool {
	return p.values[key] == "true"
}

// Map returns a copy of the parameter map, for use as templating context
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Len returns the number of parameters set
func (p Params) Len() int {
	return len(p.values)
}
