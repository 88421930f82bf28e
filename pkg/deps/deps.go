// Package deps accumulates package dependency declarations made by
// recipes. The registry is the single writer surface for declarations
// and closes when finalized, turning the "declare before install" rule
// into a checkable runtime invariant rather than a documented
// convention.
package deps

import (
	"sync"

	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/logging"
)

// Group is the install group a dependency belongs to
type Group string

const (
	GroupRuntime     Group = "runtime"
	GroupDevelopment Group = "development"
	GroupTest        Group = "test"
)

// ParseGroup validates a group name. Empty defaults to runtime.
func ParseGroup(s string) (Group, error) {
	switch Group(s) {
	case "":
		return GroupRuntime, nil
	case GroupRuntime, GroupDevelopment, GroupTest:
		return Group(s), nil
	}
	return "", errors.Newf(errors.ErrInvalidInput,
		"unknown dependency group %q: must be one of runtime, development, test", s)
}

// Declaration is one package dependency declared by a recipe
type Declaration struct {
	Name       string
	Constraint string
	Group      Group
}

// Registry accumulates declarations in first-registration order.
// Finalize transitions it to read-only; registrations after that point
// fail with REGISTRY_CLOSED.
type Registry struct {
	mu     sync.Mutex
	order  []Declaration
	index  map[string]Declaration
	closed bool
}

// NewRegistry creates an open dependency registry
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]Declaration),
	}
}

// Register adds a dependency declaration. Registering the same name
// with the same constraint again is idempotent; a conflicting
// constraint fails with DUPLICATE_DEPENDENCY.
func (r *Registry) Register(name, constraint string, group Group) error {
	logger := logging.GetLogger("deps")

	if name == "" {
		return errors.New(errors.ErrInvalidInput, "dependency name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.Newf(errors.ErrRegistryClosed,
			"cannot register dependency %q: registry already finalized for install", name)
	}

	if existing, ok := r.index[name]; ok {
		if existing.Constraint == constraint {
			logger.Debug().Str("name", name).Msg("Duplicate declaration ignored")
			return nil
		}
		return errors.Newf(errors.ErrDuplicateDependency,
			"dependency %q already registered with constraint %q, conflicting with %q",
			name, existing.Constraint, constraint)
	}

	decl := Declaration{Name: name, Constraint: constraint, Group: group}
	r.index[name] = decl
	r.order = append(r.order, decl)

	logger.Debug().
		Str("name", name).
		Str("constraint", constraint).
		Str("group", string(group)).
		Msg("Dependency registered")
	return nil
}

// Finalize closes the registry and returns the declarations in
// first-registration order. Calling it again returns the same list.
func (r *Registry) Finalize() []Declaration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	out := make([]Declaration, len(r.order))
	copy(out, r.order)
	return out
}

// Closed reports whether the registry has been finalized
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Count returns the number of distinct declarations
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
