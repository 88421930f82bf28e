// Package scopes models the environment-scoped configuration surfaces
// that AppendConfigBlock writes into. Each scope maps to one file under
// the target project; the generated project's runtime is responsible
// for loading the right scope at startup.
package scopes

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/types"
)

// Scope names an environment-scoped configuration surface
type Scope string

const (
	// All is the shared surface applied in every environment
	All Scope = "all"

	Production  Scope = "production"
	Development Scope = "development"
	Test        Scope = "test"
)

// Known returns every scope in a stable order
func Known() []Scope {
	return []Scope{All, Production, Development, Test}
}

// Parse validates a scope name
func Parse(s string) (Scope, error) {
	switch Scope(s) {
	case All, Production, Development, Test:
		return Scope(s), nil
	}
	return "", errors.Newf(errors.ErrInvalidInput,
		"unknown scope %q: must be one of all, production, development, test", s)
}

// Surfaces maps scopes to their file paths relative to the project root
type Surfaces struct {
	paths map[Scope]string
}

// DefaultSurfaces returns the conventional surface layout
func DefaultSurfaces() *Surfaces {
	return &Surfaces{paths: map[Scope]string{
		All:         filepath.Join("config", "application"),
		Production:  filepath.Join("config", "environments", "production"),
		Development: filepath.Join("config", "environments", "development"),
		Test:        filepath.Join("config", "environments", "test"),
	}}
}

// NewSurfaces builds a surface layout from explicit scope-to-path
// overrides, falling back to the defaults for unset scopes.
func NewSurfaces(overrides map[string]string) (*Surfaces, error) {
	s := DefaultSurfaces()
	for name, p := range overrides {
		scope, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if p == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "scope %q has an empty surface path", name)
		}
		s.paths[scope] = p
	}
	return s, nil
}

// Path returns the surface file for a scope, relative to the project root
func (s *Surfaces) Path(scope Scope) string {
	return s.paths[scope]
}

// Append appends a configuration block to the scope's surface under
// root, creating the file if it does not exist. Existing content is
// separated from the new block by a blank line.
func (s *Surfaces) Append(fsys types.FS, root string, scope Scope, block string) (string, error) {
	rel, ok := s.paths[scope]
	if !ok {
		return "", errors.Newf(errors.ErrInvalidInput, "unknown scope %q", scope)
	}

	target := filepath.Join(root, rel)
	if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for %s", target)
	}

	existing, err := fsys.ReadFile(target)
	if err != nil && !os.IsNotExist(err) {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", target)
	}

	content := appendBlock(existing, block)
	if err := fsys.WriteFile(target, content, fs.FileMode(0644)); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
	}
	return target, nil
}

func appendBlock(existing []byte, block string) []byte {
	out := existing
	if len(out) > 0 {
		if out[len(out)-1] != '\n' {
			out = append(out, '\n')
		}
		out = append(out, '\n')
	}
	out = append(out, block...)
	if len(block) > 0 && block[len(block)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}
