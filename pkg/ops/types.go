package ops

import (
	"github.com/arthur-debert/loom/pkg/deps"
	"github.com/arthur-debert/loom/pkg/scopes"
)

// OperationType enumerates the mutation primitives recipes are built
// from. Everything loom does to a project is one of these; recipes are
// just ordered lists of them.
type OperationType int

const (
	// CreateFile writes content to a path under the project root.
	// Fails with ALREADY_EXISTS when the path exists and Overwrite is
	// unset.
	CreateFile OperationType = iota

	// RemoveFile removes a path. A missing path is success, which
	// supports the remove-then-create idiom used to replace ecosystem
	// defaults.
	RemoveFile

	// CopyFile copies a single file from the template search path into
	// the project, overwriting any scaffold default already there.
	CopyFile

	// CopyDirectory copies a tree from the template search path. With
	// Template set, the copied tree is rendered by the templating
	// collaborator afterwards.
	CopyDirectory

	// InjectAfterMarker inserts text after the first line containing
	// the marker. Fails with MARKER_NOT_FOUND when the marker is
	// absent, leaving the file untouched.
	InjectAfterMarker

	// AppendConfigBlock appends to an environment-scoped configuration
	// surface.
	AppendConfigBlock

	// RegisterDependency adds a declaration to the dependency registry.
	RegisterDependency

	// RunShellCommand executes a command with the project root as
	// working directory.
	RunShellCommand

	// InvokeRecipe recursively executes a named recipe with the same
	// execution context. Dispatched by the recipe executor, not the
	// applier.
	InvokeRecipe
)

// Operation is one atomic unit of work. The populated fields depend on
// Type; recipe loading validates the combination.
type Operation struct {
	Type OperationType

	// CreateFile / RemoveFile / InjectAfterMarker target, relative to
	// the project root
	Path      string
	Content   string
	Overwrite bool

	// CopyFile / CopyDirectory
	Source   string
	Dest     string
	Template bool

	// InjectAfterMarker
	Marker string

	// AppendConfigBlock
	Scope scopes.Scope

	// RegisterDependency
	DepName    string
	Constraint string
	Group      deps.Group

	// RunShellCommand
	Command string
	Args    []string

	// InvokeRecipe
	Recipe string
}

// Result captures the outcome of applying an operation
type Result struct {
	Operation Operation
	Success   bool
	Message   string
	Error     error
}

// TypeName returns a stable lowercase name for logging and summaries
func TypeName(t OperationType) string {
	switch t {
	case CreateFile:
		return "create_file"
	case RemoveFile:
		return "remove_file"
	case CopyFile:
		return "copy_file"
	case CopyDirectory:
		return "copy_dir"
	case InjectAfterMarker:
		return "inject"
	case AppendConfigBlock:
		return "append_config"
	case RegisterDependency:
		return "register_dependency"
	case RunShellCommand:
		return "run"
	case InvokeRecipe:
		return "invoke"
	}
	return "unknown"
}
