package ops

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/loom/pkg/deps"
	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/logging"
	"github.com/arthur-debert/loom/pkg/params"
	"github.com/arthur-debert/loom/pkg/scopes"
	"github.com/arthur-debert/loom/pkg/shell"
	"github.com/arthur-debert/loom/pkg/templating"
	"github.com/arthur-debert/loom/pkg/types"
)

// Applier applies mutation primitives against the project root.
// Recipes declare what they want; the applier knows how to make each
// primitive happen and how to simulate it in dry-run mode.
type Applier struct {
	fs       types.FS
	root     string
	search   []string
	surfaces *scopes.Surfaces
	deps     *deps.Registry
	runner   shell.Runner
	renderer templating.Renderer
	params   params.Params
	dryRun   bool
}

// ApplierOptions configures an Applier
type ApplierOptions struct {
	FS types.FS

	// Root is the target project directory
	Root string

	// SearchPath lists template source directories in precedence
	// order; the project's own templates come before library defaults
	SearchPath []string

	Surfaces *scopes.Surfaces
	Deps     *deps.Registry
	Runner   shell.Runner
	Renderer templating.Renderer
	Params   params.Params
	DryRun   bool
}

// NewApplier creates an applier for one scaffolding run
func NewApplier(opts ApplierOptions) *Applier {
	surfaces := opts.Surfaces
	if surfaces == nil {
		surfaces = scopes.DefaultSurfaces()
	}
	return &Applier{
		fs:       opts.FS,
		root:     opts.Root,
		search:   opts.SearchPath,
		surfaces: surfaces,
		deps:     opts.Deps,
		runner:   opts.Runner,
		renderer: opts.Renderer,
		params:   opts.Params,
		dryRun:   opts.DryRun,
	}
}

// Apply executes a single operation and reports the outcome
func (a *Applier) Apply(op Operation) Result {
	logger := logging.GetLogger("ops").With().
		Str("type", TypeName(op.Type)).
		Bool("dryRun", a.dryRun).
		Logger()

	logger.Debug().Msg("Applying operation")

	switch op.Type {
	case CreateFile:
		return a.createFile(op)
	case RemoveFile:
		return a.removeFile(op)
	case CopyFile:
		return a.copyFile(op)
	case CopyDirectory:
		return a.copyDirectory(op)
	case InjectAfterMarker:
		return a.injectAfterMarker(op)
	case AppendConfigBlock:
		return a.appendConfigBlock(op)
	case RegisterDependency:
		return a.registerDependency(op)
	case RunShellCommand:
		return a.runShellCommand(op)
	}

	return a.failure(op, errors.Newf(errors.ErrInternal,
		"operation type %s cannot be applied directly", TypeName(op.Type)))
}

func (a *Applier) createFile(op Operation) Result {
	target := filepath.Join(a.root, op.Path)

	if _, err := a.fs.Stat(target); err == nil && !op.Overwrite {
		return a.failure(op, errors.Newf(errors.ErrAlreadyExists,
			"file %q already exists and overwrite is not set", op.Path))
	}

	if a.dryRun {
		return a.simulated(op, fmt.Sprintf("Would create %s", op.Path))
	}

	if err := a.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create directory for %q", op.Path))
	}
	if err := a.fs.WriteFile(target, []byte(op.Content), fs.FileMode(0644)); err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrFileCreate,
			"cannot create %q", op.Path))
	}
	return a.success(op, fmt.Sprintf("Created %s", op.Path))
}

func (a *Applier) removeFile(op Operation) Result {
	target := filepath.Join(a.root, op.Path)

	info, err := a.fs.Stat(target)
	if os.IsNotExist(err) {
		// Removing a missing path is success, never an error
		return a.success(op, fmt.Sprintf("Nothing to remove at %s", op.Path))
	}
	if err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %q", op.Path))
	}

	if a.dryRun {
		return a.simulated(op, fmt.Sprintf("Would remove %s", op.Path))
	}

	if info.IsDir() {
		err = a.fs.RemoveAll(target)
	} else {
		err = a.fs.Remove(target)
	}
	if err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %q", op.Path))
	}
	return a.success(op, fmt.Sprintf("Removed %s", op.Path))
}

func (a *Applier) copyFile(op Operation) Result {
	source, err := a.resolveSource(op.Source)
	if err != nil {
		return a.failure(op, err)
	}

	if a.dryRun {
		return a.simulated(op, fmt.Sprintf("Would copy %s to %s", op.Source, op.Dest))
	}

	data, err := a.fs.ReadFile(source)
	if err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", source))
	}

	target := filepath.Join(a.root, op.Dest)
	if err := a.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create directory for %q", op.Dest))
	}
	// Copies always overwrite so composed recipes can replace scaffold defaults
	if err := a.fs.WriteFile(target, data, fs.FileMode(0644)); err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %q", op.Dest))
	}
	return a.success(op, fmt.Sprintf("Copied %s to %s", op.Source, op.Dest))
}

func (a *Applier) copyDirectory(op Operation) Result {
	source, err := a.resolveSource(op.Source)
	if err != nil {
		return a.failure(op, err)
	}

	if a.dryRun {
		return a.simulated(op, fmt.Sprintf("Would copy tree %s to %s", op.Source, op.Dest))
	}

	target := filepath.Join(a.root, op.Dest)
	if ct, ok := a.fs.(types.TreeCopier); ok {
		err = ct.CopyTree(source, target)
	} else {
		err = a.walkCopy(source, target)
	}
	if err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrFileWrite,
			"cannot copy tree %q to %q", op.Source, op.Dest))
	}

	if op.Template && a.renderer != nil {
		if err := a.renderer.Render(target, a.params.Map()); err != nil {
			return a.failure(op, errors.Wrapf(err, errors.ErrFileWrite,
				"cannot render templates under %q", op.Dest))
		}
	}
	return a.success(op, fmt.Sprintf("Copied tree %s to %s", op.Source, op.Dest))
}

func (a *Applier) injectAfterMarker(op Operation) Result {
	target := filepath.Join(a.root, op.Path)

	data, err := a.fs.ReadFile(target)
	if err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", op.Path))
	}

	lines := strings.Split(string(data), "\n")
	markerAt := -1
	for i, line := range lines {
		if strings.Contains(line, op.Marker) {
			markerAt = i
			break
		}
	}
	if markerAt < 0 {
		return a.failure(op, errors.Newf(errors.ErrMarkerNotFound,
			"marker %q not found in %q", op.Marker, op.Path))
	}

	if a.dryRun {
		return a.simulated(op, fmt.Sprintf("Would inject after %q in %s", op.Marker, op.Path))
	}

	// Insert exactly once, after the first matching line
	injected := make([]string, 0, len(lines)+1)
	injected = append(injected, lines[:markerAt+1]...)
	injected = append(injected, op.Content)
	injected = append(injected, lines[markerAt+1:]...)

	if err := a.fs.WriteFile(target, []byte(strings.Join(injected, "\n")), fs.FileMode(0644)); err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %q", op.Path))
	}
	return a.success(op, fmt.Sprintf("Injected after %q in %s", op.Marker, op.Path))
}

func (a *Applier) appendConfigBlock(op Operation) Result {
	if a.dryRun {
		return a.simulated(op, fmt.Sprintf("Would append to %s scope", op.Scope))
	}

	target, err := a.surfaces.Append(a.fs, a.root, op.Scope, op.Content)
	if err != nil {
		return a.failure(op, err)
	}
	return a.success(op, fmt.Sprintf("Appended block to %s", target))
}

func (a *Applier) registerDependency(op Operation) Result {
	// Registration happens even in dry-run so the finalized list can be
	// previewed
	if err := a.deps.Register(op.DepName, op.Constraint, op.Group); err != nil {
		return a.failure(op, err)
	}
	return a.success(op, fmt.Sprintf("Registered dependency %s", op.DepName))
}

func (a *Applier) runShellCommand(op Operation) Result {
	if a.dryRun {
		return a.simulated(op, fmt.Sprintf("Would run %s", op.Command))
	}

	env := make(map[string]string, a.params.Len())
	for key, value := range a.params.Map() {
		env["LOOM_VAR_"+paramEnvKey(key)] = value
	}

	result, err := a.runner.Run(context.Background(), shell.Command{
		Command:    op.Command,
		Args:       op.Args,
		WorkingDir: a.root,
		Env:        env,
	})
	if err != nil {
		return a.failure(op, errors.Wrapf(err, errors.ErrCommandFailed,
			"command %q failed (exit %d): %s", op.Command, result.ExitCode,
			strings.TrimSpace(result.Stderr)))
	}
	return a.success(op, fmt.Sprintf("Ran %s", op.Command))
}

// resolveSource finds a template source on the search path. Earlier
// directories win, so project-local templates shadow library defaults.
func (a *Applier) resolveSource(source string) (string, error) {
	for _, dir := range a.search {
		candidate := filepath.Join(dir, source)
		if _, err := a.fs.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.Newf(errors.ErrSourceNotFound,
		"source %q not found on the template search path", source)
}

// walkCopy is the portable tree copy used when the filesystem does not
// implement types.TreeCopier
func (a *Applier) walkCopy(src, dst string) error {
	entries, err := a.fs.ReadDir(src)
	if err != nil {
		return err
	}
	if err := a.fs.MkdirAll(dst, 0755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := a.walkCopy(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		data, err := a.fs.ReadFile(srcPath)
		if err != nil {
			return err
		}
		if err := a.fs.WriteFile(dstPath, data, fs.FileMode(0644)); err != nil {
			return err
		}
	}
	return nil
}

func paramEnvKey(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

func (a *Applier) success(op Operation, msg string) Result {
	return Result{Operation: op, Success: true, Message: msg}
}

func (a *Applier) simulated(op Operation, msg string) Result {
	return Result{Operation: op, Success: true, Message: msg}
}

func (a *Applier) failure(op Operation, err error) Result {
	return Result{Operation: op, Success: false, Error: err}
}
