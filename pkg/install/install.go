// Package install drives the target ecosystem's package manager after
// the recipe tree completes. The installer is a black box: it receives
// one argument per finalized declaration, shaped name[@constraint] with
// a :group suffix for non-runtime groups, and reports success through
// its exit code.
package install

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/loom/pkg/deps"
	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/logging"
	"github.com/arthur-debert/loom/pkg/shell"
)

// CommandSpec names an external command and its base arguments
type CommandSpec struct {
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
}

// Empty reports whether the spec is unset
func (c CommandSpec) Empty() bool {
	return c.Command == ""
}

// Driver invokes the installer and the post-install formatter
type Driver struct {
	runner    shell.Runner
	installer CommandSpec
	formatter CommandSpec
}

// NewDriver creates an install driver
func NewDriver(runner shell.Runner, installer, formatter CommandSpec) *Driver {
	return &Driver{runner: runner, installer: installer, formatter: formatter}
}

// Install runs the package installer against the finalized dependency
// list. A non-zero installer exit is fatal; the partially-scaffolded
// tree stays on disk for inspection.
func (d *Driver) Install(ctx context.Context, root string, decls []deps.Declaration) error {
	logger := logging.GetLogger("install").With().Str("root", root).Logger()

	if d.installer.Empty() {
		logger.Debug().Msg("No installer configured, skipping install step")
		return nil
	}
	if len(decls) == 0 {
		logger.Info().Msg("No dependencies declared, skipping install step")
		return nil
	}

	args := append([]string{}, d.installer.Args...)
	for _, decl := range decls {
		args = append(args, FormatDeclaration(decl))
	}

	logger.Info().Int("dependencies", len(decls)).Msg("Running installer")

	result, err := d.runner.Run(ctx, shell.Command{
		Command:    d.installer.Command,
		Args:       args,
		WorkingDir: root,
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed,
			"installer %q exited %d: %s", d.installer.Command, result.ExitCode,
			strings.TrimSpace(result.Stderr))
	}

	return nil
}

// Format runs the formatter over the generated tree. Formatting is a
// cosmetic pass, so failures are logged and swallowed.
func (d *Driver) Format(ctx context.Context, root string) {
	logger := logging.GetLogger("install").With().Str("root", root).Logger()

	if d.formatter.Empty() {
		logger.Debug().Msg("No formatter configured, skipping format step")
		return
	}

	_, err := d.runner.Run(ctx, shell.Command{
		Command:    d.formatter.Command,
		Args:       d.formatter.Args,
		WorkingDir: root,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Formatter failed, generated tree left unformatted")
		return
	}

	logger.Info().Msg("Formatter pass completed")
}

// FormatDeclaration renders one declaration as an installer argument
func FormatDeclaration(decl deps.Declaration) string {
	arg := decl.Name
	if decl.Constraint != "" {
		arg = fmt.Sprintf("%s@%s", arg, decl.Constraint)
	}
	if decl.Group != "" && decl.Group != deps.GroupRuntime {
		arg = fmt.Sprintf("%s:%s", arg, decl.Group)
	}
	return arg
}
