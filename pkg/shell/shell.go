// Package shell runs external commands for loom: recipe shell
// operations, the package installer, and the formatter pass.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/logging"
)

// DefaultTimeout bounds a single command invocation
const DefaultTimeout = 5 * time.Minute

// Command describes one external command invocation
type Command struct {
	Command    string
	Args       []string
	WorkingDir string
	Env        map[string]string
}

// Result captures a completed command's output
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands. Tests substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands via os/exec with a bounded timeout
type ExecRunner struct {
	timeout time.Duration
}

// NewExecRunner creates a runner. A zero timeout uses DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{timeout: timeout}
}

// Run executes the command, blocking until completion or timeout
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	logger := logging.GetLogger("shell").With().
		Str("command", cmd.Command).
		Strs("args", cmd.Args).
		Str("workingDir", cmd.WorkingDir).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	execCmd := exec.CommandContext(ctx, cmd.Command, cmd.Args...)

	if cmd.WorkingDir != "" {
		if _, err := os.Stat(cmd.WorkingDir); os.IsNotExist(err) {
			return Result{}, errors.Newf(errors.ErrFileAccess,
				"working directory does not exist: %s", cmd.WorkingDir)
		}
		execCmd.Dir = cmd.WorkingDir
	}

	execCmd.Env = os.Environ()
	for key, value := range cmd.Env {
		execCmd.Env = append(execCmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	logger.Debug().Msg("Executing command")
	err := execCmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if execCmd.ProcessState != nil {
		result.ExitCode = execCmd.ProcessState.ExitCode()
	}

	if err != nil {
		logger.Debug().
			Err(err).
			Int("exitCode", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("Command failed")
		return result, err
	}

	logger.Debug().Int("exitCode", result.ExitCode).Msg("Command completed")
	return result, nil
}
