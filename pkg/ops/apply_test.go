package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/loom/pkg/deps"
	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/filesystem"
	"github.com/arthur-debert/loom/pkg/params"
	"github.com/arthur-debert/loom/pkg/scopes"
	"github.com/arthur-debert/loom/pkg/shell"
	"github.com/arthur-debert/loom/pkg/templating"
	"github.com/arthur-debert/loom/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	commands []shell.Command
	err      error
}

func (f *fakeRunner) Run(_ context.Context, cmd shell.Command) (shell.Result, error) {
	f.commands = append(f.commands, cmd)
	if f.err != nil {
		return shell.Result{ExitCode: 1}, f.err
	}
	return shell.Result{}, nil
}

func newTestApplier(t *testing.T, fs *testutil.MemoryFS, opts func(*ApplierOptions)) (*Applier, *deps.Registry, *fakeRunner) {
	t.Helper()

	runner := &fakeRunner{}
	registry := deps.NewRegistry()
	o := ApplierOptions{
		FS:     fs,
		Root:   "/project",
		Deps:   registry,
		Runner: runner,
		Params: params.FromMap(map[string]string{"name": "myapp"}),
	}
	if opts != nil {
		opts(&o)
	}
	return NewApplier(o), registry, runner
}

func TestCreateFile(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, _, _ := newTestApplier(t, fs, nil)

	t.Run("creates new file", func(t *testing.T) {
		result := applier.Apply(Operation{Type: CreateFile, Path: "config.yml", Content: "a: 1"})
		require.NoError(t, result.Error)

		data, err := fs.ReadFile("/project/config.yml")
		require.NoError(t, err)
		assert.Equal(t, "a: 1", string(data))
	})

	t.Run("second create without overwrite fails", func(t *testing.T) {
		result := applier.Apply(Operation{Type: CreateFile, Path: "config.yml", Content: "b: 2"})
		assert.True(t, errors.IsErrorCode(result.Error, errors.ErrAlreadyExists))

		// content untouched
		data, _ := fs.ReadFile("/project/config.yml")
		assert.Equal(t, "a: 1", string(data))
	})

	t.Run("create with overwrite replaces content", func(t *testing.T) {
		result := applier.Apply(Operation{Type: CreateFile, Path: "config.yml", Content: "b: 2", Overwrite: true})
		require.NoError(t, result.Error)

		data, _ := fs.ReadFile("/project/config.yml")
		assert.Equal(t, "b: 2", string(data))
	})
}

func TestRemoveFileIsIdempotent(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, _, _ := newTestApplier(t, fs, nil)

	require.NoError(t, fs.WriteFile("/project/Gemfile", []byte("gems"), 0644))

	first := applier.Apply(Operation{Type: RemoveFile, Path: "Gemfile"})
	require.NoError(t, first.Error)
	assert.False(t, fs.Exists("/project/Gemfile"))

	second := applier.Apply(Operation{Type: RemoveFile, Path: "Gemfile"})
	require.NoError(t, second.Error, "removing a missing path must succeed")
	assert.True(t, second.Success)
}

func TestRemoveThenCreate(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, _, _ := newTestApplier(t, fs, nil)

	require.NoError(t, fs.WriteFile("/project/Dockerfile", []byte("default"), 0644))

	result := applier.Apply(Operation{Type: RemoveFile, Path: "Dockerfile"})
	require.NoError(t, result.Error)
	result = applier.Apply(Operation{Type: CreateFile, Path: "Dockerfile", Content: "custom"})
	require.NoError(t, result.Error)

	data, _ := fs.ReadFile("/project/Dockerfile")
	assert.Equal(t, "custom", string(data))
}

func TestCopyFile(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.WriteFile("/lib/templates/docker/Dockerfile", []byte("library"), 0644))
	require.NoError(t, fs.WriteFile("/local/templates/compose.yml", []byte("local"), 0644))

	applier, _, _ := newTestApplier(t, fs, func(o *ApplierOptions) {
		o.SearchPath = []string{"/local/templates", "/lib/templates"}
	})

	t.Run("resolves from search path", func(t *testing.T) {
		result := applier.Apply(Operation{Type: CopyFile, Source: "docker/Dockerfile", Dest: "Dockerfile"})
		require.NoError(t, result.Error)

		data, _ := fs.ReadFile("/project/Dockerfile")
		assert.Equal(t, "library", string(data))
	})

	t.Run("earlier search dirs shadow later ones", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/lib/templates/compose.yml", []byte("library"), 0644))

		result := applier.Apply(Operation{Type: CopyFile, Source: "compose.yml", Dest: "compose.yml"})
		require.NoError(t, result.Error)

		data, _ := fs.ReadFile("/project/compose.yml")
		assert.Equal(t, "local", string(data))
	})

	t.Run("unresolved source fails", func(t *testing.T) {
		result := applier.Apply(Operation{Type: CopyFile, Source: "missing.txt", Dest: "out.txt"})
		assert.True(t, errors.IsErrorCode(result.Error, errors.ErrSourceNotFound))
	})

	t.Run("copy overwrites existing target", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/project/Dockerfile", []byte("old"), 0644))

		result := applier.Apply(Operation{Type: CopyFile, Source: "docker/Dockerfile", Dest: "Dockerfile"})
		require.NoError(t, result.Error)

		data, _ := fs.ReadFile("/project/Dockerfile")
		assert.Equal(t, "library", string(data))
	})
}

func TestCopyDirectory(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.WriteFile("/lib/templates/devops/Dockerfile", []byte("FROM ruby"), 0644))
	require.NoError(t, fs.WriteFile("/lib/templates/devops/compose/web.yml", []byte("web"), 0644))

	applier, _, _ := newTestApplier(t, fs, func(o *ApplierOptions) {
		o.SearchPath = []string{"/lib/templates"}
	})

	result := applier.Apply(Operation{Type: CopyDirectory, Source: "devops", Dest: "deploy"})
	require.NoError(t, result.Error)

	data, err := fs.ReadFile("/project/deploy/Dockerfile")
	require.NoError(t, err)
	assert.Equal(t, "FROM ruby", string(data))

	data, err = fs.ReadFile("/project/deploy/compose/web.yml")
	require.NoError(t, err)
	assert.Equal(t, "web", string(data))
}

func TestCopyDirectoryRendersTemplates(t *testing.T) {
	// The renderer works on the real filesystem, so this test does too
	templates := t.TempDir()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(templates, "site", "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "site", "README.md"),
		[]byte("# {{ .name }}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "site", "docs", "intro.md"),
		[]byte("Welcome to {{ .name }}.\n"), 0644))

	applier := NewApplier(ApplierOptions{
		FS:         filesystem.NewOS(),
		Root:       root,
		SearchPath: []string{templates},
		Deps:       deps.NewRegistry(),
		Renderer:   templating.NewRenderer(),
		Params:     params.FromMap(map[string]string{"name": "myapp"}),
	})

	result := applier.Apply(Operation{
		Type: CopyDirectory, Source: "site", Dest: "site", Template: true,
	})
	require.NoError(t, result.Error)

	data, err := os.ReadFile(filepath.Join(root, "site", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# myapp\n", string(data))

	data, err = os.ReadFile(filepath.Join(root, "site", "docs", "intro.md"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to myapp.\n", string(data))

	// the template source itself stays unrendered
	data, err = os.ReadFile(filepath.Join(templates, "site", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# {{ .name }}\n", string(data))
}

func TestInjectAfterMarker(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, _, _ := newTestApplier(t, fs, nil)

	t.Run("inserts after first marker line", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/project/routes.txt",
			[]byte("head\nMARKER here\ntail"), 0644))

		result := applier.Apply(Operation{
			Type: InjectAfterMarker, Path: "routes.txt", Marker: "MARKER", Content: "new line",
		})
		require.NoError(t, result.Error)

		data, _ := fs.ReadFile("/project/routes.txt")
		assert.Equal(t, "head\nMARKER here\nnew line\ntail", string(data))
	})

	t.Run("inserts only after the first occurrence", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/project/dup.txt",
			[]byte("MARKER\nMARKER"), 0644))

		result := applier.Apply(Operation{
			Type: InjectAfterMarker, Path: "dup.txt", Marker: "MARKER", Content: "once",
		})
		require.NoError(t, result.Error)

		data, _ := fs.ReadFile("/project/dup.txt")
		assert.Equal(t, "MARKER\nonce\nMARKER", string(data))
	})

	t.Run("missing marker leaves file unmodified", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/project/plain.txt", []byte("no markers"), 0644))

		result := applier.Apply(Operation{
			Type: InjectAfterMarker, Path: "plain.txt", Marker: "MARKER", Content: "new line",
		})
		assert.True(t, errors.IsErrorCode(result.Error, errors.ErrMarkerNotFound))

		data, _ := fs.ReadFile("/project/plain.txt")
		assert.Equal(t, "no markers", string(data))
	})
}

func TestAppendConfigBlock(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, _, _ := newTestApplier(t, fs, nil)

	result := applier.Apply(Operation{
		Type: AppendConfigBlock, Scope: scopes.Development, Content: "log_level = debug",
	})
	require.NoError(t, result.Error)

	data, err := fs.ReadFile("/project/config/environments/development")
	require.NoError(t, err)
	assert.Equal(t, "log_level = debug\n", string(data))
}

func TestRegisterDependency(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, registry, _ := newTestApplier(t, fs, nil)

	result := applier.Apply(Operation{
		Type: RegisterDependency, DepName: "redis", Constraint: "~> 5.0", Group: deps.GroupRuntime,
	})
	require.NoError(t, result.Error)

	decls := registry.Finalize()
	require.Len(t, decls, 1)
	assert.Equal(t, "redis", decls[0].Name)
}

func TestRunShellCommand(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, _, runner := newTestApplier(t, fs, nil)

	result := applier.Apply(Operation{
		Type: RunShellCommand, Command: "bin/setup", Args: []string{"--quiet"},
	})
	require.NoError(t, result.Error)

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, "bin/setup", cmd.Command)
	assert.Equal(t, "/project", cmd.WorkingDir)
	assert.Equal(t, "myapp", cmd.Env["LOOM_VAR_NAME"], "params are exported to commands")
}

func TestRunShellCommandFailure(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, _, runner := newTestApplier(t, fs, nil)
	runner.err = fmt.Errorf("exit status 1")

	result := applier.Apply(Operation{Type: RunShellCommand, Command: "bin/setup"})
	assert.True(t, errors.IsErrorCode(result.Error, errors.ErrCommandFailed))
}

func TestDryRunTouchesNothing(t *testing.T) {
	fs := testutil.NewMemoryFS()
	applier, _, runner := newTestApplier(t, fs, func(o *ApplierOptions) {
		o.DryRun = true
	})

	results := []Result{
		applier.Apply(Operation{Type: CreateFile, Path: "a.txt", Content: "x"}),
		applier.Apply(Operation{Type: AppendConfigBlock, Scope: scopes.All, Content: "x"}),
		applier.Apply(Operation{Type: RunShellCommand, Command: "bin/setup"}),
	}

	for _, r := range results {
		require.NoError(t, r.Error)
		assert.True(t, r.Success)
	}
	assert.False(t, fs.Exists("/project/a.txt"))
	assert.False(t, fs.Exists("/project/config/application"))
	assert.Empty(t, runner.commands)
}
