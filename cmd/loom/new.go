package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/loom/pkg/config"
	"github.com/arthur-debert/loom/pkg/deps"
	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/filesystem"
	"github.com/arthur-debert/loom/pkg/install"
	"github.com/arthur-debert/loom/pkg/logging"
	"github.com/arthur-debert/loom/pkg/ops"
	"github.com/arthur-debert/loom/pkg/params"
	"github.com/arthur-debert/loom/pkg/paths"
	"github.com/arthur-debert/loom/pkg/recipes"
	"github.com/arthur-debert/loom/pkg/scopes"
	"github.com/arthur-debert/loom/pkg/shell"
	"github.com/arthur-debert/loom/pkg/style"
	"github.com/arthur-debert/loom/pkg/templating"
)

var (
	newDryRun       bool
	newSkipInstall  bool
	newConfigPath   string
	newRecipeDirs   []string
	newTemplateDirs []string
)

var newCmd = &cobra.Command{
	Use:   "new TARGET_DIR RECIPE [--key=value ...]",
	Short: "Scaffold a project by playing back a recipe",
	Long: `Scaffold a project by playing back the named recipe and everything
it invokes. Parameters after the recipe name (--key=value) are passed
to the recipe run; loom's own flags go before the target directory.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runNew,
}

func init() {
	// Everything after the positional args belongs to the recipe, so
	// flag parsing must stop at the first positional
	newCmd.Flags().SetInterspersed(false)

	newCmd.Flags().BoolVar(&newDryRun, "dry-run", false,
		"Preview the run without touching the filesystem")
	newCmd.Flags().BoolVar(&newSkipInstall, "skip-install", false,
		"Scaffold without running the package installer")
	newCmd.Flags().StringVar(&newConfigPath, "config", "",
		"Engine config file (default is $XDG_CONFIG_HOME/loom/loom.toml)")
	newCmd.Flags().StringArrayVar(&newRecipeDirs, "recipes", nil,
		"Extra recipe directory, searched before the library (repeatable)")
	newCmd.Flags().StringArrayVar(&newTemplateDirs, "templates", nil,
		"Extra template directory, searched before the library (repeatable)")
}

func runNew(cmd *cobra.Command, args []string) error {
	start := time.Now()
	logger := logging.GetLogger("cmd.new")

	target := args[0]
	recipeName := args[1]

	runParams, err := params.Parse(args[2:])
	if err != nil {
		return err
	}

	xdgPaths := paths.New()
	configPath := newConfigPath
	if configPath == "" {
		configPath = xdgPaths.ConfigFilePath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	recipeDirs := xdgPaths.RecipeSearchPath(append(newRecipeDirs, cfg.RecipeDirs...))
	templateDirs := xdgPaths.TemplateSearchPath(append(newTemplateDirs, cfg.TemplateDirs...))

	store, err := recipes.Load(recipeDirs)
	if err != nil {
		return err
	}

	surfaces, err := scopes.NewSurfaces(cfg.Scopes)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(target)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid target directory %q", target)
	}

	fsys := filesystem.NewOS()
	if !newDryRun {
		if err := fsys.MkdirAll(root, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate,
				"cannot create target directory %q", root)
		}
	}

	registry := deps.NewRegistry()
	runner := shell.NewExecRunner(cfg.CommandTimeout)

	applier := ops.NewApplier(ops.ApplierOptions{
		FS:         fsys,
		Root:       root,
		SearchPath: templateDirs,
		Surfaces:   surfaces,
		Deps:       registry,
		Runner:     runner,
		Renderer:   templating.NewRenderer(),
		Params:     runParams,
		DryRun:     newDryRun,
	})

	executor := recipes.NewExecutor(store, applier)
	execCtx := recipes.NewContext()

	logger.Info().
		Str("recipe", recipeName).
		Str("root", root).
		Bool("dryRun", newDryRun).
		Msg("Starting scaffolding run")

	if err := executor.Execute(recipeName, execCtx); err != nil {
		return err
	}

	// Finalize closes the registry; late registrations are a bug, not
	// an input error
	decls := registry.Finalize()

	if !newDryRun && !newSkipInstall {
		driver := install.NewDriver(runner, cfg.Installer, cfg.Formatter)
		if err := driver.Install(cmd.Context(), root, decls); err != nil {
			return err
		}
		driver.Format(cmd.Context(), root)
	}

	style.RenderSummary(cmd.OutOrStdout(), style.Summary{
		Recipe:   recipeName,
		Root:     root,
		DryRun:   newDryRun,
		Results:  execCtx.Results,
		Deps:     decls,
		Duration: time.Since(start),
	})

	return nil
}
