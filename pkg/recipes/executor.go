package recipes

import (
	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/logging"
	"github.com/arthur-debert/loom/pkg/ops"
)

// Context is the mutable state threaded through one scaffolding run:
// the applied-mutation accumulator, the set of recipes already
// executed, and the live invocation stack for diagnostics. The same
// context flows into nested invocations, so dependency registrations
// made three recipes deep land in the same registry as the root's.
type Context struct {
	// Results accumulates every applied operation in execution order
	Results []ops.Result

	executed map[string]bool
	stack    []string
}

// NewContext creates an empty execution context
func NewContext() *Context {
	return &Context{executed: make(map[string]bool)}
}

// Executed reports whether a recipe already ran in this context
func (c *Context) Executed(name string) bool {
	return c.executed[name]
}

// Stack returns a copy of the current invocation stack
func (c *Context) Stack() []string {
	out := make([]string, len(c.stack))
	copy(out, c.stack)
	return out
}

// Executor resolves recipes and plays their operations back in order
type Executor struct {
	store   *Store
	applier *ops.Applier
}

// NewExecutor creates an executor over a loaded store
func NewExecutor(store *Store, applier *ops.Applier) *Executor {
	return &Executor{store: store, applier: applier}
}

// Execute runs the named recipe and everything it invokes. A recipe
// that already executed in this context is skipped, so a recipe shared
// by two parents runs its mutations exactly once. The first failing
// operation aborts the whole run; the error names the recipe, the
// operation index, and the invocation stack.
func (e *Executor) Execute(name string, ctx *Context) error {
	logger := logging.GetLogger("recipes.executor").With().Str("recipe", name).Logger()

	for _, frame := range ctx.stack {
		if frame == name {
			return errors.Newf(errors.ErrRecipeCycle,
				"recipe %q invokes itself through %v", name, ctx.Stack()).
				WithDetail("stack", ctx.Stack())
		}
	}

	if ctx.executed[name] {
		logger.Debug().Msg("Recipe already executed, skipping")
		return nil
	}

	recipe, err := e.store.Get(name)
	if err != nil {
		if len(ctx.stack) > 0 {
			return errors.Wrapf(err, errors.ErrRecipeNotFound,
				"invoked from %v", ctx.Stack()).WithDetail("stack", ctx.Stack())
		}
		return err
	}

	ctx.executed[name] = true
	ctx.stack = append(ctx.stack, name)
	defer func() {
		ctx.stack = ctx.stack[:len(ctx.stack)-1]
	}()

	logger.Info().Int("operations", len(recipe.Ops)).Msg("Executing recipe")

	for i, op := range recipe.Ops {
		if op.Type == ops.InvokeRecipe {
			if err := e.Execute(op.Recipe, ctx); err != nil {
				return err
			}
			continue
		}

		result := e.applier.Apply(op)
		ctx.Results = append(ctx.Results, result)

		if result.Error != nil {
			logger.Error().
				Err(result.Error).
				Int("opIndex", i).
				Str("type", ops.TypeName(op.Type)).
				Msg("Operation failed, aborting run")

			return errors.Wrapf(result.Error, errors.GetErrorCode(result.Error),
				"recipe %q: operation %d (%s) failed", name, i, ops.TypeName(op.Type)).
				WithDetail("recipe", name).
				WithDetail("opIndex", i).
				WithDetail("stack", ctx.Stack())
		}
	}

	return nil
}
