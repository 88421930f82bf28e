package recipes

import (
	"path/filepath"

	"github.com/arthur-debert/loom/pkg/deps"
	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/ops"
	"github.com/arthur-debert/loom/pkg/scopes"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Recipe is a named, ordered unit of scaffolding work. Recipes are
// immutable once loaded and carry no state past a single run.
type Recipe struct {
	// Name is the definition's path relative to its search-path root,
	// without extension
	Name string

	// Source is the definition file the recipe was loaded from
	Source string

	// Description is optional operator-facing text shown by listings
	Description string

	// Ops are the operations in declaration order
	Ops []ops.Operation
}

// definition is the on-disk shape of a recipe, shared by the TOML and
// YAML forms
type definition struct {
	Description string  `toml:"description" yaml:"description"`
	Ops         []opDef `toml:"ops" yaml:"ops"`
}

// opDef is one operation entry. Which fields are required depends on
// the action; toOperation validates the combination.
type opDef struct {
	Action string `toml:"action" yaml:"action"`

	Path      string `toml:"path" yaml:"path"`
	Content   string `toml:"content" yaml:"content"`
	Overwrite bool   `toml:"overwrite" yaml:"overwrite"`

	Source   string `toml:"source" yaml:"source"`
	Dest     string `toml:"dest" yaml:"dest"`
	Template bool   `toml:"template" yaml:"template"`

	Marker string `toml:"marker" yaml:"marker"`

	Scope string `toml:"scope" yaml:"scope"`

	Name       string `toml:"name" yaml:"name"`
	Constraint string `toml:"constraint" yaml:"constraint"`
	Group      string `toml:"group" yaml:"group"`

	Command string   `toml:"command" yaml:"command"`
	Args    []string `toml:"args" yaml:"args"`

	Recipe string `toml:"recipe" yaml:"recipe"`
}

// parseRecipe builds a Recipe from a definition file's contents
func parseRecipe(name, source string, data []byte) (*Recipe, error) {
	var def definition
	var err error

	switch filepath.Ext(source) {
	case ".toml":
		err = toml.Unmarshal(data, &def)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &def)
	default:
		return nil, errors.Newf(errors.ErrRecipeParse,
			"recipe %q: unsupported definition format %q", name, filepath.Ext(source))
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRecipeParse,
			"recipe %q: cannot parse %s", name, source)
	}

	recipe := &Recipe{
		Name:        name,
		Source:      source,
		Description: def.Description,
		Ops:         make([]ops.Operation, 0, len(def.Ops)),
	}

	for i, od := range def.Ops {
		op, err := od.toOperation()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrRecipeParse,
				"recipe %q: operation %d is invalid", name, i)
		}
		recipe.Ops = append(recipe.Ops, op)
	}

	return recipe, nil
}

func (od opDef) toOperation() (ops.Operation, error) {
	switch od.Action {
	case "create_file":
		if od.Path == "" {
			return ops.Operation{}, errors.New(errors.ErrRecipeParse, "create_file requires 'path'")
		}
		return ops.Operation{
			Type: ops.CreateFile, Path: od.Path, Content: od.Content, Overwrite: od.Overwrite,
		}, nil

	case "remove_file":
		if od.Path == "" {
			return ops.Operation{}, errors.New(errors.ErrRecipeParse, "remove_file requires 'path'")
		}
		return ops.Operation{Type: ops.RemoveFile, Path: od.Path}, nil

	case "copy_file", "copy_dir":
		if od.Source == "" || od.Dest == "" {
			return ops.Operation{}, errors.Newf(errors.ErrRecipeParse,
				"%s requires 'source' and 'dest'", od.Action)
		}
		opType := ops.CopyFile
		if od.Action == "copy_dir" {
			opType = ops.CopyDirectory
		}
		return ops.Operation{
			Type: opType, Source: od.Source, Dest: od.Dest, Template: od.Template,
		}, nil

	case "inject":
		if od.Path == "" || od.Marker == "" {
			return ops.Operation{}, errors.New(errors.ErrRecipeParse,
				"inject requires 'path' and 'marker'")
		}
		return ops.Operation{
			Type: ops.InjectAfterMarker, Path: od.Path, Marker: od.Marker, Content: od.Content,
		}, nil

	case "append_config":
		scope, err := scopes.Parse(od.Scope)
		if err != nil {
			return ops.Operation{}, err
		}
		return ops.Operation{
			Type: ops.AppendConfigBlock, Scope: scope, Content: od.Content,
		}, nil

	case "register_dependency":
		if od.Name == "" {
			return ops.Operation{}, errors.New(errors.ErrRecipeParse,
				"register_dependency requires 'name'")
		}
		group, err := deps.ParseGroup(od.Group)
		if err != nil {
			return ops.Operation{}, err
		}
		return ops.Operation{
			Type: ops.RegisterDependency, DepName: od.Name, Constraint: od.Constraint, Group: group,
		}, nil

	case "run":
		if od.Command == "" {
			return ops.Operation{}, errors.New(errors.ErrRecipeParse, "run requires 'command'")
		}
		return ops.Operation{
			Type: ops.RunShellCommand, Command: od.Command, Args: od.Args,
		}, nil

	case "invoke":
		if od.Recipe == "" {
			return ops.Operation{}, errors.New(errors.ErrRecipeParse, "invoke requires 'recipe'")
		}
		return ops.Operation{Type: ops.InvokeRecipe, Recipe: od.Recipe}, nil
	}

	return ops.Operation{}, errors.Newf(errors.ErrRecipeParse, "unknown action %q", od.Action)
}
