package recipes

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/logging"
	"github.com/arthur-debert/loom/pkg/registry"
)

// Store is the recipe registry built at startup. Looking recipes up
// through an explicit registry means an unknown name fails with
// RECIPE_NOT_FOUND instead of an ambiguous filesystem error at
// execution time.
type Store struct {
	recipes registry.Registry[*Recipe]
}

// Load scans the given directories for recipe definitions (*.toml,
// *.yaml, *.yml) and parses them eagerly, so malformed definitions
// fail before any mutation runs. A recipe name found in an earlier
// directory shadows the same name in a later one.
func Load(dirs []string) (*Store, error) {
	logger := logging.GetLogger("recipes.loader")
	store := &Store{recipes: registry.New[*Recipe]()}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			logger.Debug().Str("dir", dir).Msg("Recipe directory does not exist, skipping")
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isRecipeFile(path) {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			name := recipeName(rel)

			if store.recipes.Has(name) {
				logger.Debug().
					Str("recipe", name).
					Str("shadowed", path).
					Msg("Recipe shadowed by earlier search directory")
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot read recipe %s", path)
			}

			recipe, err := parseRecipe(name, path, data)
			if err != nil {
				return err
			}

			return store.recipes.Register(name, recipe)
		})
		if err != nil {
			return nil, err
		}

		logger.Debug().Str("dir", dir).Int("total", store.recipes.Count()).Msg("Recipe directory scanned")
	}

	return store, nil
}

// Get resolves a recipe by name
func (s *Store) Get(name string) (*Recipe, error) {
	recipe, err := s.recipes.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrRecipeNotFound, "recipe %q not found", name)
	}
	return recipe, nil
}

// Names lists all loaded recipe names in sorted order
func (s *Store) Names() []string {
	return s.recipes.List()
}

// Count returns the number of loaded recipes
func (s *Store) Count() int {
	return s.recipes.Count()
}

func isRecipeFile(path string) bool {
	switch filepath.Ext(path) {
	case ".toml", ".yaml", ".yml":
		return true
	}
	return false
}

func recipeName(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
