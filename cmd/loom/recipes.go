package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/loom/pkg/config"
	"github.com/arthur-debert/loom/pkg/paths"
	"github.com/arthur-debert/loom/pkg/recipes"
)

var (
	recipesConfigPath string
	recipesExtraDirs  []string
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List recipes available on the search path",
	RunE: func(cmd *cobra.Command, args []string) error {
		xdgPaths := paths.New()
		configPath := recipesConfigPath
		if configPath == "" {
			configPath = xdgPaths.ConfigFilePath()
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		dirs := xdgPaths.RecipeSearchPath(append(recipesExtraDirs, cfg.RecipeDirs...))
		store, err := recipes.Load(dirs)
		if err != nil {
			return err
		}

		if store.Count() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recipes found")
			return nil
		}

		for _, name := range store.Names() {
			recipe, err := store.Get(name)
			if err != nil {
				return err
			}
			if recipe.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d ops\t%s\n", name, len(recipe.Ops), recipe.Description)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d ops\n", name, len(recipe.Ops))
			}
		}
		return nil
	},
}

func init() {
	recipesCmd.Flags().StringVar(&recipesConfigPath, "config", "",
		"Engine config file (default is $XDG_CONFIG_HOME/loom/loom.toml)")
	recipesCmd.Flags().StringArrayVar(&recipesExtraDirs, "recipes", nil,
		"Extra recipe directory, searched before the library (repeatable)")
}
