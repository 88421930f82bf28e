package main

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/ui"
)

//go:embed docs/*.md
var docsFS embed.FS

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Show documentation topics",
	Long:  `Show a documentation topic rendered for the terminal, or list all topics.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			names, err := topicNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}

		content, err := docsFS.ReadFile("docs/" + args[0] + ".md")
		if err != nil {
			return errors.Newf(errors.ErrNotFound, "unknown topic %q", args[0])
		}

		fmt.Fprint(cmd.OutOrStdout(), ui.NewMarkdownRenderer().Render(string(content)))
		return nil
	},
}

func topicNames() ([]string, error) {
	entries, err := docsFS.ReadDir("docs")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(names)
	return names, nil
}
