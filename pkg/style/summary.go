package style

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/loom/pkg/deps"
	"github.com/arthur-debert/loom/pkg/install"
	"github.com/arthur-debert/loom/pkg/ops"
)

// Summary describes one scaffolding run for display
type Summary struct {
	Recipe   string
	Root     string
	DryRun   bool
	Results  []ops.Result
	Deps     []deps.Declaration
	Duration time.Duration
}

// RenderSummary writes the run summary. On a terminal it uses styled
// pterm output; otherwise a plain-text rendering of the same facts.
func RenderSummary(w io.Writer, s Summary) {
	if IsTerminal(w) {
		renderStyled(w, s)
		return
	}
	renderPlain(w, s)
}

func renderStyled(w io.Writer, s Summary) {
	verb := "Scaffolded"
	if s.DryRun {
		verb = "Simulated"
	}

	pterm.Fprintln(w, Header.Render(fmt.Sprintf("%s %s in %s", verb, s.Recipe, s.Root)))

	for _, res := range s.Results {
		line := fmt.Sprintf("  %s %s", ops.TypeName(res.Operation.Type), res.Message)
		if s.DryRun {
			pterm.Fprintln(w, Muted.Render(line))
		} else {
			pterm.Fprintln(w, Success.Render(line))
		}
	}

	if len(s.Deps) > 0 {
		pterm.Fprintln(w, Header.Render("Dependencies"))
		items := make([]pterm.BulletListItem, 0, len(s.Deps))
		for _, decl := range s.Deps {
			items = append(items, pterm.BulletListItem{
				Level: 0,
				Text:  install.FormatDeclaration(decl),
			})
		}
		list, _ := pterm.DefaultBulletList.WithItems(items).Srender()
		pterm.Fprintln(w, list)
	}

	pterm.Fprintln(w, Muted.Render(fmt.Sprintf("%d operations in %s",
		len(s.Results), s.Duration.Round(time.Millisecond))))
}

func renderPlain(w io.Writer, s Summary) {
	verb := "scaffolded"
	if s.DryRun {
		verb = "simulated"
	}

	fmt.Fprintf(w, "%s %s in %s\n", verb, s.Recipe, s.Root)
	for _, res := range s.Results {
		fmt.Fprintf(w, "  %s %s\n", ops.TypeName(res.Operation.Type), res.Message)
	}
	for _, decl := range s.Deps {
		fmt.Fprintf(w, "  dependency %s\n", install.FormatDeclaration(decl))
	}
	fmt.Fprintf(w, "%d operations in %s\n", len(s.Results), s.Duration.Round(time.Millisecond))
}
