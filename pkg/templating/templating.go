// Package templating is the boundary to the external template
// collaborator. The engine hands it a directory and a substitution map;
// how placeholders are expanded is the collaborator's business.
package templating

import (
	"strings"
	"text/template"

	"github.com/block/scaffolder"
)

// Renderer fills placeholders in a copied file tree
type Renderer interface {
	// Render evaluates the templates under dir in place against ctx
	Render(dir string, ctx map[string]string) error
}

// ScaffolderRenderer renders trees with github.com/block/scaffolder
type ScaffolderRenderer struct{}

// NewRenderer returns the default scaffolder-backed renderer
func NewRenderer() *ScaffolderRenderer {
	return &ScaffolderRenderer{}
}

// Render evaluates template files and file names under dir against
// ctx. Source and destination are the same directory, so the tree is
// rewritten in place.
func (*ScaffolderRenderer) Render(dir string, ctx map[string]string) error {
	return scaffolder.Scaffold(dir, dir, ctx, scaffolder.Functions(template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}))
}
