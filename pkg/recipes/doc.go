// Package recipes loads recipe definitions and plays them back.
//
// A recipe is a named, composable list of mutation operations. The
// loader builds an explicit name-to-recipe registry from the search
// path at startup; the executor then walks the recipe tree depth-first,
// applying operations in declaration order through pkg/ops. Nested
// invocations share a single execution context, which is what makes
// the at-most-once and register-before-install invariants hold across
// the whole tree.
package recipes
