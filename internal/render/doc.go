// Package render binds a categorized digest into a LaTeX source document.
//
// All free text passes through Escape before template binding; the template
// itself carries no user data. Per-group paper counts and abstract lengths
// are capped deterministically so re-rendering the same digest always yields
// the same document.
package render
