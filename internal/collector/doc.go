// Package collector runs the daily pipeline: fetch papers from arXiv,
// assign them to keyword groups, render the LaTeX report, and compile it to
// PDF. A failed compilation downgrades the run to partial instead of failing
// it; the rendered source always stays on disk.
package collector
