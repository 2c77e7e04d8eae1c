// Package preflight validates the runtime environment before a run or
// daemon start: output directories, the LaTeX engine, and arXiv
// reachability.
package preflight
