// Package arxiv wraps the arXiv Atom API for window-bounded category queries.
//
// The client tolerates per-category failures by design: a transient error on
// one category is logged and that category contributes nothing, so a single
// flaky request cannot empty the whole digest.
package arxiv
