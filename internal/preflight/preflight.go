package preflight

import (
	"context"

	"gazette/internal/config"
	"gazette/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("LaTeX directory", cfg.Paths.LatexDir),
		CheckDirectoryAccess("PDF directory", cfg.Paths.PDFDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckEngine(ctx, cfg.Latex.Engine),
		CheckArxiv(ctx, cfg.Arxiv.BaseURL),
	}
	return results
}

// CheckSystemDeps evaluates the external binaries a run needs. The daemon
// checks these once at startup so missing tools surface in the log before
// the first scheduled run fails.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "LaTeX engine",
			Command:     cfg.Latex.Engine,
			Description: "Required for PDF compilation",
		},
	}
	return deps.CheckBinaries(requirements)
}
