package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gazette/internal/config"
	"gazette/internal/daemon"
	"gazette/internal/history"
	"gazette/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon state, environment checks, and the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(cmd.OutOrStdout())
			var lines []string

			lines = append(lines, renderSectionHeader("Daemon", colorize)...)
			status, err := daemon.Probe(cfg)
			if err != nil {
				lines = append(lines, renderStatusLine("Daemon", statusError, err.Error(), colorize))
			} else {
				kind := statusWarn
				if status.Running {
					kind = statusOK
				}
				lines = append(lines, renderStatusLine("Running", kind, yesNo(status.Running), colorize))
				lines = append(lines, renderStatusLine("Next run", statusInfo,
					status.NextRun.Format("2006-01-02 15:04"), colorize))
				lines = append(lines, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))
			}

			if !skipChecks {
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Environment", colorize)...)
				for _, result := range preflight.RunAll(cmd.Context(), cfg) {
					kind := statusError
					if result.Passed {
						kind = statusOK
					}
					lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Last run", colorize)...)
			lines = append(lines, lastRunLines(cmd, cfg, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip environment checks")
	return cmd
}

func lastRunLines(cmd *cobra.Command, cfg *config.Config, colorize bool) []string {
	store, err := history.Open(cfg)
	if err != nil {
		return []string{renderStatusLine("History", statusError, err.Error(), colorize)}
	}
	defer store.Close()

	last, err := store.LastRun(cmd.Context())
	if err != nil {
		return []string{renderStatusLine("History", statusError, err.Error(), colorize)}
	}
	if last == nil {
		return []string{renderStatusLine("History", statusInfo, "no runs recorded", colorize)}
	}

	kind := statusOK
	switch last.Outcome {
	case "partial":
		kind = statusWarn
	case "failed":
		kind = statusError
	}

	lines := []string{
		renderStatusLine("Outcome", kind, last.Outcome, colorize),
		renderStatusLine("Started", statusInfo, last.StartedAt.Local().Format("2006-01-02 15:04"), colorize),
		renderStatusLine("Papers", statusInfo, fmt.Sprintf("%d", last.TotalPapers), colorize),
	}
	if last.ArtifactPath != "" {
		lines = append(lines, renderStatusLine("PDF", statusInfo, last.ArtifactPath, colorize))
	}
	if last.ErrorMessage != "" {
		lines = append(lines, renderStatusLine("Error", statusError, last.ErrorMessage, colorize))
	}
	return lines
}
