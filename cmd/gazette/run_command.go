package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"gazette/internal/collector"
	"gazette/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Collect papers and build today's report once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg, "")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			c, store, err := buildCollector(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			summary := c.Run(cmd.Context())
			printSummary(cmd, summary)

			switch summary.Outcome {
			case collector.OutcomeSuccess:
				return nil
			case collector.OutcomePartial:
				return &exitError{code: 2, message: "PDF compilation failed; LaTeX source kept"}
			default:
				return summary.Err
			}
		},
	}
}

func printSummary(cmd *cobra.Command, summary collector.Summary) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Run %s finished: %s\n", summary.RunID, summary.Outcome)
	fmt.Fprintf(out, "Window: %s .. %s\n",
		summary.WindowStart.Format("2006-01-02 15:04"),
		summary.WindowEnd.Format("2006-01-02 15:04"))

	if summary.TotalPapers == 0 {
		fmt.Fprintln(out, "No papers found in the collection window; no report generated")
		return
	}

	names := make([]string, 0, len(summary.GroupCounts))
	for name := range summary.GroupCounts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, fmt.Sprintf("%d", summary.GroupCounts[name])})
	}
	rows = append(rows, []string{"total", fmt.Sprintf("%d", summary.TotalPapers)})
	fmt.Fprintln(out, renderTable(
		[]string{"Group", "Papers"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))

	if summary.TexPath != "" {
		fmt.Fprintf(out, "LaTeX source: %s\n", summary.TexPath)
	}
	if summary.ArtifactPath != "" {
		fmt.Fprintf(out, "PDF: %s\n", summary.ArtifactPath)
	}
}
