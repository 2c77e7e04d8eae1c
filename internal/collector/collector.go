package collector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"gazette/internal/classify"
	"gazette/internal/config"
	"gazette/internal/history"
	"gazette/internal/logging"
	"gazette/internal/notifications"
	"gazette/internal/render"
	"gazette/internal/services"
	"gazette/internal/services/arxiv"
	"gazette/internal/services/latex"
)

// Outcome is the overall result of one collection run.
type Outcome string

const (
	// OutcomeSuccess means the full pipeline ran, including PDF compilation.
	OutcomeSuccess Outcome = "success"
	// OutcomePartial means the report rendered but PDF compilation failed;
	// the LaTeX source is kept on disk.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means the run produced no report at all.
	OutcomeFailed Outcome = "failed"
)

// Summary describes a finished run.
type Summary struct {
	RunID        string
	Outcome      Outcome
	StartedAt    time.Time
	FinishedAt   time.Time
	WindowStart  time.Time
	WindowEnd    time.Time
	TotalPapers  int
	GroupCounts  map[string]int
	TexPath      string
	ArtifactPath string
	Err          error
}

// Compiler is the PDF compilation surface the collector depends on.
type Compiler interface {
	Compile(ctx context.Context, texPath, outputDir string) latex.Result
}

// RunRecorder persists run summaries. A nil recorder disables history.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec history.Record) (int64, error)
}

// Collector orchestrates one fetch -> classify -> render -> compile pass.
type Collector struct {
	cfg      *config.Config
	fetcher  arxiv.Fetcher
	compiler Compiler
	recorder RunRecorder
	notifier notifications.Service
	logger   *slog.Logger
	now      func() time.Time
}

// Deps carries the collaborators a Collector needs. Fetcher and Compiler are
// required; Recorder and Notifier may be nil.
type Deps struct {
	Fetcher  arxiv.Fetcher
	Compiler Compiler
	Recorder RunRecorder
	Notifier notifications.Service
}

// New builds a collector from validated configuration and its collaborators.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Collector{
		cfg:      cfg,
		fetcher:  deps.Fetcher,
		compiler: deps.Compiler,
		recorder: deps.Recorder,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "collector"),
		now:      time.Now,
	}
}

// Run executes one full collection pass. It never panics outward and always
// returns a Summary; pipeline errors surface through Summary.Outcome and
// Summary.Err rather than an error return, so daemon callers can keep
// running after a failed day.
func (c *Collector) Run(ctx context.Context) Summary {
	startedAt := c.now()
	windowEnd := startedAt
	windowStart := windowEnd.AddDate(0, 0, -c.cfg.Arxiv.DaysBack)

	summary := Summary{
		RunID:       uuid.NewString(),
		StartedAt:   startedAt,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}
	logger := c.logger.With(logging.String("run_id", summary.RunID))
	logger.Info("run started",
		logging.Time("window_start", windowStart),
		logging.Time("window_end", windowEnd))

	papers, err := c.fetcher.FetchWindow(ctx, c.cfg.Arxiv.Categories, windowStart, windowEnd)
	if err != nil {
		return c.finish(ctx, logger, summary, OutcomeFailed, fmt.Errorf("fetch: %w", err), "fetch")
	}

	if len(papers) == 0 {
		logger.Warn("no papers in window; skipping report")
		if err := c.notifier.NotifyEmptyWindow(ctx, windowStart, windowEnd); err != nil {
			logger.Warn("notification failed", logging.Error(err))
		}
		return c.finish(ctx, logger, summary, OutcomeSuccess, nil, "")
	}

	groups := classify.Assign(papers, classify.GroupsFromConfig(c.cfg.Groups), classify.Options{
		WholeWord: c.cfg.Matching.WholeWord,
	})
	digest := classify.Digest{
		RunID:       summary.RunID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		GeneratedAt: startedAt,
		Groups:      groups,
	}
	summary.TotalPapers = digest.TotalPapers()
	summary.GroupCounts = make(map[string]int, len(groups))
	for _, group := range groups {
		summary.GroupCounts[group.Name] = len(group.Papers)
		logger.Info("group assigned",
			logging.String("group", group.Name),
			logging.Int("papers", len(group.Papers)))
	}

	document, err := render.Document(digest, render.Options{
		MaxPapers:         c.cfg.Latex.MaxPapers,
		AbstractMaxLength: c.cfg.Latex.AbstractMaxLength,
	})
	if err != nil {
		return c.finish(ctx, logger, summary, OutcomeFailed, fmt.Errorf("render: %w", err), "render")
	}

	texPath, err := c.writeDocument(document, startedAt)
	if err != nil {
		return c.finish(ctx, logger, summary, OutcomeFailed, err, "render")
	}
	summary.TexPath = texPath
	logger.Info("report rendered", logging.String("tex", texPath))

	result := c.compiler.Compile(ctx, texPath, c.cfg.Paths.PDFDir)
	if !result.Succeeded() {
		err := fmt.Errorf("compile: %s", result.ErrorOutput)
		if notifyErr := c.notifier.NotifyRunPartial(ctx, summary.TotalPapers, texPath, result.ErrorOutput); notifyErr != nil {
			logger.Warn("notification failed", logging.Error(notifyErr))
		}
		return c.finish(ctx, logger, summary, OutcomePartial, err, "")
	}
	summary.ArtifactPath = result.ArtifactPath

	if notifyErr := c.notifier.NotifyRunCompleted(ctx, summary.TotalPapers, result.ArtifactPath, c.now().Sub(startedAt)); notifyErr != nil {
		logger.Warn("notification failed", logging.Error(notifyErr))
	}
	return c.finish(ctx, logger, summary, OutcomeSuccess, nil, "")
}

func (c *Collector) writeDocument(document string, startedAt time.Time) (string, error) {
	if err := os.MkdirAll(c.cfg.Paths.LatexDir, 0o755); err != nil {
		return "", fmt.Errorf("create latex dir: %w", err)
	}
	texPath := filepath.Join(c.cfg.Paths.LatexDir,
		fmt.Sprintf("arxiv_report_%s.tex", startedAt.Format("2006-01-02")))
	if err := os.WriteFile(texPath, []byte(document), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return texPath, nil
}

// finish stamps the summary, persists it, and emits failure notifications.
func (c *Collector) finish(ctx context.Context, logger *slog.Logger, summary Summary, outcome Outcome, err error, failedStage string) Summary {
	summary.Outcome = outcome
	summary.Err = err
	summary.FinishedAt = c.now()

	switch outcome {
	case OutcomeSuccess:
		logger.Info("run finished",
			logging.Int("papers", summary.TotalPapers),
			logging.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))
	case OutcomePartial:
		logger.Warn("run finished without PDF",
			logging.String("tex", summary.TexPath),
			logging.Error(err))
	case OutcomeFailed:
		if services.IsFatal(err) {
			logger.Error("run failed; configuration requires attention", logging.Error(err))
		} else {
			logger.Error("run failed", logging.Error(err))
		}
		if notifyErr := c.notifier.NotifyRunFailed(ctx, err, failedStage); notifyErr != nil {
			logger.Warn("notification failed", logging.Error(notifyErr))
		}
	}

	if c.recorder != nil {
		rec := history.Record{
			RunID:        summary.RunID,
			StartedAt:    summary.StartedAt,
			FinishedAt:   summary.FinishedAt,
			WindowStart:  summary.WindowStart,
			WindowEnd:    summary.WindowEnd,
			Outcome:      string(outcome),
			TotalPapers:  summary.TotalPapers,
			GroupCounts:  summary.GroupCounts,
			ArtifactPath: summary.ArtifactPath,
		}
		if err != nil {
			rec.ErrorMessage = err.Error()
		}
		if _, recErr := c.recorder.RecordRun(ctx, rec); recErr != nil {
			logger.Warn("history record failed", logging.Error(recErr))
		}
	}
	return summary
}
