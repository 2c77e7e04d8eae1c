package collector

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gazette/internal/config"
	"gazette/internal/history"
	"gazette/internal/logging"
	"gazette/internal/paper"
	"gazette/internal/services"
	"gazette/internal/services/latex"
	"gazette/internal/testsupport"
)

type fakeFetcher struct {
	papers []paper.Paper
	err    error
}

func (f *fakeFetcher) FetchWindow(ctx context.Context, categories []string, start, end time.Time) ([]paper.Paper, error) {
	return f.papers, f.err
}

type fakeCompiler struct {
	calls  int
	result latex.Result
	seen   string
}

func (f *fakeCompiler) Compile(ctx context.Context, texPath, outputDir string) latex.Result {
	f.calls++
	f.seen = texPath
	if f.result.Succeeded() && f.result.ArtifactPath == "" {
		f.result.ArtifactPath = filepath.Join(outputDir, "arxiv_report.pdf")
	}
	return f.result
}

type fakeRecorder struct {
	records []history.Record
	err     error
}

func (f *fakeRecorder) RecordRun(ctx context.Context, rec history.Record) (int64, error) {
	f.records = append(f.records, rec)
	return int64(len(f.records)), f.err
}

type fakeNotifier struct {
	completed int
	partial   int
	failed    int
	empty     int
	stage     string
}

func (f *fakeNotifier) NotifyRunCompleted(ctx context.Context, totalPapers int, artifactPath string, duration time.Duration) error {
	f.completed++
	return nil
}

func (f *fakeNotifier) NotifyRunPartial(ctx context.Context, totalPapers int, texPath, reason string) error {
	f.partial++
	return nil
}

func (f *fakeNotifier) NotifyRunFailed(ctx context.Context, err error, stage string) error {
	f.failed++
	f.stage = stage
	return nil
}

func (f *fakeNotifier) NotifyEmptyWindow(ctx context.Context, windowStart, windowEnd time.Time) error {
	f.empty++
	return nil
}

func (f *fakeNotifier) TestNotification(ctx context.Context) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t, testsupport.WithGroups(
		config.Group{Name: "ai", Patterns: []string{"machine learning"}},
		config.Group{Name: "physics", Patterns: []string{"quantum"}},
	))
}

func samplePapers() []paper.Paper {
	return []paper.Paper{
		{ID: "2401.00001", Title: "Machine learning for everything", Abstract: "We learn."},
		{ID: "2401.00002", Title: "Quantum widgets", Abstract: "Entangled."},
		{ID: "2401.00003", Title: "Sorting pebbles", Abstract: "No keywords here."},
	}
}

func newTestCollector(t *testing.T, deps Deps) (*Collector, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	return New(cfg, deps, nil), cfg
}

func TestRunFullPipelineSuccess(t *testing.T) {
	fetcher := &fakeFetcher{papers: samplePapers()}
	compiler := &fakeCompiler{result: latex.Result{State: latex.StateSuccess}}
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}

	c, cfg := newTestCollector(t, Deps{
		Fetcher: fetcher, Compiler: compiler, Recorder: recorder, Notifier: notifier,
	})

	summary := c.Run(context.Background())

	if summary.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %q (%v)", summary.Outcome, summary.Err)
	}
	if summary.RunID == "" {
		t.Fatal("missing run id")
	}
	if summary.TotalPapers != 3 {
		t.Fatalf("expected 3 papers, got %d", summary.TotalPapers)
	}
	if summary.GroupCounts["ai"] != 1 || summary.GroupCounts["physics"] != 1 || summary.GroupCounts["uncategorized"] != 1 {
		t.Fatalf("unexpected group counts: %+v", summary.GroupCounts)
	}

	if !strings.HasPrefix(summary.TexPath, cfg.Paths.LatexDir) {
		t.Fatalf("tex written outside latex dir: %q", summary.TexPath)
	}
	data, err := os.ReadFile(summary.TexPath)
	if err != nil {
		t.Fatalf("rendered source missing: %v", err)
	}
	if !strings.Contains(string(data), `\begin{document}`) {
		t.Fatal("rendered source is not a LaTeX document")
	}

	if compiler.calls != 1 || compiler.seen != summary.TexPath {
		t.Fatalf("compiler called %d times with %q", compiler.calls, compiler.seen)
	}
	if summary.ArtifactPath == "" {
		t.Fatal("missing artifact path")
	}
	if notifier.completed != 1 || notifier.failed != 0 || notifier.partial != 0 {
		t.Fatalf("unexpected notifications: %+v", notifier)
	}
	if len(recorder.records) != 1 || recorder.records[0].Outcome != "success" {
		t.Fatalf("unexpected history: %+v", recorder.records)
	}
}

func TestRunEmptyWindowSkipsReport(t *testing.T) {
	fetcher := &fakeFetcher{}
	compiler := &fakeCompiler{}
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}

	c, cfg := newTestCollector(t, Deps{
		Fetcher: fetcher, Compiler: compiler, Recorder: recorder, Notifier: notifier,
	})

	summary := c.Run(context.Background())

	if summary.Outcome != OutcomeSuccess {
		t.Fatalf("empty window should still succeed, got %q", summary.Outcome)
	}
	if summary.TexPath != "" || summary.ArtifactPath != "" {
		t.Fatalf("empty window should produce no files: %+v", summary)
	}
	if compiler.calls != 0 {
		t.Fatal("compiler should not run for an empty window")
	}
	if notifier.empty != 1 {
		t.Fatalf("expected empty-window notification, got %+v", notifier)
	}
	if entries, err := os.ReadDir(cfg.Paths.LatexDir); err == nil && len(entries) > 0 {
		t.Fatal("latex dir should stay empty")
	}
	if len(recorder.records) != 1 || recorder.records[0].TotalPapers != 0 {
		t.Fatalf("unexpected history: %+v", recorder.records)
	}
}

func TestRunFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("arxiv unreachable")}
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}

	c, _ := newTestCollector(t, Deps{
		Fetcher: fetcher, Compiler: &fakeCompiler{}, Recorder: recorder, Notifier: notifier,
	})

	summary := c.Run(context.Background())

	if summary.Outcome != OutcomeFailed {
		t.Fatalf("expected failure, got %q", summary.Outcome)
	}
	if summary.Err == nil || !strings.Contains(summary.Err.Error(), "arxiv unreachable") {
		t.Fatalf("unexpected error: %v", summary.Err)
	}
	if notifier.failed != 1 || notifier.stage != "fetch" {
		t.Fatalf("expected fetch failure notification, got %+v", notifier)
	}
	if len(recorder.records) != 1 || recorder.records[0].Outcome != "failed" {
		t.Fatalf("unexpected history: %+v", recorder.records)
	}
	if recorder.records[0].ErrorMessage == "" {
		t.Fatal("failed record should carry the error message")
	}
}

func TestRunCompileFailureIsPartialAndKeepsSource(t *testing.T) {
	fetcher := &fakeFetcher{papers: samplePapers()}
	compiler := &fakeCompiler{result: latex.Result{State: latex.StateFailed, Attempts: 2, ErrorOutput: "! Emergency stop."}}
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}

	c, _ := newTestCollector(t, Deps{
		Fetcher: fetcher, Compiler: compiler, Recorder: recorder, Notifier: notifier,
	})

	summary := c.Run(context.Background())

	if summary.Outcome != OutcomePartial {
		t.Fatalf("expected partial, got %q", summary.Outcome)
	}
	if _, err := os.Stat(summary.TexPath); err != nil {
		t.Fatalf("rendered source should survive a failed compile: %v", err)
	}
	if summary.ArtifactPath != "" {
		t.Fatal("partial run should not report an artifact")
	}
	if notifier.partial != 1 || notifier.failed != 0 {
		t.Fatalf("expected partial notification, got %+v", notifier)
	}
	if len(recorder.records) != 1 || recorder.records[0].Outcome != "partial" {
		t.Fatalf("unexpected history: %+v", recorder.records)
	}
}

func fileLogger(t *testing.T) (*slog.Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "run.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return logger, logPath
}

func TestRunFlagsConfigurationErrorsAsFatal(t *testing.T) {
	fetcher := &fakeFetcher{
		err: services.Wrap(services.ErrConfiguration, "fetch", "base url", "malformed", nil),
	}
	logger, logPath := fileLogger(t)

	c := New(testConfig(t), Deps{
		Fetcher: fetcher, Compiler: &fakeCompiler{}, Recorder: &fakeRecorder{}, Notifier: &fakeNotifier{},
	}, logger)

	summary := c.Run(context.Background())
	if summary.Outcome != OutcomeFailed {
		t.Fatalf("expected failure, got %q", summary.Outcome)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "configuration requires attention") {
		t.Fatalf("fatal error not flagged in log: %q", string(data))
	}
}

func TestRunDoesNotFlagTransientErrorsAsFatal(t *testing.T) {
	fetcher := &fakeFetcher{
		err: services.Wrap(services.ErrTransient, "fetch", "query", "timeout", nil),
	}
	logger, logPath := fileLogger(t)

	c := New(testConfig(t), Deps{
		Fetcher: fetcher, Compiler: &fakeCompiler{}, Recorder: &fakeRecorder{}, Notifier: &fakeNotifier{},
	}, logger)

	summary := c.Run(context.Background())
	if summary.Outcome != OutcomeFailed {
		t.Fatalf("expected failure, got %q", summary.Outcome)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "configuration requires attention") {
		t.Fatalf("transient error wrongly flagged as fatal: %q", string(data))
	}
}

func TestRunSurvivesRecorderFailure(t *testing.T) {
	fetcher := &fakeFetcher{papers: samplePapers()}
	compiler := &fakeCompiler{result: latex.Result{State: latex.StateSuccess}}
	recorder := &fakeRecorder{err: errors.New("disk full")}

	c, _ := newTestCollector(t, Deps{
		Fetcher: fetcher, Compiler: compiler, Recorder: recorder, Notifier: &fakeNotifier{},
	})

	summary := c.Run(context.Background())
	if summary.Outcome != OutcomeSuccess {
		t.Fatalf("history failure must not change the outcome, got %q", summary.Outcome)
	}
}
