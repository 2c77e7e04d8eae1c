package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gazette/internal/collector"
	"gazette/internal/logging"
	"gazette/internal/testsupport"
)

type stubRunner struct {
	summary collector.Summary
}

func (s stubRunner) Run(ctx context.Context) collector.Summary {
	return s.summary
}

func TestRunReturnsCleanlyOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, stubRunner{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Run(ctx); err != nil {
		t.Fatalf("cancelled daemon should exit cleanly, got %v", err)
	}
}

func TestRunWarnsAboutMissingEngineAtStartup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Latex.Engine = "gazette-test-no-such-engine"

	logPath := filepath.Join(t.TempDir(), "daemon.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	d, err := New(cfg, stubRunner{}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "gazette-test-no-such-engine") {
		t.Fatalf("startup log missing dependency warning: %q", string(data))
	}
}

func TestRunRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	first, err := New(cfg, stubRunner{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second, err := New(cfg, stubRunner{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firstDone := make(chan error, 1)
	go func() { firstDone <- first.Run(ctx) }()

	// Wait for the first instance to take the lock.
	deadline := time.After(5 * time.Second)
	for {
		status, probeErr := Probe(cfg)
		if probeErr != nil {
			t.Fatalf("Probe: %v", probeErr)
		}
		if status.Running {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first instance never acquired the lock")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := second.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	cancel()
	if err := <-firstDone; err != nil {
		t.Fatalf("first instance exited with %v", err)
	}
}

func TestProbeIdleDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	status, err := Probe(cfg)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if status.Running {
		t.Fatal("no daemon is running")
	}
	if !status.NextRun.After(time.Now()) {
		t.Fatalf("next run should be in the future, got %v", status.NextRun)
	}
}
