package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gazette/internal/logging"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gazette.log")

	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("run completed", logging.Int("papers", 12))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "run completed") {
		t.Fatalf("log file missing message: %q", content)
	}
	if !strings.Contains(content, "papers=12") {
		t.Fatalf("log file missing attribute: %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestComponentPrefixAppearsInConsoleOutput(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WithComponent(logger, "fetcher").Info("query complete")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "fetcher: query complete") {
		t.Fatalf("missing component prefix: %q", string(data))
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("ignored", logging.Error(nil))
}
