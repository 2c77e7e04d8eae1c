package latex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gazette/internal/config"
	"gazette/internal/logging"
	"gazette/internal/services"
)

// State tracks a compilation through its lifecycle:
// Pending -> Attempting -> {Success, Attempting (retry), Failed}.
type State string

const (
	StatePending    State = "pending"
	StateAttempting State = "attempting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Result is the outcome of compiling one rendered document.
type Result struct {
	State State
	// ArtifactPath is set on success.
	ArtifactPath string
	// Attempts is the number of engine invocations made.
	Attempts int
	// ErrorOutput carries the diagnostic tail of the last failed attempt.
	ErrorOutput string
}

// Succeeded reports whether the compilation produced an artifact.
func (r Result) Succeeded() bool {
	return r.State == StateSuccess
}

// Runner abstracts engine invocation so tests can stub the toolchain.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, workDir string) (string, error)
}

// Option configures the compiler.
type Option func(*Compiler)

// WithRunner overrides the subprocess runner.
func WithRunner(r Runner) Option {
	return func(c *Compiler) {
		if r != nil {
			c.runner = r
		}
	}
}

// Compiler turns rendered LaTeX documents into PDFs via an external engine.
// All attempts use the same engine and inputs; there is no engine fallback.
type Compiler struct {
	engine   string
	timeout  time.Duration
	attempts int
	runner   Runner
	logger   *slog.Logger
}

// NewCompiler builds a compiler from configuration.
func NewCompiler(cfg *config.Config, logger *slog.Logger, opts ...Option) *Compiler {
	if logger == nil {
		logger = logging.NewNop()
	}
	attempts := cfg.Latex.Attempts
	if attempts < 1 {
		attempts = 1
	}
	c := &Compiler{
		engine:   cfg.Latex.Engine,
		timeout:  time.Duration(cfg.Latex.CompileTimeout) * time.Second,
		attempts: attempts,
		runner:   commandRunner{},
		logger:   logging.WithComponent(logger, "compiler"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckEngine verifies the configured engine binary is installed and runs.
func (c *Compiler) CheckEngine(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := c.runner.Run(checkCtx, c.engine, []string{"--version"}, ""); err != nil {
		return services.Wrap(services.ErrExternalTool, "compile", "check engine",
			fmt.Sprintf("engine %q unavailable (install TeX Live or MiKTeX)", c.engine), err)
	}
	return nil
}

// Compile runs the engine against texPath, writing the PDF into outputDir.
// Each attempt runs under its own wall-clock timeout; an expired attempt is
// killed and counted against the retry budget. After the budget is exhausted
// the result is Failed with the last diagnostic output — the rendered source
// stays on disk for manual compilation either way.
func (c *Compiler) Compile(ctx context.Context, texPath, outputDir string) Result {
	result := Result{State: StatePending}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		result.State = StateFailed
		result.ErrorOutput = fmt.Sprintf("create output directory: %v", err)
		return result
	}

	args := []string{
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory=" + outputDir,
		texPath,
	}

	for attempt := 1; attempt <= c.attempts; attempt++ {
		result.State = StateAttempting
		result.Attempts = attempt

		output, err := c.runAttempt(ctx, args, filepath.Dir(texPath))
		if err == nil {
			pdfPath := pdfPathFor(texPath, outputDir)
			if _, statErr := os.Stat(pdfPath); statErr != nil {
				err = fmt.Errorf("engine exited cleanly but produced no PDF: %w", statErr)
			} else {
				cleanAuxFiles(pdfPath)
				result.State = StateSuccess
				result.ArtifactPath = pdfPath
				result.ErrorOutput = ""
				c.logger.Info("compilation succeeded",
					logging.String("artifact", pdfPath),
					logging.Int("attempt", attempt))
				return result
			}
		}

		result.ErrorOutput = diagnosticTail(output, err)
		c.logger.Warn("compilation attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("budget", c.attempts),
			logging.Error(err))

		if ctx.Err() != nil {
			break
		}
	}

	result.State = StateFailed
	return result
}

func (c *Compiler) runAttempt(ctx context.Context, args []string, workDir string) (string, error) {
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	output, err := c.runner.Run(attemptCtx, c.engine, args, workDir)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return output, services.Wrap(services.ErrTimeout, "compile", c.engine,
				fmt.Sprintf("killed after %s", c.timeout), err)
		}
		return output, services.Wrap(services.ErrExternalTool, "compile", c.engine, "", err)
	}

	// Some engines exit zero while still reporting fatal problems.
	if strings.Contains(output, "Fatal error") || strings.Contains(output, "! Emergency stop") {
		return output, services.Wrap(services.ErrExternalTool, "compile", c.engine, "fatal error in engine output", nil)
	}
	return output, nil
}

func pdfPathFor(texPath, outputDir string) string {
	base := filepath.Base(texPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".pdf")
}

// diagnosticTail extracts the error-bearing lines from engine output so a
// failed result stays small enough to log and notify.
func diagnosticTail(output string, err error) string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Underfull") || strings.HasPrefix(line, "Overfull") {
			continue
		}
		if strings.HasPrefix(line, "!") || strings.HasPrefix(line, "l.") || strings.Contains(line, "Error") {
			lines = append(lines, line)
		}
	}
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}
	if err != nil {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}

var auxExtensions = []string{".aux", ".log", ".out", ".toc", ".lof", ".lot", ".fls", ".bbl", ".blg"}

func cleanAuxFiles(pdfPath string) {
	stem := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	for _, ext := range auxExtensions {
		_ = os.Remove(stem + ext)
	}
}

type commandRunner struct{}

func (commandRunner) Run(ctx context.Context, binary string, args []string, workDir string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if workDir != "" {
		cmd.Dir = workDir
	}
	output, err := cmd.CombinedOutput()
	return string(output), err
}

var _ Runner = commandRunner{}
