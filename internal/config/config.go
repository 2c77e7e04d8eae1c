package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and log directory configuration.
type Paths struct {
	LatexDir string `toml:"latex_dir"`
	PDFDir   string `toml:"pdf_dir"`
	LogDir   string `toml:"log_dir"`
}

// Arxiv contains configuration for the arXiv API fetcher.
type Arxiv struct {
	BaseURL        string   `toml:"base_url"`
	Categories     []string `toml:"categories"`
	DaysBack       int      `toml:"days_back"`
	MaxResults     int      `toml:"max_results"`
	RequestTimeout int      `toml:"request_timeout"`
	RequestDelay   int      `toml:"request_delay"`
}

// Group names one keyword category and its match patterns. Groups are
// evaluated in file order; the first group that matches wins.
type Group struct {
	Name     string   `toml:"name"`
	Patterns []string `toml:"patterns"`
}

// Matching contains keyword matching behaviour.
type Matching struct {
	// WholeWord switches from substring to whole-word pattern matching.
	WholeWord bool `toml:"whole_word"`
}

// Latex contains configuration for rendering and PDF compilation.
type Latex struct {
	Engine            string `toml:"engine"`
	CompileTimeout    int    `toml:"compile_timeout"`
	Attempts          int    `toml:"attempts"`
	MaxPapers         int    `toml:"max_papers"`
	AbstractMaxLength int    `toml:"abstract_max_length"`
}

// Schedule contains the daily trigger time for daemon mode.
type Schedule struct {
	Hour   int `toml:"hour"`
	Minute int `toml:"minute"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Gazette.
//
// Configuration sections by subsystem:
//   - Paths: rendered document, PDF, and log directories
//   - Arxiv: categories, lookback window, and API request limits
//   - Groups: ordered keyword groups used to categorize papers
//   - Matching: keyword matching granularity
//   - Latex: engine choice, compile timeout, and report size caps
//   - Schedule: daily trigger time for daemon mode
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Arxiv         Arxiv         `toml:"arxiv"`
	Groups        []Group       `toml:"groups"`
	Matching      Matching      `toml:"matching"`
	Latex         Latex         `toml:"latex"`
	Schedule      Schedule      `toml:"schedule"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gazette/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gazette.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories required for a run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LatexDir, c.Paths.PDFDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
