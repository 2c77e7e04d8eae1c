package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArxiv()
	c.normalizeGroups()
	c.normalizeLatex()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LatexDir, err = expandPath(c.Paths.LatexDir); err != nil {
		return fmt.Errorf("paths.latex_dir: %w", err)
	}
	if c.Paths.PDFDir, err = expandPath(c.Paths.PDFDir); err != nil {
		return fmt.Errorf("paths.pdf_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArxiv() {
	c.Arxiv.BaseURL = strings.TrimSpace(c.Arxiv.BaseURL)
	if c.Arxiv.BaseURL == "" {
		c.Arxiv.BaseURL = defaultArxivBaseURL
	}
	c.Arxiv.BaseURL = strings.TrimRight(c.Arxiv.BaseURL, "/")

	categories := make([]string, 0, len(c.Arxiv.Categories))
	for _, cat := range c.Arxiv.Categories {
		if trimmed := strings.TrimSpace(cat); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	c.Arxiv.Categories = categories

	if c.Arxiv.MaxResults <= 0 {
		c.Arxiv.MaxResults = defaultMaxResults
	}
	if c.Arxiv.RequestTimeout <= 0 {
		c.Arxiv.RequestTimeout = defaultRequestTimeout
	}
	if c.Arxiv.RequestDelay < 0 {
		c.Arxiv.RequestDelay = 0
	}
}

func (c *Config) normalizeGroups() {
	groups := make([]Group, 0, len(c.Groups))
	for _, group := range c.Groups {
		group.Name = strings.TrimSpace(group.Name)
		patterns := make([]string, 0, len(group.Patterns))
		for _, pattern := range group.Patterns {
			if trimmed := strings.TrimSpace(pattern); trimmed != "" {
				patterns = append(patterns, trimmed)
			}
		}
		group.Patterns = patterns
		groups = append(groups, group)
	}
	c.Groups = groups
}

func (c *Config) normalizeLatex() {
	c.Latex.Engine = strings.ToLower(strings.TrimSpace(c.Latex.Engine))
	if c.Latex.Engine == "" {
		c.Latex.Engine = defaultEngine
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("GAZETTE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
