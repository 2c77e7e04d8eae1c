package config

import (
	"errors"
	"fmt"
	"strings"
)

// UncategorizedGroup is the reserved sentinel group name assigned to papers
// that match no configured keyword group.
const UncategorizedGroup = "uncategorized"

var supportedEngines = map[string]struct{}{
	"pdflatex": {},
	"xelatex":  {},
	"lualatex": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateArxiv(); err != nil {
		return err
	}
	if err := c.validateGroups(); err != nil {
		return err
	}
	if err := c.validateLatex(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateArxiv() error {
	if c.Arxiv.DaysBack < 1 {
		return errors.New("arxiv.days_back must be at least 1")
	}
	return nil
}

func (c *Config) validateGroups() error {
	seen := make(map[string]struct{}, len(c.Groups))
	for i, group := range c.Groups {
		if group.Name == "" {
			return fmt.Errorf("groups[%d].name must be set", i)
		}
		if strings.EqualFold(group.Name, UncategorizedGroup) {
			return fmt.Errorf("group name %q is reserved", UncategorizedGroup)
		}
		if _, ok := seen[group.Name]; ok {
			return fmt.Errorf("duplicate group name %q", group.Name)
		}
		seen[group.Name] = struct{}{}
		if len(group.Patterns) == 0 {
			return fmt.Errorf("group %q has no patterns", group.Name)
		}
	}
	return nil
}

func (c *Config) validateLatex() error {
	if _, ok := supportedEngines[c.Latex.Engine]; !ok {
		return fmt.Errorf("latex.engine %q is not supported (use pdflatex, xelatex, or lualatex)", c.Latex.Engine)
	}
	if c.Latex.CompileTimeout <= 0 {
		return errors.New("latex.compile_timeout must be positive (seconds)")
	}
	if c.Latex.Attempts < 1 {
		return errors.New("latex.attempts must be at least 1")
	}
	if c.Latex.MaxPapers < 1 {
		return errors.New("latex.max_papers must be at least 1")
	}
	if c.Latex.AbstractMaxLength < 1 {
		return errors.New("latex.abstract_max_length must be at least 1")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		return fmt.Errorf("schedule.hour must be between 0 and 23, got %d", c.Schedule.Hour)
	}
	if c.Schedule.Minute < 0 || c.Schedule.Minute > 59 {
		return fmt.Errorf("schedule.minute must be between 0 and 59, got %d", c.Schedule.Minute)
	}
	return nil
}
