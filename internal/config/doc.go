// Package config loads, normalizes, and validates Gazette configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GAZETTE_NTFY_TOPIC. The Config type centralizes every knob the daemon and
// CLI need: arXiv categories, keyword groups, LaTeX compile limits, and the
// daily schedule.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, trimmed keyword patterns, and clear validation errors.
package config
