// Package history persists a record of every collection run in SQLite.
// It stores run metadata only (window, outcome, counts, artifact path);
// papers themselves are never persisted.
package history
