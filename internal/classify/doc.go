// Package classify assigns fetched papers to keyword groups.
//
// Assignment is deterministic and total: duplicates are dropped first
// (first-seen wins), then every remaining paper lands in exactly one group —
// the earliest configured group that matches, or the reserved uncategorized
// sentinel.
package classify
