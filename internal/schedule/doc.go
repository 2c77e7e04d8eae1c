// Package schedule computes daily trigger times and drives the daemon's
// run loop without accumulating clock drift.
package schedule
