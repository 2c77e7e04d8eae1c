// Package daemon couples the collection pipeline to the daily scheduler
// with flock-based locking to prevent multiple concurrent instances.
package daemon
