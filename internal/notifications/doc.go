// Package notifications delivers run lifecycle events through ntfy.
// Notification delivery is best effort; failures are logged by callers and
// never change a run's outcome.
package notifications
