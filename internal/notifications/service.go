package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gazette/internal/config"
)

const userAgent = "Gazette-Go/0.1.0"

// Service defines the notification surface exposed to the collector and
// daemon.
type Service interface {
	NotifyRunCompleted(ctx context.Context, totalPapers int, artifactPath string, duration time.Duration) error
	NotifyRunPartial(ctx context.Context, totalPapers int, texPath, reason string) error
	NotifyRunFailed(ctx context.Context, err error, stage string) error
	NotifyEmptyWindow(ctx context.Context, windowStart, windowEnd time.Time) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, totalPapers int, artifactPath string, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("Report ready: %d papers in %s", totalPapers, duration)
	if artifactPath = strings.TrimSpace(artifactPath); artifactPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, artifactPath)
	}
	data := payload{
		title:   "Gazette - Run Complete",
		message: message,
		tags:    []string{"gazette", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunPartial(ctx context.Context, totalPapers int, texPath, reason string) error {
	message := fmt.Sprintf("PDF compilation failed; LaTeX source kept (%d papers)", totalPapers)
	if texPath = strings.TrimSpace(texPath); texPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, texPath)
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "Gazette - Run Partial",
		message:  message,
		tags:     []string{"gazette", "run", "partial"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, err error, stage string) error {
	var builder strings.Builder
	builder.WriteString("Run failed")
	if stage = strings.TrimSpace(stage); stage != "" {
		builder.WriteString(" during ")
		builder.WriteString(stage)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Gazette - Error",
		message:  builder.String(),
		tags:     []string{"gazette", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEmptyWindow(ctx context.Context, windowStart, windowEnd time.Time) error {
	data := payload{
		title: "Gazette - No Papers",
		message: fmt.Sprintf("No papers found between %s and %s; no report generated",
			windowStart.Format("2006-01-02"), windowEnd.Format("2006-01-02")),
		tags:     []string{"gazette", "run", "empty"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Gazette - Test",
		message:  "Notification system test",
		tags:     []string{"gazette", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, int, string, time.Duration) error { return nil }
func (noopService) NotifyRunPartial(context.Context, int, string, string) error          { return nil }
func (noopService) NotifyRunFailed(context.Context, error, string) error                 { return nil }
func (noopService) NotifyEmptyWindow(context.Context, time.Time, time.Time) error        { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
