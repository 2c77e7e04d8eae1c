package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gazette/internal/config"
	"gazette/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCapturingServer(t *testing.T, out *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*out = append(*out, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func serviceFor(topic string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.RequestTimeout = 5
	return notifications.NewService(&cfg)
}

func TestNoopWhenTopicEmpty(t *testing.T) {
	svc := serviceFor("")
	if err := svc.NotifyRunFailed(context.Background(), errors.New("boom"), "fetch"); err != nil {
		t.Fatalf("noop service returned error: %v", err)
	}
}

func TestNotifyRunCompletedSendsArtifact(t *testing.T) {
	var got []captured
	server := newCapturingServer(t, &got)
	defer server.Close()

	svc := serviceFor(server.URL)
	err := svc.NotifyRunCompleted(context.Background(), 12, "/data/report.pdf", 90*time.Second)
	if err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if got[0].title != "Gazette - Run Complete" {
		t.Fatalf("unexpected title %q", got[0].title)
	}
	for _, want := range []string{"12 papers", "1m30s", "/data/report.pdf"} {
		if !contains(got[0].body, want) {
			t.Fatalf("body missing %q: %q", want, got[0].body)
		}
	}
}

func TestNotifyRunFailedIsHighPriority(t *testing.T) {
	var got []captured
	server := newCapturingServer(t, &got)
	defer server.Close()

	svc := serviceFor(server.URL)
	if err := svc.NotifyRunFailed(context.Background(), errors.New("connection refused"), "fetch"); err != nil {
		t.Fatalf("NotifyRunFailed: %v", err)
	}

	if got[0].priority != "high" {
		t.Fatalf("expected high priority, got %q", got[0].priority)
	}
	if !contains(got[0].body, "during fetch") || !contains(got[0].body, "connection refused") {
		t.Fatalf("unexpected body %q", got[0].body)
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := serviceFor(server.URL)
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error from non-2xx response")
	}
	if !contains(err.Error(), "429") {
		t.Fatalf("error should carry status code: %v", err)
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
