package services_test

import (
	"errors"
	"strings"
	"testing"

	"gazette/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "compile", "pdflatex", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"compile", "pdflatex", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "fetch", "query", "category unavailable", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	fatal := services.Wrap(services.ErrConfiguration, "render", "template", "malformed", nil)
	if !services.IsFatal(fatal) {
		t.Fatal("configuration errors should be fatal")
	}
	transient := services.Wrap(services.ErrTransient, "fetch", "query", "", errors.New("io"))
	if services.IsFatal(transient) {
		t.Fatal("transient errors should not be fatal")
	}
}
