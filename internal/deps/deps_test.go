package deps

import "testing"

func TestCheckBinariesFindsShell(t *testing.T) {
	results := CheckBinaries([]Requirement{
		{Name: "Shell", Command: "sh", Description: "present on any POSIX system"},
	})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("sh should be available: %+v", results[0])
	}
}

func TestCheckBinariesMissingBinary(t *testing.T) {
	results := CheckBinaries([]Requirement{
		{Name: "Ghost", Command: "definitely-not-a-real-binary-name"},
	})
	if results[0].Available {
		t.Fatal("nonexistent binary reported available")
	}
	if results[0].Detail == "" {
		t.Fatal("missing binary should carry a detail message")
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{{Name: "Unset"}})
	if results[0].Available {
		t.Fatal("empty command reported available")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail %q", results[0].Detail)
	}
}
