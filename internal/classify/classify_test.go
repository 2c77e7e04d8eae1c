package classify_test

import (
	"testing"

	"gazette/internal/classify"
	"gazette/internal/paper"
)

func testGroups() []classify.Group {
	return []classify.Group{
		{Name: "ai", Patterns: []string{"machine learning", "neural network"}},
		{Name: "physics", Patterns: []string{"DFT"}},
	}
}

func countsByName(groups []classify.GroupPapers) map[string]int {
	out := make(map[string]int, len(groups))
	for _, g := range groups {
		out[g.Name] = len(g.Papers)
	}
	return out
}

func TestAssignFirstMatchWins(t *testing.T) {
	papers := []paper.Paper{
		{ID: "1", Title: "A DFT study"},
		{ID: "2", Title: "Neural network survey"},
		{ID: "3", Title: "Unrelated topic"},
	}

	groups := classify.Assign(papers, testGroups(), classify.Options{})
	counts := countsByName(groups)
	if counts["ai"] != 1 || counts["physics"] != 1 || counts[classify.Uncategorized] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestAssignPrefersEarlierGroupOnMultiMatch(t *testing.T) {
	papers := []paper.Paper{
		{ID: "1", Title: "Machine learning for DFT calculations"},
	}

	groups := classify.Assign(papers, testGroups(), classify.Options{})
	if len(groups[0].Papers) != 1 {
		t.Fatalf("expected paper in first configured group, got %v", countsByName(groups))
	}
	if len(groups[1].Papers) != 0 {
		t.Fatal("paper counted twice across groups")
	}
}

func TestAssignMatchesAbstractCaseInsensitively(t *testing.T) {
	papers := []paper.Paper{
		{ID: "1", Title: "Opaque title", Abstract: "We apply NEURAL NETWORK models."},
	}

	groups := classify.Assign(papers, testGroups(), classify.Options{})
	if len(groups[0].Papers) != 1 {
		t.Fatalf("expected abstract match, got %v", countsByName(groups))
	}
}

func TestAssignIsTotalAndSummable(t *testing.T) {
	papers := []paper.Paper{
		{ID: "1", Title: "A DFT study"},
		{ID: "2", Title: "Neural network survey"},
		{ID: "3", Title: "Unrelated"},
		{ID: "4", Title: "machine learning again"},
	}

	groups := classify.Assign(papers, testGroups(), classify.Options{})
	total := 0
	for _, g := range groups {
		total += len(g.Papers)
	}
	if total != len(papers) {
		t.Fatalf("per-group counts sum to %d, want %d", total, len(papers))
	}
}

func TestAssignDedupesBeforeCategorizing(t *testing.T) {
	papers := []paper.Paper{
		{ID: "1", Title: "A DFT study"},
		{ID: "1", Title: "A DFT study"},
	}

	groups := classify.Assign(papers, testGroups(), classify.Options{})
	counts := countsByName(groups)
	if counts["physics"] != 1 {
		t.Fatalf("duplicate not collapsed: %v", counts)
	}
}

func TestAssignDeterministic(t *testing.T) {
	papers := []paper.Paper{
		{ID: "1", Title: "A DFT study"},
		{ID: "2", Title: "Neural network survey"},
		{ID: "3", Title: "Unrelated"},
	}

	first := classify.Assign(papers, testGroups(), classify.Options{})
	for i := 0; i < 10; i++ {
		again := classify.Assign(papers, testGroups(), classify.Options{})
		for j := range first {
			if first[j].Name != again[j].Name || len(first[j].Papers) != len(again[j].Papers) {
				t.Fatalf("assignment not stable on iteration %d", i)
			}
		}
	}
}

func TestAssignEmptyGroupListDegradesToUncategorized(t *testing.T) {
	papers := []paper.Paper{{ID: "1", Title: "anything"}}
	groups := classify.Assign(papers, nil, classify.Options{})
	if len(groups) != 1 || groups[0].Name != classify.Uncategorized || len(groups[0].Papers) != 1 {
		t.Fatalf("unexpected degradation: %+v", groups)
	}
}

func TestAssignWholeWordOption(t *testing.T) {
	groups := []classify.Group{{Name: "ai", Patterns: []string{"AI"}}}
	papers := []paper.Paper{
		{ID: "1", Title: "AI planning systems"},
		{ID: "2", Title: "Maintaining air quality"},
	}

	substr := classify.Assign(papers, groups, classify.Options{})
	if len(substr[0].Papers) != 2 {
		t.Fatalf("substring mode should over-match: %v", countsByName(substr))
	}

	whole := classify.Assign(papers, groups, classify.Options{WholeWord: true})
	if len(whole[0].Papers) != 1 || whole[0].Papers[0].ID != "1" {
		t.Fatalf("whole-word mode should only match the acronym: %v", countsByName(whole))
	}
}
