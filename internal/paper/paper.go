package paper

import (
	"strings"
	"time"
)

// Paper holds the metadata for a single arXiv submission. Values are
// populated once by the fetcher and never mutated afterwards.
type Paper struct {
	// ID is the arXiv identifier without version suffix
	// (e.g., "2301.00001" or "hep-th/9901001").
	ID string

	// Title of the paper, whitespace-normalized.
	Title string

	// Authors in submission order.
	Authors []string

	// Abstract text with newlines collapsed to spaces.
	Abstract string

	// Published is the first submission time.
	Published time.Time

	// Updated is the latest revision time.
	Updated time.Time

	// Categories lists the arXiv categories the paper was filed under.
	Categories []string

	// Link is the canonical abstract page URL.
	Link string
}

// AuthorList renders the author names as a single comma-separated string.
func (p Paper) AuthorList() string {
	return strings.Join(p.Authors, ", ")
}

// Dedupe removes papers with duplicate IDs, keeping the first occurrence.
// Order is otherwise preserved, so merging per-category result sets stays
// deterministic regardless of how many categories a paper was filed under.
func Dedupe(papers []Paper) []Paper {
	seen := make(map[string]struct{}, len(papers))
	out := make([]Paper, 0, len(papers))
	for _, p := range papers {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
