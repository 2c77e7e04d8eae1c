package arxiv

import (
	"encoding/xml"
	"strings"
	"time"

	"gazette/internal/paper"
)

// Atom feed structures for the arXiv API.

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Authors    []atomAuthor   `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// parseEntry converts an atom entry to a paper record.
func parseEntry(entry atomEntry) paper.Paper {
	// Extract the ID from the URL (e.g., http://arxiv.org/abs/2301.00001v1 -> 2301.00001)
	id := ""
	if idx := strings.LastIndex(entry.ID, "/abs/"); idx >= 0 {
		id = entry.ID[idx+5:]
		if vIdx := versionStart(id); vIdx > 0 {
			id = id[:vIdx]
		}
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	categories := make([]string, 0, len(entry.Categories))
	for _, c := range entry.Categories {
		if term := strings.TrimSpace(c.Term); term != "" {
			categories = append(categories, term)
		}
	}

	p := paper.Paper{
		ID:         id,
		Title:      collapseWhitespace(entry.Title),
		Abstract:   collapseWhitespace(entry.Summary),
		Authors:    authors,
		Categories: categories,
		Link:       strings.TrimSpace(entry.ID),
	}

	p.Published, _ = time.Parse(time.RFC3339, entry.Published)
	p.Updated, _ = time.Parse(time.RFC3339, entry.Updated)

	return p
}

// versionStart locates a trailing vN revision suffix in an identifier.
// Old-style archive names can themselves contain "v" (solv-int/9701001),
// so only an all-digit tail after the last "v" counts. Returns -1 when the
// identifier carries no revision.
func versionStart(id string) int {
	vIdx := strings.LastIndex(id, "v")
	if vIdx <= 0 || vIdx == len(id)-1 {
		return -1
	}
	for _, r := range id[vIdx+1:] {
		if r < '0' || r > '9' {
			return -1
		}
	}
	return vIdx
}

// collapseWhitespace flattens the newline-wrapped text the arXiv API returns.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
