package classify

import (
	"regexp"
	"strings"
	"time"

	"gazette/internal/config"
	"gazette/internal/paper"
)

// Uncategorized is the reserved sentinel group for papers that match no
// configured keyword group.
const Uncategorized = config.UncategorizedGroup

// Group is one keyword category: a name plus its ordered match patterns.
type Group struct {
	Name     string
	Patterns []string
}

// Options control matching behaviour.
type Options struct {
	// WholeWord matches patterns on word boundaries instead of substrings.
	WholeWord bool
}

// GroupPapers is the papers assigned to a single group, in fetch order.
type GroupPapers struct {
	Name   string
	Papers []paper.Paper
}

// Digest is the transient aggregate of one collection run: the lookback
// window, the categorized papers in configured group order (with the
// uncategorized sentinel last), and the generation timestamp. It is built
// once per run and discarded after the artifacts are written.
type Digest struct {
	RunID       string
	WindowStart time.Time
	WindowEnd   time.Time
	GeneratedAt time.Time
	Groups      []GroupPapers
}

// TotalPapers returns the deduplicated paper count across all groups.
func (d Digest) TotalPapers() int {
	total := 0
	for _, g := range d.Groups {
		total += len(g.Papers)
	}
	return total
}

// GroupsFromConfig converts configured keyword groups, preserving order.
func GroupsFromConfig(groups []config.Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, Group{Name: g.Name, Patterns: g.Patterns})
	}
	return out
}

// Assign deduplicates papers by ID and assigns each to exactly one group:
// the first configured group (in order) with any pattern occurring in the
// title or abstract, case-insensitively; papers matching nothing land in the
// uncategorized sentinel. First-match-wins keeps per-group totals disjoint,
// so they always sum to the deduplicated grand total. An empty group list
// degrades to everything uncategorized.
func Assign(papers []paper.Paper, groups []Group, opts Options) []GroupPapers {
	papers = paper.Dedupe(papers)

	matchers := make([]groupMatcher, 0, len(groups))
	for _, g := range groups {
		matchers = append(matchers, newGroupMatcher(g, opts))
	}

	buckets := make([][]paper.Paper, len(groups)+1)
	for _, p := range papers {
		idx := len(groups) // uncategorized
		text := strings.ToLower(p.Title + " " + p.Abstract)
		for i, m := range matchers {
			if m.matches(text) {
				idx = i
				break
			}
		}
		buckets[idx] = append(buckets[idx], p)
	}

	out := make([]GroupPapers, 0, len(groups)+1)
	for i, g := range groups {
		out = append(out, GroupPapers{Name: g.Name, Papers: buckets[i]})
	}
	out = append(out, GroupPapers{Name: Uncategorized, Papers: buckets[len(groups)]})
	return out
}

type groupMatcher struct {
	substrings []string
	patterns   []*regexp.Regexp
}

func newGroupMatcher(g Group, opts Options) groupMatcher {
	m := groupMatcher{}
	for _, pattern := range g.Patterns {
		lowered := strings.ToLower(strings.TrimSpace(pattern))
		if lowered == "" {
			continue
		}
		if opts.WholeWord {
			m.patterns = append(m.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(lowered)+`\b`))
		} else {
			m.substrings = append(m.substrings, lowered)
		}
	}
	return m
}

func (m groupMatcher) matches(loweredText string) bool {
	for _, s := range m.substrings {
		if strings.Contains(loweredText, s) {
			return true
		}
	}
	for _, re := range m.patterns {
		if re.MatchString(loweredText) {
			return true
		}
	}
	return false
}
