package render_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gazette/internal/classify"
	"gazette/internal/paper"
	"gazette/internal/render"
)

func testDigest(groups ...classify.GroupPapers) classify.Digest {
	return classify.Digest{
		RunID:       "test-run",
		WindowStart: time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Groups:      groups,
	}
}

func TestEscapeCoversSpecialCharacters(t *testing.T) {
	in := `50% of $x_i & {sets} #1 ~a ^b \cmd`
	out := render.Escape(in)

	for _, want := range []string{`\%`, `\$`, `\_`, `\&`, `\{`, `\}`, `\#`, `\textasciitilde{}`, `\textasciicircum{}`, `\textbackslash{}`} {
		if !strings.Contains(out, want) {
			t.Fatalf("escaped output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, `\cmd`) {
		t.Fatalf("backslash command survived escaping: %q", out)
	}
}

func TestTruncateBoundary(t *testing.T) {
	if got := render.Truncate("short", 10); got != "short" {
		t.Fatalf("under-cap text modified: %q", got)
	}
	long := strings.Repeat("a", 20)
	got := render.Truncate(long, 10)
	if got != strings.Repeat("a", 10)+"..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	// Rune boundary, not byte boundary.
	got = render.Truncate("ααααα", 3)
	if got != "ααα..." {
		t.Fatalf("multi-byte truncation wrong: %q", got)
	}
}

func TestDocumentContainsGroupsAndPapers(t *testing.T) {
	digest := testDigest(
		classify.GroupPapers{Name: "electronic_structure", Papers: []paper.Paper{
			{
				ID:         "2401.00001",
				Title:      "A DFT study",
				Authors:    []string{"A. Ada"},
				Abstract:   "We study things.",
				Published:  time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC),
				Categories: []string{"physics.comp-ph"},
				Link:       "http://arxiv.org/abs/2401.00001v1",
			},
		}},
		classify.GroupPapers{Name: classify.Uncategorized},
	)

	doc, err := render.Document(digest, render.Options{MaxPapers: 50, AbstractMaxLength: 1000})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}

	for _, want := range []string{
		`\documentclass`,
		`\begin{document}`,
		`\end{document}`,
		"Electronic Structure (1)",
		"A DFT study",
		"A. Ada",
		`\href{http://arxiv.org/abs/2401.00001v1}{2401.00001}`,
		"Total papers: 1",
		"2026-08-22 -- 2026-08-23",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q", want)
		}
	}
}

func TestDocumentSkipsEmptyGroupSectionsButCountsThem(t *testing.T) {
	digest := testDigest(
		classify.GroupPapers{Name: "ai"},
		classify.GroupPapers{Name: classify.Uncategorized},
	)

	doc, err := render.Document(digest, render.Options{MaxPapers: 10, AbstractMaxLength: 100})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if strings.Contains(doc, `\section*{Ai (0)}`) {
		t.Fatal("empty group should not produce a body section")
	}
	if !strings.Contains(doc, "Ai: 0") {
		t.Fatal("summary should list empty groups with zero counts")
	}
}

func TestDocumentCapsPapersPerGroup(t *testing.T) {
	var papers []paper.Paper
	for i := 0; i < 5; i++ {
		papers = append(papers, paper.Paper{
			ID:    fmt.Sprintf("2401.0000%d", i),
			Title: fmt.Sprintf("Paper %d", i),
		})
	}
	digest := testDigest(classify.GroupPapers{Name: "ai", Papers: papers})

	doc, err := render.Document(digest, render.Options{MaxPapers: 3, AbstractMaxLength: 100})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if got := strings.Count(doc, `\subsection*{Paper`); got != 3 {
		t.Fatalf("expected exactly 3 rendered papers, got %d", got)
	}
	for _, want := range []string{"Paper 0", "Paper 1", "Paper 2"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("cap did not keep earliest entries, missing %q", want)
		}
	}
	// Header still reports the full group size.
	if !strings.Contains(doc, "Ai: 5") {
		t.Fatal("summary count should reflect the uncapped group size")
	}
}

func TestDocumentEscapesAdversarialTitle(t *testing.T) {
	digest := testDigest(classify.GroupPapers{Name: "ai", Papers: []paper.Paper{
		{ID: "1", Title: `100% bad $title_{here} \end{document}`},
	}})

	doc, err := render.Document(digest, render.Options{MaxPapers: 10, AbstractMaxLength: 100})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if strings.Count(doc, `\end{document}`) != 1 {
		t.Fatal("unescaped title injected LaTeX structure")
	}
	if !strings.Contains(doc, `100\% bad \$title\_\{here\}`) {
		t.Fatalf("title not escaped: %q", doc)
	}
}

func TestDocumentTruncatesAbstract(t *testing.T) {
	digest := testDigest(classify.GroupPapers{Name: "ai", Papers: []paper.Paper{
		{ID: "1", Title: "t", Abstract: strings.Repeat("x", 500)},
	}})

	doc, err := render.Document(digest, render.Options{MaxPapers: 10, AbstractMaxLength: 100})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if !strings.Contains(doc, strings.Repeat("x", 100)+"...") {
		t.Fatal("abstract not truncated with marker")
	}
	if strings.Contains(doc, strings.Repeat("x", 101)) {
		t.Fatal("abstract exceeds configured cap")
	}
}
