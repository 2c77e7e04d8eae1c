package render

import (
	_ "embed"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gazette/internal/classify"
	"gazette/internal/services"
)

//go:embed report.tex.tmpl
var reportTemplate string

// LaTeX braces collide with the default template delimiters.
const (
	delimLeft  = "<<"
	delimRight = ">>"
)

// Options caps the rendered report size.
type Options struct {
	// MaxPapers bounds the papers listed per group.
	MaxPapers int
	// AbstractMaxLength bounds abstract length before truncation.
	AbstractMaxLength int
}

type documentContext struct {
	Title       string
	Date        string
	WindowStart string
	WindowEnd   string
	TotalPapers int
	Groups      []groupContext
}

type groupContext struct {
	DisplayName string
	Count       int
	Papers      []paperContext
}

type paperContext struct {
	ID         string
	Title      string
	Authors    string
	Published  string
	Categories string
	Link       string
	Abstract   string
}

var titleCaser = cases.Title(language.English)

// Document renders a digest into a complete LaTeX source document. Every
// free-text field is escaped before template binding. Truncation is
// deterministic: the earliest MaxPapers entries per group in fetch order,
// abstracts cut on a rune boundary with an ellipsis marker.
func Document(digest classify.Digest, opts Options) (string, error) {
	tmpl, err := template.New("report").Delims(delimLeft, delimRight).Parse(reportTemplate)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "parse template", "", err)
	}

	date := digest.GeneratedAt.Format("2006-01-02")
	ctx := documentContext{
		Title:       "arXiv Papers Report -- " + date,
		Date:        date,
		WindowStart: digest.WindowStart.Format("2006-01-02"),
		WindowEnd:   digest.WindowEnd.Format("2006-01-02"),
		TotalPapers: digest.TotalPapers(),
	}

	for _, group := range digest.Groups {
		gc := groupContext{
			DisplayName: displayName(group.Name),
			Count:       len(group.Papers),
		}
		papers := group.Papers
		if opts.MaxPapers > 0 && len(papers) > opts.MaxPapers {
			papers = papers[:opts.MaxPapers]
		}
		for _, p := range papers {
			gc.Papers = append(gc.Papers, paperContext{
				ID:         Escape(p.ID),
				Title:      Escape(p.Title),
				Authors:    Escape(p.AuthorList()),
				Published:  formatDate(p.Published),
				Categories: Escape(strings.Join(p.Categories, ", ")),
				Link:       escapeURL(p.Link),
				Abstract:   Escape(Truncate(p.Abstract, opts.AbstractMaxLength)),
			})
		}
		ctx.Groups = append(ctx.Groups, gc)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, ctx); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "execute template", "", err)
	}
	return out.String(), nil
}

// displayName turns a configured group key like "electronic_structure" into
// a section heading.
func displayName(name string) string {
	return Escape(titleCaser.String(strings.ReplaceAll(name, "_", " ")))
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}
	return ts.Format("2006-01-02")
}
