package render

import "strings"

// Escape makes free text safe for LaTeX. Every special character is
// replaced, including backslashes, so adversarial titles or abstracts can
// never break a downstream compile. Compile failures from unescaped input
// would silently drop the whole day's report, so this is load-bearing.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)
	for _, r := range text {
		switch r {
		case '\\':
			b.WriteString(`\textbackslash{}`)
		case '&':
			b.WriteString(`\&`)
		case '%':
			b.WriteString(`\%`)
		case '$':
			b.WriteString(`\$`)
		case '#':
			b.WriteString(`\#`)
		case '_':
			b.WriteString(`\_`)
		case '{':
			b.WriteString(`\{`)
		case '}':
			b.WriteString(`\}`)
		case '~':
			b.WriteString(`\textasciitilde{}`)
		case '^':
			b.WriteString(`\textasciicircum{}`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeURL escapes only the characters hyperref cannot take verbatim inside
// \href, leaving URL syntax intact.
func escapeURL(url string) string {
	replacer := strings.NewReplacer("%", `\%`, "#", `\#`)
	return replacer.Replace(url)
}

const truncationMarker = "..."

// Truncate cuts text to max runes and appends a truncation marker. Text at
// or under the cap passes through untouched. The cut happens on a rune
// boundary so multi-byte characters are never split.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + truncationMarker
}
