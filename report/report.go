// Package report formats search results for people: plain text for
// terminals, Markdown, and HTML rendered from that Markdown.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"

	"github.com/wudi/pdfsearch/match"
	"github.com/wudi/pdfsearch/search"
)

// Text writes one line per result, "p.N  context", cut to width terminal
// columns. A width of zero or less disables truncation.
func Text(w io.Writer, results []search.Result, width int) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no matches")
		return err
	}
	for _, r := range results {
		line := fmt.Sprintf("p.%-4d %s", r.PageNumber, flatten(r.Context))
		if width > 0 && runewidth.StringWidth(line) > width {
			line = runewidth.Truncate(line, width, "...")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Markdown renders results as a Markdown document with every occurrence of
// term in each snippet set in bold.
func Markdown(results []search.Result, term string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Results for \"%s\"\n\n", escape(strings.TrimSpace(term)))
	switch len(results) {
	case 0:
		b.WriteString("No pages matched.\n")
		return b.String()
	case 1:
		b.WriteString("1 page matched.\n")
	default:
		fmt.Fprintf(&b, "%d pages matched.\n", len(results))
	}
	for _, r := range results {
		fmt.Fprintf(&b, "\n## Page %d\n\n> %s\n", r.PageNumber, emphasize(flatten(r.Context), term))
	}
	return b.String()
}

// HTML converts the Markdown report to HTML.
func HTML(results []search.Result, term string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(Markdown(results, term)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// emphasize escapes s for Markdown and wraps each hit of term in **.
// Overlapping hits are merged.
func emphasize(s, term string) string {
	spans := match.All(s, strings.TrimSpace(term), match.Options{})
	runes := []rune(s)
	var b strings.Builder
	pos := 0
	for i := 0; i < len(spans); i++ {
		start, end := spans[i].Start, spans[i].End
		for i+1 < len(spans) && spans[i+1].Start <= end {
			i++
			end = max(end, spans[i].End)
		}
		b.WriteString(escape(string(runes[pos:start])))
		b.WriteString("**")
		b.WriteString(escape(string(runes[start:end])))
		b.WriteString("**")
		pos = end
	}
	b.WriteString(escape(string(runes[pos:])))
	return b.String()
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
	"#", `\#`, "<", `\<`, ">", `\>`, "|", `\|`, "~", `\~`,
)

func escape(s string) string { return mdEscaper.Replace(s) }

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
