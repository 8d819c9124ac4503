// Package match finds search terms in linearized page text.
//
// Offsets are rune offsets. Lower-casing is applied rune by rune so offsets
// in the folded text line up with the unfolded text.
package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Span is an end-exclusive rune range of the page text.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// Hit is the first occurrence of a term on a page.
type Hit struct {
	// Offset is the rune offset of the hit. On the fallback path it is the
	// approximate offset recovered from the whitespace-stripped text.
	Offset int
	// Length is the rune length of the normalized term.
	Length int
	// Fallback is set when the hit came from the whitespace-insensitive pass.
	Fallback bool
}

// Options adjust matching. The zero value is case-insensitive substring
// matching with the whitespace-insensitive fallback enabled.
type Options struct {
	CaseSensitive bool
	// WholeWord rejects hits adjoining a letter or digit.
	WholeWord bool
	// NoFallback disables the whitespace-insensitive pass.
	NoFallback bool
}

// Lower folds s to lower case one rune at a time.
func Lower(s string) string { return strings.Map(unicode.ToLower, s) }

// Normalize composes a search term to NFC and trims surrounding
// whitespace. Page text is composed the same way by the linearizer.
func Normalize(term string) string {
	return strings.TrimSpace(norm.NFC.String(term))
}

// StripSpace removes every whitespace rune from s, the zero-width no-break
// space U+FEFF included.
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if isBlank(r) {
			return -1
		}
		return r
	}, s)
}

// First locates the first occurrence of term in text, trying an exact match
// before the whitespace-insensitive fallback.
func First(text, term string, opts Options) (Hit, bool) {
	needle := Normalize(term)
	if needle == "" || text == "" {
		return Hit{}, false
	}
	hay := text
	if !opts.CaseSensitive {
		needle = Lower(needle)
		hay = Lower(text)
	}
	length := utf8.RuneCountInString(needle)

	if pos, ok := firstIndex(hay, needle, opts.WholeWord); ok {
		return Hit{Offset: utf8.RuneCountInString(hay[:pos]), Length: length}, true
	}
	if opts.NoFallback {
		return Hit{}, false
	}

	strippedNeedle := StripSpace(needle)
	strippedHay := StripSpace(hay)
	if strippedNeedle == "" {
		return Hit{}, false
	}
	pos := strings.Index(strippedHay, strippedNeedle)
	if pos < 0 {
		return Hit{}, false
	}
	idx := utf8.RuneCountInString(strippedHay[:pos])
	return Hit{Offset: unstrippedOffset(text, idx), Length: length, Fallback: true}, true
}

// unstrippedOffset walks text counting non-whitespace runes until count
// reaches idx and returns the last position visited. The result may sit one
// rune before the true match start.
func unstrippedOffset(text string, idx int) int {
	count, offset := 0, 0
	i := 0
	for _, r := range text {
		if count >= idx {
			break
		}
		if !isBlank(r) {
			count++
		}
		offset = i
		i++
	}
	return offset
}

// All returns every occurrence of term in text, overlapping ones included,
// in ascending order. The term is composed to NFC and case folded but not
// trimmed.
func All(text, term string, opts Options) []Span {
	if term == "" || text == "" {
		return nil
	}
	hay, needle := text, norm.NFC.String(term)
	if !opts.CaseSensitive {
		hay, needle = Lower(text), Lower(term)
	}
	length := utf8.RuneCountInString(needle)

	var spans []Span
	runeAt, counted := 0, 0
	for from := 0; from < len(hay); {
		i := strings.Index(hay[from:], needle)
		if i < 0 {
			break
		}
		pos := from + i
		runeAt += utf8.RuneCountInString(hay[counted:pos])
		counted = pos
		if !opts.WholeWord || bounded(hay, pos, len(needle)) {
			spans = append(spans, Span{Start: runeAt, End: runeAt + length})
		}
		_, w := utf8.DecodeRuneInString(hay[pos:])
		from = pos + w
	}
	return spans
}

func firstIndex(hay, needle string, whole bool) (int, bool) {
	for from := 0; from < len(hay); {
		i := strings.Index(hay[from:], needle)
		if i < 0 {
			return 0, false
		}
		pos := from + i
		if !whole || bounded(hay, pos, len(needle)) {
			return pos, true
		}
		_, w := utf8.DecodeRuneInString(hay[pos:])
		from = pos + w
	}
	return 0, false
}

func bounded(s string, pos, n int) bool {
	if pos > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:pos]); isWordRune(r) {
			return false
		}
	}
	if end := pos + n; end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isBlank(r rune) bool { return unicode.IsSpace(r) || r == '\uFEFF' }

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// Snippet cuts up to radius runes of context on each side of the rune range
// [offset, offset+length) and marks each truncated side with ellipsis.
func Snippet(text string, offset, length, radius int, ellipsis string) string {
	runes := []rune(text)
	n := len(runes)
	if radius < 0 {
		radius = 0
	}
	start := clamp(offset-radius, 0, n)
	end := clamp(offset+length+radius, start, n)

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(runes[start:end]))
	if end < n {
		b.WriteString(ellipsis)
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
