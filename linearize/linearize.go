// Package linearize flattens a page's positioned text runs into one
// searchable string while keeping a per-rune map back to the runs.
package linearize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/norm"

	"github.com/wudi/pdfsearch/document"
)

// Separator is inserted between runs that are not joined directly.
const Separator = ' '

// CharRef locates one rune of the linearized text inside the run list.
type CharRef struct {
	Run    int
	Offset int
}

// Page is the linearized text of a single page. Index holds one entry per
// rune of Text and its Run values never decrease.
type Page struct {
	PageNumber int
	Text       string
	Index      []CharRef

	runLen []int
}

// Len returns the length of Text in runes.
func (p *Page) Len() int { return len(p.Index) }

// IsSeparator reports whether rune i was inserted between runs rather than
// taken from a run.
func (p *Page) IsSeparator(i int) bool {
	if i < 0 || i >= len(p.Index) {
		return false
	}
	ref := p.Index[i]
	return ref.Run < len(p.runLen) && ref.Offset >= p.runLen[ref.Run]
}

// Options tune the joining rules. The zero value applies the CJK rule only.
type Options struct {
	// JoinScripts lists extra scripts written without inter-word spaces;
	// boundaries touching them get no separator.
	JoinScripts []language.Script
	// NoCJK drops the CJK joining rule.
	NoCJK bool
	// NoSeparators concatenates runs without ever inserting a separator.
	NoSeparators bool
}

var cjkRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3000, Hi: 0x303F, Stride: 1},
		{Lo: 0x3040, Hi: 0x30FF, Stride: 1},
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FAF, Stride: 1},
	},
}

// IsCJK reports whether r falls in the CJK punctuation, kana or ideograph
// blocks that are joined without spaces.
func IsCJK(r rune) bool { return unicode.Is(cjkRanges, r) }

// Linearize concatenates runs in extraction order. Run content is composed
// to NFC first; Index and run lengths count runes of the composed content.
func Linearize(pageNumber int, runs []document.TextRun, opts Options) *Page {
	contents := make([]string, len(runs))
	for i, run := range runs {
		contents[i] = norm.NFC.String(run.Content)
	}

	p := &Page{PageNumber: pageNumber, runLen: make([]int, len(runs))}
	var b strings.Builder
	for i, content := range contents {
		offset := 0
		for _, r := range content {
			b.WriteRune(r)
			p.Index = append(p.Index, CharRef{Run: i, Offset: offset})
			offset++
		}
		p.runLen[i] = offset
		if i+1 < len(runs) && opts.separate(content, contents[i+1], runs[i].HasEOL) {
			b.WriteRune(Separator)
			p.Index = append(p.Index, CharRef{Run: i, Offset: offset})
		}
	}
	p.Text = b.String()
	return p
}

// Text is Linearize without the index map.
func Text(runs []document.TextRun, opts Options) string {
	return Linearize(0, runs, opts).Text
}

func (o Options) separate(cur, next string, eol bool) bool {
	if o.NoSeparators || eol {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(cur)
	first, _ := utf8.DecodeRuneInString(next)
	if cur != "" && o.joins(last) {
		return false
	}
	if next != "" && o.joins(first) {
		return false
	}
	return true
}

func (o Options) joins(r rune) bool {
	if !o.NoCJK && IsCJK(r) {
		return true
	}
	if len(o.JoinScripts) == 0 {
		return false
	}
	script := scriptOf(r)
	for _, s := range o.JoinScripts {
		if s == script {
			return true
		}
	}
	return false
}

func scriptOf(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Lao, r):
		return language.Lao
	case unicode.Is(unicode.Khmer, r):
		return language.Khmer
	case unicode.Is(unicode.Myanmar, r):
		return language.Myanmar
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	default:
		return language.Unknown
	}
}
