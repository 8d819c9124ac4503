package extractor

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/wudi/pdfsearch/document"
)

const (
	// baselineTolerance is the fraction of the font size two glyph
	// baselines may differ by and still share a line.
	baselineTolerance = 0.2
	// gapTolerance is the fraction of the font size of horizontal gap or
	// overlap allowed between adjacent glyphs of one run.
	gapTolerance = 0.3
)

type runBuilder struct {
	font     string
	size     float64
	x, y     float64
	right    float64
	content  strings.Builder
	hasGlyph bool
}

// groupRuns merges consecutive glyphs that share font, size and baseline and
// sit next to each other. A baseline change ends a line: the previous run is
// flagged with HasEOL.
func groupRuns(texts []pdf.Text) []document.TextRun {
	var runs []document.TextRun
	var cur runBuilder

	flush := func(eol bool) {
		if !cur.hasGlyph {
			return
		}
		runs = append(runs, document.TextRun{
			Content:   cur.content.String(),
			Transform: []float64{cur.size, 0, 0, cur.size, cur.x, cur.y},
			Width:     cur.right - cur.x,
			HasEOL:    eol,
		})
		cur = runBuilder{}
	}

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if cur.hasGlyph {
			sameLine := math.Abs(t.Y-cur.y) <= baselineTolerance*math.Max(cur.size, t.FontSize)
			switch {
			case !sameLine:
				flush(true)
			case t.Font != cur.font || t.FontSize != cur.size:
				flush(false)
			case math.Abs(t.X-cur.right) > gapTolerance*cur.size:
				flush(false)
			}
		}
		if !cur.hasGlyph {
			cur = runBuilder{font: t.Font, size: t.FontSize, x: t.X, y: t.Y, right: t.X, hasGlyph: true}
		}
		cur.content.WriteString(t.S)
		if r := t.X + t.W; r > cur.right {
			cur.right = r
		}
	}
	flush(false)
	return runs
}
