// Package memdoc provides an in-memory document built from text runs, and a
// loader for text-content dumps in the pdf.js getTextContent layout.
package memdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/image/draw"

	"github.com/wudi/pdfsearch/document"
	"github.com/wudi/pdfsearch/render"
)

// Page is one page of an in-memory document.
type Page struct {
	// Box is the page box [llx lly urx ury]; the zero value means US Letter.
	Box    [4]float64
	Rotate int
	Runs   []document.TextRun
	// Err, when set, is returned by TextRuns wrapped in document.ErrExtraction.
	Err error
}

// Document is a document.Document over a fixed page list.
type Document struct {
	pages []Page
}

// New returns a document over pages. The slice is copied.
func New(pages ...Page) *Document {
	return &Document{pages: append([]Page(nil), pages...)}
}

func (d *Document) PageCount() int { return len(d.pages) }

func (d *Document) Page(ctx context.Context, n int) (document.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("page %d of %d: %w", n, len(d.pages), document.ErrPageRange)
	}
	return &page{Page: d.pages[n-1], number: n}, nil
}

func (d *Document) Close() error { return nil }

type page struct {
	Page
	number int
}

func (p *page) TextRuns(ctx context.Context) ([]document.TextRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, fmt.Errorf("page %d: %w: %v", p.number, document.ErrExtraction, p.Err)
	}
	return append([]document.TextRun(nil), p.Runs...), nil
}

func (p *page) Viewport(scale float64) document.Viewport {
	box := p.Box
	if box == ([4]float64{}) {
		box = document.LetterBox
	}
	return document.NewViewport(box, scale, p.Rotate)
}

func (p *page) Render(ctx context.Context, surface draw.Image, vp document.Viewport) error {
	return render.Runs(ctx, surface, p.Runs, vp)
}

type textContent struct {
	Pages []struct {
		View   []float64 `json:"view"`
		Rotate int       `json:"rotate"`
		Items  []struct {
			Str       string    `json:"str"`
			Transform []float64 `json:"transform"`
			Width     float64   `json:"width"`
			HasEOL    bool      `json:"hasEOL"`
		} `json:"items"`
	} `json:"pages"`
}

// Decode reads a JSON dump of the form
//
//	{"pages":[{"view":[0,0,612,792],"rotate":0,
//	  "items":[{"str":"Hello","transform":[12,0,0,12,72,700],"width":27.3,"hasEOL":false}]}]}
func Decode(r io.Reader) (*Document, error) {
	var tc textContent
	if err := json.NewDecoder(r).Decode(&tc); err != nil {
		return nil, fmt.Errorf("%w: decode text content: %v", document.ErrLoad, err)
	}
	pages := make([]Page, 0, len(tc.Pages))
	for _, p := range tc.Pages {
		pg := Page{Rotate: p.Rotate}
		if len(p.View) >= 4 {
			copy(pg.Box[:], p.View[:4])
		}
		for _, item := range p.Items {
			pg.Runs = append(pg.Runs, document.TextRun{
				Content:   item.Str,
				Transform: item.Transform,
				Width:     item.Width,
				HasEOL:    item.HasEOL,
			})
		}
		pages = append(pages, pg)
	}
	return New(pages...), nil
}

// Open is a document.Opener for JSON text-content dumps.
func Open(ctx context.Context, r io.ReaderAt, size int64) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := Decode(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}
	return doc, nil
}
