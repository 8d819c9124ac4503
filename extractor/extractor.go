// Package extractor serves PDF files as documents for the search engine.
// Parsing and content-stream interpretation are delegated to
// github.com/ledongthuc/pdf; this package groups the glyphs it reports into
// positioned text runs.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"golang.org/x/image/draw"

	"github.com/wudi/pdfsearch/document"
	"github.com/wudi/pdfsearch/render"
)

const maxInherit = 32

// Document is a PDF opened for text search.
type Document struct {
	r *pdf.Reader
}

// Open is a document.Opener for PDF content.
func Open(ctx context.Context, r io.ReaderAt, size int64) (document.Document, error) {
	doc, err := open(ctx, r, size)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func open(ctx context.Context, r io.ReaderAt, size int64) (doc *Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasHeader(r, size) {
		return nil, fmt.Errorf("%w: missing %%PDF header", document.ErrLoad)
	}
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("%w: %v", document.ErrLoad, rec)
		}
	}()
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrLoad, err)
	}
	return &Document{r: reader}, nil
}

// hasHeader looks for the %PDF- marker in the first kilobyte, where readers
// tolerate leading junk.
func hasHeader(r io.ReaderAt, size int64) bool {
	n := int64(1024)
	if size < n {
		n = size
	}
	if n <= 0 {
		return false
	}
	buf := make([]byte, n)
	read, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return false
	}
	return bytes.Contains(buf[:read], []byte("%PDF-"))
}

func (d *Document) PageCount() int { return d.r.NumPage() }

func (d *Document) Page(ctx context.Context, n int) (document.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > d.r.NumPage() {
		return nil, fmt.Errorf("page %d of %d: %w", n, d.r.NumPage(), document.ErrPageRange)
	}
	p := d.r.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: %w: page object missing", n, document.ErrExtraction)
	}
	return &Page{p: p, number: n}, nil
}

// Close is a no-op; the caller owns the reader passed to Open.
func (d *Document) Close() error { return nil }

// Page is one PDF page.
type Page struct {
	p      pdf.Page
	number int
}

// TextRuns reports the page glyphs grouped into runs. A malformed content
// stream yields an error wrapping document.ErrExtraction.
func (p *Page) TextRuns(ctx context.Context) (runs []document.TextRun, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			runs, err = nil, fmt.Errorf("page %d: %w: %v", p.number, document.ErrExtraction, rec)
		}
	}()
	return groupRuns(p.p.Content().Text), nil
}

func (p *Page) Viewport(scale float64) document.Viewport {
	return document.NewViewport(p.box(), scale, p.rotation())
}

// Render draws a wireframe preview of the page runs.
func (p *Page) Render(ctx context.Context, surface draw.Image, vp document.Viewport) error {
	runs, err := p.TextRuns(ctx)
	if err != nil {
		return err
	}
	return render.Runs(ctx, surface, runs, vp)
}

func (p *Page) box() [4]float64 {
	mb := p.inherited("MediaBox")
	if mb.Len() < 4 {
		return document.LetterBox
	}
	var box [4]float64
	for i := range box {
		box[i] = mb.Index(i).Float64()
	}
	if box[0] == box[2] || box[1] == box[3] {
		return document.LetterBox
	}
	return box
}

func (p *Page) rotation() int {
	rot := p.inherited("Rotate")
	if rot.IsNull() {
		return 0
	}
	return int(rot.Int64())
}

func (p *Page) inherited(key string) pdf.Value {
	v := p.p.V
	for i := 0; i < maxInherit && !v.IsNull(); i++ {
		if val := v.Key(key); !val.IsNull() {
			return val
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}
