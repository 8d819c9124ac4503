// Package document declares the collaborator surface the search engine
// consumes: a loaded document, its pages, their positioned text runs and the
// page-to-canvas viewport.
package document

import (
	"context"
	"errors"
	"io"

	"golang.org/x/image/draw"
)

var (
	// ErrLoad marks content that could not be opened as a document.
	ErrLoad = errors.New("document load failed")
	// ErrExtraction marks a page whose text runs could not be retrieved.
	ErrExtraction = errors.New("page text extraction failed")
	// ErrPageRange is returned for page numbers outside 1..PageCount.
	ErrPageRange = errors.New("page number out of range")
)

// TextRun is one positioned span of text as emitted by a page's content stream.
type TextRun struct {
	Content string
	// Transform is the run's placement matrix [a b c d e f] in page space.
	Transform []float64
	// Width is the advance width along the baseline in page units.
	Width float64
	// HasEOL is set when the run ends a line.
	HasEOL bool
}

// Document is a loaded, paged document. Page numbers are 1-based.
type Document interface {
	PageCount() int
	Page(ctx context.Context, n int) (Page, error)
	Close() error
}

// Page exposes the text and geometry of a single page.
type Page interface {
	TextRuns(ctx context.Context) ([]TextRun, error)
	Viewport(scale float64) Viewport
	// Render draws the page onto surface. Cancelling ctx aborts the render
	// and returns ctx.Err().
	Render(ctx context.Context, surface draw.Image, vp Viewport) error
}

// Opener loads a document from binary content. Invalid content yields an
// error wrapping ErrLoad.
type Opener func(ctx context.Context, r io.ReaderAt, size int64) (Document, error)
