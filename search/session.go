package search

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/image/draw"

	"github.com/wudi/pdfsearch/document"
	"github.com/wudi/pdfsearch/observability"
)

// SetPage makes n the displayed page. Highlights belong to the page they
// were computed for and are cleared.
func (e *Engine) SetPage(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setPageLocked(n)
}

// NextPage advances one page.
func (e *Engine) NextPage() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setPageLocked(e.state.PageNum + 1)
}

// PrevPage goes back one page.
func (e *Engine) PrevPage() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setPageLocked(e.state.PageNum - 1)
}

func (e *Engine) setPageLocked(n int) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	if n < 1 || n > e.state.NumPages {
		return fmt.Errorf("%w: %d of %d", ErrInvalidPage, n, e.state.NumPages)
	}
	if n != e.state.PageNum {
		e.state.Highlights = nil
	}
	e.state.PageNum = n
	return nil
}

// RenderPage draws page n onto surface at scale, cancelling any render
// still in flight. It returns the viewport used. A render cancelled by a
// newer one returns context.Canceled and leaves the error message alone.
func (e *Engine) RenderPage(ctx context.Context, surface draw.Image, n int, scale float64) (document.Viewport, error) {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return document.Viewport{}, ErrNoDocument
	}
	if n < 1 || n > e.state.NumPages {
		e.mu.Unlock()
		return document.Viewport{}, fmt.Errorf("%w: %d of %d", ErrInvalidPage, n, e.state.NumPages)
	}
	if scale <= 0 {
		scale = e.cfg.Scale
	}
	if e.cancelRender != nil {
		e.cancelRender()
	}
	rctx, cancel := context.WithCancel(ctx)
	e.cancelRender = cancel
	e.renderSeq++
	seq := e.renderSeq
	doc := e.doc
	e.setLoadingLocked(true, fmt.Sprintf("Rendering page %d...", n))
	e.state.ErrorMessage = ""
	e.mu.Unlock()

	defer cancel()
	vp, err := e.render(rctx, doc, surface, n, scale)

	e.mu.Lock()
	defer e.mu.Unlock()
	current := seq == e.renderSeq
	if current {
		e.cancelRender = nil
		e.setLoadingLocked(false, "")
	}
	log := e.log.With(observability.Int("page", n))
	switch {
	case err == nil:
		return vp, nil
	case errors.Is(err, context.Canceled):
		log.Info("rendering was cancelled")
	default:
		log.Error("render failed", observability.Error("err", err))
		if current {
			e.state.ErrorMessage = fmt.Sprintf("Failed to render page %d", n)
		}
	}
	return vp, err
}

// PageViewport returns the viewport of page n at scale, for sizing a
// render surface.
func (e *Engine) PageViewport(ctx context.Context, n int, scale float64) (document.Viewport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return document.Viewport{}, ErrNoDocument
	}
	if n < 1 || n > e.state.NumPages {
		return document.Viewport{}, fmt.Errorf("%w: %d of %d", ErrInvalidPage, n, e.state.NumPages)
	}
	if scale <= 0 {
		scale = e.cfg.Scale
	}
	page, err := e.doc.Page(ctx, n)
	if err != nil {
		return document.Viewport{}, err
	}
	return page.Viewport(scale), nil
}

// CancelRender aborts the render in flight, if any.
func (e *Engine) CancelRender() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelRender != nil {
		e.cancelRender()
		e.cancelRender = nil
	}
}

func (e *Engine) render(ctx context.Context, doc document.Document, surface draw.Image, n int, scale float64) (document.Viewport, error) {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanRender)
	defer span.Finish()
	span.SetTag("page", n)

	page, err := doc.Page(ctx, n)
	if err != nil {
		span.SetError(err)
		return document.Viewport{}, err
	}
	vp := page.Viewport(scale)
	if err := page.Render(ctx, surface, vp); err != nil {
		span.SetError(err)
		return vp, err
	}
	return vp, nil
}
