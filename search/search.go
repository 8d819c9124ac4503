package search

import (
	"context"
	"strings"

	"github.com/wudi/pdfsearch/highlight"
	"github.com/wudi/pdfsearch/linearize"
	"github.com/wudi/pdfsearch/match"
	"github.com/wudi/pdfsearch/observability"
)

// PageText is the linearized text of one page.
type PageText struct {
	PageNumber int
	Text       string
}

// Aggregate reports, in ascending page order, every page whose text
// contains term, with a snippet around the first hit. Pages with empty text
// are skipped.
func Aggregate(pages []PageText, term string, opts match.Options, radius int, ellipsis string) []Result {
	if strings.TrimSpace(term) == "" {
		return nil
	}
	var results []Result
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		hit, ok := match.First(p.Text, term, opts)
		if !ok {
			continue
		}
		results = append(results, Result{
			PageNumber: p.PageNumber,
			Context:    match.Snippet(p.Text, hit.Offset, hit.Length, radius, ellipsis),
			Text:       p.Text,
		})
	}
	return results
}

// Search clears previous results and highlights, then matches term against
// every page. An empty term or a missing document yields no results.
func (e *Engine) Search(ctx context.Context, term string) []Result {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanSearch)
	defer span.Finish()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Results = nil
	e.state.Highlights = nil

	if strings.TrimSpace(term) == "" {
		return nil
	}
	if e.doc == nil {
		e.log.Debug("search without document", observability.String("term", term))
		return nil
	}

	e.extractAllLocked(ctx)
	pages := make([]PageText, 0, e.state.NumPages)
	for n := 1; n <= e.state.NumPages; n++ {
		text, _ := e.cache.Get(n)
		pages = append(pages, PageText{PageNumber: n, Text: text})
	}
	results := Aggregate(pages, term, e.mopts, e.cfg.ContextRadius, e.cfg.Ellipsis)

	e.state.Results = results
	e.state.SearchTerm = term
	span.SetTag("results", len(results))
	e.log.Debug("search finished",
		observability.String("term", term),
		observability.Int("results", len(results)),
		observability.Int("cached_pages", e.cache.Len()))
	return append([]Result(nil), results...)
}

// Highlight finds every occurrence of term on the current page and stores
// their rectangles for the given scale. A non-positive scale uses the
// configured default.
func (e *Engine) Highlight(ctx context.Context, term string, scale float64) []highlight.Rect {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanHighlight)
	defer span.Finish()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlightLocked(ctx, term, scale)
}

// Rehighlight repeats Highlight with the term of the last search.
func (e *Engine) Rehighlight(ctx context.Context, scale float64) []highlight.Rect {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanHighlight)
	defer span.Finish()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlightLocked(ctx, e.state.SearchTerm, scale)
}

func (e *Engine) highlightLocked(ctx context.Context, term string, scale float64) []highlight.Rect {
	if e.doc == nil || term == "" {
		return nil
	}
	if scale <= 0 {
		scale = e.cfg.Scale
	}
	n := e.state.PageNum
	log := e.log.With(observability.Int("page", n))

	page, err := e.doc.Page(ctx, n)
	if err != nil {
		log.Error("highlight failed", observability.Error("err", err))
		return nil
	}
	runs, err := page.TextRuns(ctx)
	if err != nil {
		log.Error("highlight failed", observability.Error("err", err))
		return nil
	}
	if bad := highlight.InvalidRuns(runs); len(bad) > 0 {
		log.Debug("runs without usable transform", observability.Int("count", len(bad)))
	}

	lp := linearize.Linearize(n, runs, e.lin)
	if _, ok := e.cache.Get(n); !ok {
		e.cache.Put(n, lp.Text)
	}
	vp := page.Viewport(scale)
	spans := match.All(lp.Text, term, e.mopts)
	rects := highlight.MapAll(lp, runs, spans, vp.Transform)

	e.state.Highlights = rects
	log.Debug("highlighted",
		observability.Float64("scale", scale),
		observability.Int("matches", len(spans)),
		observability.Int("rects", len(rects)))
	return append([]highlight.Rect(nil), rects...)
}

// ExtractPageText returns the linearized text of page n, extracting it on
// first use.
func (e *Engine) ExtractPageText(ctx context.Context, n int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return "", ErrNoDocument
	}
	if n < 1 || n > e.state.NumPages {
		return "", ErrInvalidPage
	}
	text, ok := e.cache.Get(n)
	e.log.Debug("page text requested", observability.Int("page", n), observability.Bool("cached", ok))
	if ok {
		return text, nil
	}
	text, err := e.extractLocked(ctx, n)
	if err != nil {
		return "", err
	}
	e.cache.Put(n, text)
	return text, nil
}

// ExtractAllText fills the text cache for every page not yet cached. Pages
// that fail are logged and left out.
func (e *Engine) ExtractAllText(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return
	}
	e.extractAllLocked(ctx)
}

func (e *Engine) extractAllLocked(ctx context.Context) {
	e.setLoadingLocked(true, "Extracting text from PDF...")
	defer e.setLoadingLocked(false, "")

	for n := 1; n <= e.state.NumPages; n++ {
		if err := ctx.Err(); err != nil {
			e.log.Warn("text extraction interrupted", observability.Int("page", n), observability.Error("err", err))
			return
		}
		if _, ok := e.cache.Get(n); ok {
			continue
		}
		text, err := e.extractLocked(ctx, n)
		if err != nil {
			e.log.Warn("page text unavailable", observability.Int("page", n), observability.Error("err", err))
			continue
		}
		e.cache.Put(n, text)
	}
}

func (e *Engine) extractLocked(ctx context.Context, n int) (string, error) {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanExtract)
	defer span.Finish()
	span.SetTag("page", n)

	page, err := e.doc.Page(ctx, n)
	if err != nil {
		span.SetError(err)
		return "", err
	}
	runs, err := page.TextRuns(ctx)
	if err != nil {
		span.SetError(err)
		return "", err
	}
	return linearize.Text(runs, e.lin), nil
}
