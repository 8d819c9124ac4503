// Package search runs free-text searches over a loaded document and turns
// hits on the displayed page into highlight rectangles. An Engine also
// carries the viewer session: current page, render task and status.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/wudi/pdfsearch/config"
	"github.com/wudi/pdfsearch/document"
	"github.com/wudi/pdfsearch/extractor"
	"github.com/wudi/pdfsearch/highlight"
	"github.com/wudi/pdfsearch/linearize"
	"github.com/wudi/pdfsearch/match"
	"github.com/wudi/pdfsearch/observability"
)

var (
	// ErrNoDocument is returned when an operation needs a loaded document.
	ErrNoDocument = errors.New("no document loaded")
	// ErrInvalidPage is returned for page numbers outside the document.
	ErrInvalidPage = errors.New("invalid page number")
	// ErrTooLarge is returned by Open for content above the size limit.
	ErrTooLarge = errors.New("document exceeds size limit")
)

// Result is one page that contains the search term.
type Result struct {
	PageNumber int
	// Context is a snippet around the first hit on the page.
	Context string
	// Text is the full linearized page text.
	Text string
}

// State is a snapshot of the viewer session.
type State struct {
	PageNum        int
	NumPages       int
	Loading        bool
	LoadingMessage string
	ErrorMessage   string
	Results        []Result
	Highlights     []highlight.Rect
	SearchTerm     string
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces config.Default.
func WithConfig(cfg config.Config) Option { return func(e *Engine) { e.cfg = cfg } }

// WithLogger sets the logger; the default discards everything.
func WithLogger(l observability.Logger) Option { return func(e *Engine) { e.log = l } }

// WithTracer sets the tracer used for spans around engine operations.
func WithTracer(t observability.Tracer) Option { return func(e *Engine) { e.tracer = t } }

// WithOpener sets the loader used by Open and OpenFile. The default opens PDFs.
func WithOpener(o document.Opener) Option { return func(e *Engine) { e.opener = o } }

// Engine is safe for use from several goroutines; operations are serialized
// except for the body of RenderPage, which can be cancelled by a later call.
type Engine struct {
	mu     sync.Mutex
	cfg    config.Config
	lin    linearize.Options
	mopts  match.Options
	opener document.Opener
	log    observability.Logger
	tracer observability.Tracer

	doc   document.Document
	cache *TextCache
	state State

	cancelRender context.CancelFunc
	renderSeq    uint64
}

// New builds an engine with no document loaded.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:    config.Default(),
		opener: extractor.Open,
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
		cache:  NewTextCache(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	scripts, err := e.cfg.Scripts()
	if err != nil {
		return nil, err
	}
	e.lin = linearize.Options{
		JoinScripts:  scripts,
		NoCJK:        e.cfg.Text.NoCJK,
		NoSeparators: e.cfg.Text.NoSeparators,
	}
	e.mopts = match.Options{
		CaseSensitive: e.cfg.Match.CaseSensitive,
		WholeWord:     e.cfg.Match.WholeWord,
		NoFallback:    e.cfg.Match.NoFallback,
	}
	e.log = e.log.With(observability.String("component", "search"))
	return e, nil
}

// State returns a copy of the session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Results = append([]Result(nil), e.state.Results...)
	s.Highlights = append([]highlight.Rect(nil), e.state.Highlights...)
	return s
}

// Load makes doc the active document, closing the previous one and
// dropping all cached text and derived state.
func (e *Engine) Load(ctx context.Context, doc document.Document) {
	_, span := e.tracer.StartSpan(ctx, observability.SpanLoad)
	defer span.Finish()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.doc = doc
	if doc == nil {
		return
	}
	e.state.NumPages = doc.PageCount()
	if e.state.NumPages > 0 {
		e.state.PageNum = 1
	}
	span.SetTag("pages", e.state.NumPages)
	e.log.Info("document loaded", observability.Int("pages", e.state.NumPages))
}

// Open loads a document from r through the configured opener. The current
// document and its results are dropped before loading starts, so a failed
// open leaves no document active.
func (e *Engine) Open(ctx context.Context, r io.ReaderAt, size int64) error {
	e.begin()
	doc, err := e.open(ctx, r, size)
	if err != nil {
		return err
	}
	e.Load(ctx, doc)
	return nil
}

// OpenFile opens path and loads it. The file stays open until the next
// load or Close.
func (e *Engine) OpenFile(ctx context.Context, path string) error {
	e.begin()
	doc, err := document.OpenFile(ctx, path, e.open)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			e.fail("Failed to read file")
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	e.Load(ctx, doc)
	return nil
}

func (e *Engine) begin() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.resetLocked(); err != nil {
		e.log.Warn("closing previous document", observability.Error("err", err))
	}
	e.setLoadingLocked(true, "Loading PDF...")
}

// open is the size-limited opener shared by Open and OpenFile.
func (e *Engine) open(ctx context.Context, r io.ReaderAt, size int64) (document.Document, error) {
	if size > e.cfg.MaxFileBytes {
		err := fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, e.cfg.MaxFileBytes)
		e.fail("Failed to load PDF: " + err.Error())
		return nil, err
	}
	doc, err := e.opener(ctx, r, size)
	if err != nil {
		e.log.Error("load failed", observability.Int64("bytes", size), observability.Error("err", err))
		e.fail("Failed to load PDF: " + err.Error())
		return nil, err
	}
	e.log.Debug("document opened", observability.Int64("bytes", size))
	return doc, nil
}

// Close releases the active document.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetLocked()
}

func (e *Engine) resetLocked() error {
	if e.cancelRender != nil {
		e.cancelRender()
		e.cancelRender = nil
	}
	var errs []error
	if e.doc != nil {
		errs = append(errs, e.doc.Close())
	}
	e.doc = nil
	e.cache.Reset()
	e.state = State{}
	return errors.Join(errs...)
}

func (e *Engine) setLoading(on bool, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setLoadingLocked(on, msg)
}

func (e *Engine) setLoadingLocked(on bool, msg string) {
	e.state.Loading = on
	if !on {
		msg = ""
	}
	e.state.LoadingMessage = msg
}

func (e *Engine) fail(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setLoadingLocked(false, "")
	e.state.ErrorMessage = msg
}
