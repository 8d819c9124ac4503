package search

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"golang.org/x/image/draw"

	"github.com/wudi/pdfsearch/document"
	"github.com/wudi/pdfsearch/memdoc"
)

// blockingDoc blocks rendering of page 1 until the render context ends.
type blockingDoc struct {
	*memdoc.Document
	started chan struct{}
}

func (d *blockingDoc) Page(ctx context.Context, n int) (document.Page, error) {
	p, err := d.Document.Page(ctx, n)
	if err != nil || n != 1 {
		return p, err
	}
	return &blockingPage{Page: p, started: d.started}, nil
}

type blockingPage struct {
	document.Page
	started chan struct{}
}

func (p *blockingPage) Render(ctx context.Context, _ draw.Image, _ document.Viewport) error {
	close(p.started)
	<-ctx.Done()
	return ctx.Err()
}

func twoPages() *memdoc.Document {
	return memdoc.New(
		memdoc.Page{Runs: []document.TextRun{run("one", 72, 700, 30)}},
		memdoc.Page{Runs: []document.TextRun{run("two", 72, 700, 30)}},
	)
}

func TestPageNavigation(t *testing.T) {
	e := newEngine(t)
	e.Load(context.Background(), twoPages())
	if err := e.NextPage(); err != nil {
		t.Fatalf("NextPage: %v", err)
	}
	if err := e.NextPage(); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("NextPage past end: %v", err)
	}
	if got := e.State().PageNum; got != 2 {
		t.Fatalf("page = %d", got)
	}
	if err := e.SetPage(0); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("SetPage(0): %v", err)
	}
	if err := e.SetPage(1); err != nil {
		t.Fatalf("SetPage(1): %v", err)
	}
}

func TestRenderPage(t *testing.T) {
	e := newEngine(t)
	e.Load(context.Background(), twoPages())
	pvp, err := e.PageViewport(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("PageViewport: %v", err)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, int(pvp.Width), int(pvp.Height)))
	vp, err := e.RenderPage(context.Background(), canvas, 2, 0)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if vp.Scale != 1.5 || vp.Width != 918 || vp.Height != 1188 {
		t.Fatalf("viewport: %+v", vp)
	}
	if st := e.State(); st.Loading || st.ErrorMessage != "" {
		t.Fatalf("state: %+v", st)
	}
	if _, err := e.RenderPage(context.Background(), canvas, 3, 1); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("out of range: %v", err)
	}
}

func TestRenderPageCancelledByNewerRender(t *testing.T) {
	doc := &blockingDoc{Document: twoPages(), started: make(chan struct{})}
	e := newEngine(t)
	e.Load(context.Background(), doc)

	done := make(chan error, 1)
	go func() {
		_, err := e.RenderPage(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)), 1, 1)
		done <- err
	}()
	select {
	case <-doc.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("first render never started")
	}

	if _, err := e.RenderPage(context.Background(), image.NewRGBA(image.Rect(0, 0, 612, 792)), 2, 1); err != nil {
		t.Fatalf("second render: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("first render: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("first render was not cancelled")
	}
	if st := e.State(); st.ErrorMessage != "" || st.Loading {
		t.Fatalf("cancelled render touched state: %+v", st)
	}
}

func TestCancelRender(t *testing.T) {
	doc := &blockingDoc{Document: twoPages(), started: make(chan struct{})}
	e := newEngine(t)
	e.Load(context.Background(), doc)

	done := make(chan error, 1)
	go func() {
		_, err := e.RenderPage(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)), 1, 1)
		done <- err
	}()
	<-doc.started
	e.CancelRender()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("render: %v", err)
	}
	if st := e.State(); st.ErrorMessage != "" {
		t.Fatalf("error message: %q", st.ErrorMessage)
	}
}
