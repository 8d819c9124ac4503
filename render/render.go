// Package render draws diagnostic page previews: a wireframe of each text
// run with its text, and translucent highlight overlays. It does not
// rasterize page content.
package render

import (
	"context"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/pdfsearch/coords"
	"github.com/wudi/pdfsearch/document"
	"github.com/wudi/pdfsearch/highlight"
)

var (
	// HighlightColor is the default overlay fill.
	HighlightColor = color.NRGBA{R: 255, G: 214, B: 0, A: 110}
	outlineColor   = color.NRGBA{R: 160, G: 170, B: 190, A: 255}
)

// Runs paints a white page and outlines every run with its text drawn at the
// run origin. It checks ctx between runs and returns ctx.Err() when
// cancelled.
func Runs(ctx context.Context, dst draw.Image, runs []document.TextRun, vp document.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page := image.Rect(0, 0, int(math.Ceil(vp.Width)), int(math.Ceil(vp.Height))).Intersect(dst.Bounds())
	draw.Draw(dst, page, image.White, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, err := highlight.RunQuad(run)
		if err != nil {
			continue
		}
		cq := q.Transform(vp.Transform)
		outline(dst, cq)
		if run.Content == "" || !cq.BL.Finite() {
			continue
		}
		d.Dot = fixed.P(int(math.Round(cq.BL.X)), int(math.Round(cq.BL.Y)))
		d.DrawString(run.Content)
	}
	return nil
}

// Overlay fills each rectangle with c blended over dst.
func Overlay(dst draw.Image, rects []highlight.Rect, c color.Color) {
	src := image.NewUniform(c)
	for _, r := range rects {
		box := pixelRect(r).Intersect(dst.Bounds())
		if box.Empty() {
			continue
		}
		draw.Draw(dst, box, src, image.Point{}, draw.Over)
	}
}

// NewCanvas allocates an RGBA surface sized to the viewport.
func NewCanvas(vp document.Viewport) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, int(math.Ceil(vp.Width)), int(math.Ceil(vp.Height))))
}

func pixelRect(r highlight.Rect) image.Rectangle {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return image.Rectangle{}
		}
	}
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
}

func outline(dst draw.Image, q highlight.Quad) {
	b := coords.EmptyBounds()
	pts := q.Points()
	b.Extend(pts[:]...)
	if !b.Finite() {
		return
	}
	box := pixelRect(highlight.Rect{X: b.MinX, Y: b.MinY, Width: b.Width(), Height: b.Height()})
	src := image.NewUniform(outlineColor)
	edges := []image.Rectangle{
		image.Rect(box.Min.X, box.Min.Y, box.Max.X+1, box.Min.Y+1),
		image.Rect(box.Min.X, box.Max.Y, box.Max.X+1, box.Max.Y+1),
		image.Rect(box.Min.X, box.Min.Y, box.Min.X+1, box.Max.Y+1),
		image.Rect(box.Max.X, box.Min.Y, box.Max.X+1, box.Max.Y+1),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
	}
}
