package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"

	"github.com/wudi/pdfsearch/config"
	"github.com/wudi/pdfsearch/highlight"
	"github.com/wudi/pdfsearch/memdoc"
	"github.com/wudi/pdfsearch/observability"
	"github.com/wudi/pdfsearch/render"
	"github.com/wudi/pdfsearch/report"
	"github.com/wudi/pdfsearch/search"
)

type options struct {
	path     string
	term     string
	jsonDump bool
	format   string
	page     int
	scale    float64
	pngPath  string
	logLevel string
	width    int
}

func main() {
	cfg := config.Load()
	opts, err := parseFlags(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfsearch: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "pdfsearch: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(cfg config.Config) (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pdfsearch [flags] <file.pdf|file.json> <term>\n")
		flag.PrintDefaults()
	}
	jsonDump := flag.Bool("json", false, "Input is a pdf.js text-content JSON dump instead of a PDF")
	format := flag.String("format", "text", "Result format: text, markdown, html or json")
	page := flag.Int("page", 0, "Highlight the term on this page and print the rectangles")
	scale := flag.Float64("scale", cfg.Scale, "Viewport scale for highlights and rendering")
	pngPath := flag.String("png", "", "Write the highlighted page as PNG (requires -page)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	width := flag.Int("width", 100, "Truncate text results to this many columns (0 disables)")
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return options{}, fmt.Errorf("expected a file and a search term")
	}
	switch *format {
	case "text", "markdown", "html", "json":
	default:
		return options{}, fmt.Errorf("unknown format %q", *format)
	}
	if *pngPath != "" && *page < 1 {
		return options{}, fmt.Errorf("-png requires -page")
	}
	opts = options{
		path:     flag.Arg(0),
		term:     flag.Arg(1),
		jsonDump: *jsonDump,
		format:   *format,
		page:     *page,
		scale:    *scale,
		pngPath:  *pngPath,
		logLevel: *logLevel,
		width:    *width,
	}
	return opts, nil
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer) error {
	if opts.scale > 0 {
		cfg.Scale = opts.scale
	}
	logger := observability.NewTextLogger(os.Stderr, observability.ParseLevel(opts.logLevel))
	engineOpts := []search.Option{search.WithConfig(cfg), search.WithLogger(logger)}
	if opts.jsonDump {
		engineOpts = append(engineOpts, search.WithOpener(memdoc.Open))
	}
	engine, err := search.New(engineOpts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.OpenFile(ctx, opts.path); err != nil {
		return err
	}
	results := engine.Search(ctx, opts.term)
	if err := emitResults(out, results, opts); err != nil {
		return err
	}
	if opts.page < 1 {
		return nil
	}

	if err := engine.SetPage(opts.page); err != nil {
		return err
	}
	rects := engine.Highlight(ctx, opts.term, cfg.Scale)
	if err := emitRects(out, opts.page, rects); err != nil {
		return err
	}
	if opts.pngPath == "" {
		return nil
	}
	return writePNG(ctx, engine, opts.page, cfg.Scale, rects, opts.pngPath)
}

func emitResults(w io.Writer, results []search.Result, opts options) error {
	switch opts.format {
	case "markdown":
		_, err := io.WriteString(w, report.Markdown(results, opts.term))
		return err
	case "html":
		html, err := report.HTML(results, opts.term)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	case "json":
		return emitSection(w, "results", results)
	default:
		return report.Text(w, results, opts.width)
	}
}

func emitRects(w io.Writer, page int, rects []highlight.Rect) error {
	if len(rects) == 0 {
		_, err := fmt.Fprintf(w, "page %d: no highlights\n", page)
		return err
	}
	for _, r := range rects {
		if _, err := fmt.Fprintf(w, "page %d: x=%.2f y=%.2f w=%.2f h=%.2f\n", page, r.X, r.Y, r.Width, r.Height); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(ctx context.Context, engine *search.Engine, page int, scale float64, rects []highlight.Rect, path string) error {
	vp, err := engine.PageViewport(ctx, page, scale)
	if err != nil {
		return err
	}
	canvas := render.NewCanvas(vp)
	if _, err := engine.RenderPage(ctx, canvas, page, scale); err != nil {
		return fmt.Errorf("render page %d: %w", page, err)
	}
	render.Overlay(canvas, rects, render.HighlightColor)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, canvas); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func emitSection(w io.Writer, name string, payload interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{name: payload})
}
