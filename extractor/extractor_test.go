package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/wudi/pdfsearch/document"
)

// buildPDF assembles a one-page PDF around content with a valid xref table.
func buildPDF(t *testing.T, content string) []byte {
	t.Helper()
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 300 200] >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestOpenAndExtractRuns(t *testing.T) {
	data := buildPDF(t, "BT /F1 12 Tf 72 150 Td (Hello World) Tj 0 -20 Td (Second line) Tj ET")
	ctx := context.Background()
	doc, err := Open(ctx, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer doc.Close()
	if doc.PageCount() != 1 {
		t.Fatalf("page count: %d", doc.PageCount())
	}
	page, err := doc.Page(ctx, 1)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	runs, err := page.TextRuns(ctx)
	if err != nil {
		t.Fatalf("TextRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs: %+v", runs)
	}
	if runs[0].Content != "Hello World" || !runs[0].HasEOL {
		t.Fatalf("first run: %+v", runs[0])
	}
	if runs[1].Content != "Second line" || runs[1].HasEOL {
		t.Fatalf("second run: %+v", runs[1])
	}
	if tr := runs[0].Transform; len(tr) != 6 || math.Abs(tr[4]-72) > 1e-6 || math.Abs(tr[5]-150) > 1e-6 {
		t.Fatalf("first run transform: %v", tr)
	}
	if math.Abs(runs[0].Width-66) > 1e-6 {
		t.Fatalf("first run width: %v", runs[0].Width)
	}

	vp := page.Viewport(1)
	if vp.Box != [4]float64{0, 0, 300, 200} {
		t.Fatalf("media box: %v", vp.Box)
	}
}

func TestOpenRejectsNonPDF(t *testing.T) {
	data := []byte("this is not a PDF")
	if _, err := Open(context.Background(), bytes.NewReader(data), int64(len(data))); !errors.Is(err, document.ErrLoad) {
		t.Fatalf("got %v", err)
	}
}

func TestOpenFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, buildPDF(t, "BT /F1 12 Tf 10 10 Td (x) Tj ET"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	doc, err := document.OpenFile(context.Background(), path, Open)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer doc.Close()
	if doc.PageCount() != 1 {
		t.Fatalf("pages: %d", doc.PageCount())
	}
}

func TestPageOutOfRange(t *testing.T) {
	data := buildPDF(t, "BT /F1 12 Tf 10 10 Td (x) Tj ET")
	doc, err := Open(context.Background(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := doc.Page(context.Background(), 2); !errors.Is(err, document.ErrPageRange) {
		t.Fatalf("got %v", err)
	}
}

func TestGroupRuns(t *testing.T) {
	glyphs := []pdf.Text{
		{Font: "F", FontSize: 10, X: 0, Y: 100, W: 5, S: "a"},
		{Font: "F", FontSize: 10, X: 5, Y: 100, W: 5, S: "b"},
		{Font: "F", FontSize: 10, X: 40, Y: 100, W: 5, S: "c"},
		{Font: "G", FontSize: 10, X: 45, Y: 100, W: 5, S: "d"},
		{Font: "G", FontSize: 10, X: 0, Y: 80, W: 5, S: "e"},
		{Font: "G", FontSize: 10, X: 5, Y: 80, W: 5, S: ""},
		{Font: "G", FontSize: 10, X: 5, Y: 80, W: 5, S: "é"},
	}
	runs := groupRuns(glyphs)
	want := []struct {
		content string
		eol     bool
		width   float64
	}{
		{"ab", false, 10},
		{"c", false, 5},
		{"d", true, 5},
		{"eé", false, 10},
	}
	if len(runs) != len(want) {
		t.Fatalf("runs: %+v", runs)
	}
	for i, w := range want {
		if runs[i].Content != w.content || runs[i].HasEOL != w.eol || runs[i].Width != w.width {
			t.Fatalf("run %d: got %+v want %+v", i, runs[i], w)
		}
	}
}
