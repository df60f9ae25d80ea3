package draw

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/buildinfo"
	"github.com/boardplot/boardplot/pkg/plot"
)

// countingWriter tracks the byte offset of everything written so the
// cross-reference table can point back at object starts. The first write
// error sticks and short-circuits the rest.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(b []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(b)
	cw.n += int64(n)
	cw.err = err
	return n, err
}

var pdfEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// pdfEscape makes a string safe for a PDF literal string.
func pdfEscape(s string) string {
	return pdfEscaper.Replace(s)
}

// PDFPlotter writes single-page PDF documents. The layout is the five
// object minimum: catalog, page tree, page, content stream, info
// dictionary, followed by a cross-reference table built from recorded
// offsets.
type PDFPlotter struct {
	page    board.PageSize
	title   string
	header  []string
	color   bool
	cw      *countingWriter
	offsets [6]int64
}

// NewPDFPlotter returns a plotter for the given page size.
func NewPDFPlotter(page board.PageSize, title string) *PDFPlotter {
	return &PDFPlotter{page: page, title: title}
}

func (p *PDFPlotter) AddLineToHeader(line string) {
	p.header = append(p.header, line)
}

func (p *PDFPlotter) SetColorMode(color bool) {
	p.color = color
}

func (p *PDFPlotter) ColorMode() bool {
	return p.color
}

func (p *PDFPlotter) beginObj(id int) {
	p.offsets[id] = p.cw.n
	fmt.Fprintf(p.cw, "%d 0 obj\n", id)
}

// StartPlot writes the document header and the fixed objects: catalog,
// page tree, and the page with its media box in points.
func (p *PDFPlotter) StartPlot(w io.Writer) error {
	p.cw = &countingWriter{w: w}

	// The second comment line carries bytes above 127 so transfer tools
	// treat the file as binary.
	fmt.Fprintf(p.cw, "%%PDF-1.5\n%%\xb5\xb6\n")

	p.beginObj(1)
	fmt.Fprintf(p.cw, "<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	p.beginObj(2)
	fmt.Fprintf(p.cw, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	p.beginObj(3)
	fmt.Fprintf(p.cw, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> /Contents 4 0 R >>\nendobj\n",
		mmToPoints(p.page.WidthMM), mmToPoints(p.page.HeightMM))

	return p.cw.err
}

// EndPlot writes the content stream, the info dictionary, and the
// cross-reference table, then terminates the document.
func (p *PDFPlotter) EndPlot() error {
	var content bytes.Buffer
	for _, line := range p.header {
		fmt.Fprintf(&content, "%% %s\n", line)
	}

	p.beginObj(4)
	fmt.Fprintf(p.cw, "<< /Length %d >>\nstream\n", content.Len())
	p.cw.Write(content.Bytes())
	fmt.Fprintf(p.cw, "endstream\nendobj\n")

	p.beginObj(5)
	fmt.Fprintf(p.cw, "<< /Creator (boardplot %s) /Title (%s) /CreationDate (D:%s) >>\nendobj\n",
		buildinfo.Version, pdfEscape(p.title), time.Now().Format("20060102150405"))

	xref := p.cw.n
	fmt.Fprintf(p.cw, "xref\n0 6\n")
	fmt.Fprintf(p.cw, "0000000000 65535 f \n")
	for id := 1; id <= 5; id++ {
		fmt.Fprintf(p.cw, "%010d 00000 n \n", p.offsets[id])
	}
	fmt.Fprintf(p.cw, "trailer\n<< /Size 6 /Root 1 0 R /Info 5 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)

	return p.cw.err
}

// PDFDriver returns the PDF format driver.
func PDFDriver() *plot.Driver {
	return &plot.Driver{
		Format: plot.FormatPDF,
		Ext:    "pdf",
		New: func(b *board.Board, opts *plot.Options) plot.Plotter {
			title := opts.SheetDescription
			if title == "" {
				title = b.BaseName()
			}
			return NewPDFPlotter(opts.PageFor(b), title)
		},
	}
}
