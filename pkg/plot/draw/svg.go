package draw

import (
	"bufio"
	"fmt"
	"io"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/buildinfo"
	"github.com/boardplot/boardplot/pkg/plot"
)

// SVGPlotter writes SVG 1.1 documents sized to the plot page.
type SVGPlotter struct {
	page   board.PageSize
	title  string
	header []string
	color  bool
	w      io.Writer
}

// NewSVGPlotter returns a plotter for the given page size. The title ends
// up in the document's title element; empty titles are allowed.
func NewSVGPlotter(page board.PageSize, title string) *SVGPlotter {
	return &SVGPlotter{page: page, title: title}
}

func (p *SVGPlotter) AddLineToHeader(line string) {
	p.header = append(p.header, line)
}

func (p *SVGPlotter) SetColorMode(color bool) {
	p.color = color
}

func (p *SVGPlotter) ColorMode() bool {
	return p.color
}

// StartPlot writes the XML preamble and opens the root element. The
// viewBox is in millimeters so coordinates below map one to one.
func (p *SVGPlotter) StartPlot(w io.Writer) error {
	p.w = w
	buf := bufio.NewWriter(w)

	width := plot.FormatFloat(p.page.WidthMM, 2)
	height := plot.FormatFloat(p.page.HeightMM, 2)

	fmt.Fprintln(buf, `<?xml version="1.0" standalone="no"?>`)
	fmt.Fprintf(buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\"\n")
	fmt.Fprintf(buf, "     width=\"%smm\" height=\"%smm\" viewBox=\"0 0 %s %s\">\n",
		width, height, width, height)
	fmt.Fprintf(buf, "<title>%s</title>\n", xmlEscape(p.title))
	fmt.Fprintf(buf, "<desc>Generated by %s %s</desc>\n", "boardplot", buildinfo.Version)
	for _, line := range p.header {
		fmt.Fprintf(buf, "<!-- %s -->\n", xmlEscape(line))
	}
	return buf.Flush()
}

// EndPlot closes the root element.
func (p *SVGPlotter) EndPlot() error {
	buf := bufio.NewWriter(p.w)
	fmt.Fprintln(buf, "</svg>")
	return buf.Flush()
}

// SVGDriver returns the SVG format driver.
func SVGDriver() *plot.Driver {
	return &plot.Driver{
		Format: plot.FormatSVG,
		Ext:    "svg",
		New: func(b *board.Board, opts *plot.Options) plot.Plotter {
			title := opts.SheetDescription
			if title == "" {
				title = b.BaseName()
			}
			return NewSVGPlotter(opts.PageFor(b), title)
		},
	}
}
