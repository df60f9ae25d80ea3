package draw

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/buildinfo"
	"github.com/boardplot/boardplot/pkg/plot"
)

// PSPlotter writes DSC-conforming PostScript, one page per plot file.
type PSPlotter struct {
	page   board.PageSize
	title  string
	header []string
	color  bool
	w      io.Writer
}

// NewPSPlotter returns a plotter for the given page size.
func NewPSPlotter(page board.PageSize, title string) *PSPlotter {
	return &PSPlotter{page: page, title: title}
}

func (p *PSPlotter) AddLineToHeader(line string) {
	p.header = append(p.header, line)
}

func (p *PSPlotter) SetColorMode(color bool) {
	p.color = color
}

func (p *PSPlotter) ColorMode() bool {
	return p.color
}

// StartPlot writes the DSC prolog and opens the single page. The bounding
// box is the page size converted to whole points.
func (p *PSPlotter) StartPlot(w io.Writer) error {
	p.w = w
	buf := bufio.NewWriter(w)

	fmt.Fprintln(buf, "%!PS-Adobe-3.0")
	fmt.Fprintf(buf, "%%%%Creator: boardplot %s\n", buildinfo.Version)
	fmt.Fprintf(buf, "%%%%CreationDate: %s\n", time.Now().Format(time.RFC1123))
	fmt.Fprintf(buf, "%%%%Title: %s\n", p.title)
	fmt.Fprintln(buf, "%%Pages: 1")
	fmt.Fprintf(buf, "%%%%BoundingBox: 0 0 %d %d\n", mmToPoints(p.page.WidthMM), mmToPoints(p.page.HeightMM))
	fmt.Fprintf(buf, "%%%%EndComments\n")
	for _, line := range p.header {
		fmt.Fprintf(buf, "%% %s\n", line)
	}
	fmt.Fprintln(buf, "1 setlinecap")
	fmt.Fprintln(buf, "1 setlinejoin")
	fmt.Fprintln(buf, "%%Page: 1 1")
	return buf.Flush()
}

// EndPlot emits the page and closes the document.
func (p *PSPlotter) EndPlot() error {
	buf := bufio.NewWriter(p.w)
	fmt.Fprintln(buf, "showpage")
	fmt.Fprintf(buf, "%%%%EOF\n")
	return buf.Flush()
}

// PSDriver returns the PostScript format driver.
func PSDriver() *plot.Driver {
	return &plot.Driver{
		Format: plot.FormatPost,
		Ext:    "ps",
		New: func(b *board.Board, opts *plot.Options) plot.Plotter {
			title := opts.SheetDescription
			if title == "" {
				title = b.BaseName()
			}
			return NewPSPlotter(opts.PageFor(b), title)
		},
	}
}
