package draw

import (
	"bufio"
	"fmt"
	"io"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/plot"
)

// DXFPlotter writes ASCII DXF as group-code and value pairs, one per
// line. Units are millimeters.
type DXFPlotter struct {
	header []string
	color  bool
	w      io.Writer
}

// NewDXFPlotter returns a DXF plotter.
func NewDXFPlotter() *DXFPlotter {
	return &DXFPlotter{}
}

// AddLineToHeader queues a line for emission as a 999 comment group at the
// top of the file.
func (p *DXFPlotter) AddLineToHeader(line string) {
	p.header = append(p.header, line)
}

func (p *DXFPlotter) SetColorMode(color bool) {
	p.color = color
}

func (p *DXFPlotter) ColorMode() bool {
	return p.color
}

// StartPlot writes the comments, the HEADER section, and opens the
// ENTITIES section.
func (p *DXFPlotter) StartPlot(w io.Writer) error {
	p.w = w
	buf := bufio.NewWriter(w)

	for _, line := range p.header {
		fmt.Fprintf(buf, "999\n%s\n", line)
	}

	fmt.Fprint(buf, "0\nSECTION\n2\nHEADER\n")
	fmt.Fprint(buf, "9\n$ACADVER\n1\nAC1009\n")
	fmt.Fprint(buf, "9\n$INSUNITS\n70\n4\n")
	fmt.Fprint(buf, "0\nENDSEC\n")
	fmt.Fprint(buf, "0\nSECTION\n2\nENTITIES\n")
	return buf.Flush()
}

// EndPlot closes the ENTITIES section and terminates the file.
func (p *DXFPlotter) EndPlot() error {
	buf := bufio.NewWriter(p.w)
	fmt.Fprint(buf, "0\nENDSEC\n0\nEOF\n")
	return buf.Flush()
}

// DXFDriver returns the DXF format driver.
func DXFDriver() *plot.Driver {
	return &plot.Driver{
		Format: plot.FormatDXF,
		Ext:    "dxf",
		New: func(b *board.Board, opts *plot.Options) plot.Plotter {
			return NewDXFPlotter()
		},
	}
}
