package gerber

import (
	"bufio"
	"fmt"
	"io"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/buildinfo"
	"github.com/boardplot/boardplot/pkg/plot"
)

// Plotter writes RS-274X streams. Attribute lines queued before StartPlot
// are emitted verbatim ahead of the format preamble, so X2 metadata always
// precedes the first drawing command.
type Plotter struct {
	header []string
	color  bool
	w      io.Writer
}

// NewPlotter returns a Plotter with an empty header queue.
func NewPlotter() *Plotter {
	return &Plotter{}
}

// AddLineToHeader queues one raw line for emission at the top of the
// stream, in call order.
func (p *Plotter) AddLineToHeader(line string) {
	p.header = append(p.header, line)
}

// SetColorMode records the color preference. Gerber output is inherently
// monochrome, so the flag only affects how downstream viewers are advised.
func (p *Plotter) SetColorMode(color bool) {
	p.color = color
}

// ColorMode reports the recorded color preference.
func (p *Plotter) ColorMode() bool {
	return p.color
}

// StartPlot writes the queued header lines followed by the format
// preamble: coordinate format 4.6 in millimeters, absolute, linear
// interpolation. Six decimal digits per millimeter matches the nanometer
// board unit exactly.
func (p *Plotter) StartPlot(w io.Writer) error {
	p.w = w
	buf := bufio.NewWriter(w)
	for _, line := range p.header {
		fmt.Fprintln(buf, line)
	}
	fmt.Fprintf(buf, "%%FSLAX46Y46*%%\n")
	fmt.Fprintf(buf, "G04 Gerber Fmt 4.6, Leading zero omitted, Abs format (unit mm)*\n")
	fmt.Fprintf(buf, "G04 Created by %s %s*\n", genApplication, buildinfo.Version)
	fmt.Fprintf(buf, "%%MOMM*%%\n")
	fmt.Fprintf(buf, "%%LPD*%%\n")
	fmt.Fprintln(buf, "G01*")
	return buf.Flush()
}

// EndPlot terminates the stream with the end-of-file command.
func (p *Plotter) EndPlot() error {
	buf := bufio.NewWriter(p.w)
	fmt.Fprintln(buf, "M02*")
	return buf.Flush()
}

// Driver returns the Gerber format driver. Layer files carry the full X2
// attribute set, and the Protel option swaps the unified .gbr extension
// for the per-layer legacy one.
func Driver() *plot.Driver {
	return &plot.Driver{
		Format: plot.FormatGerber,
		Ext:    "gbr",
		New: func(b *board.Board, opts *plot.Options) plot.Plotter {
			return NewPlotter()
		},
		Header: func(b *board.Board, opts *plot.Options, layer board.Layer, sheetDesc string) []string {
			return Attributes(b, opts, layer)
		},
		LayerExt: func(layer board.Layer, opts *plot.Options) string {
			if opts.ProtelExt {
				return ProtelExtension(layer)
			}
			return ""
		},
	}
}
