package plot

import (
	"io"

	"github.com/boardplot/boardplot/pkg/board"
)

// Plotter is the capability surface a format driver exposes to the
// controller. Header lines are buffered until StartPlot, which writes the
// format preamble with the buffered lines embedded in the format's comment
// or attribute syntax. EndPlot writes the trailer and must tolerate a plot
// with no drawing between start and end.
type Plotter interface {
	// AddLineToHeader queues an identification line for the file header.
	AddLineToHeader(line string)

	// SetColorMode selects color or monochrome output. Drivers for
	// formats without color support record the flag and ignore it.
	SetColorMode(color bool)

	// ColorMode reports the current color mode.
	ColorMode() bool

	// StartPlot begins writing the plot stream to w.
	StartPlot(w io.Writer) error

	// EndPlot finalizes the stream.
	EndPlot() error
}

// Driver describes one output format implementation. Drivers register
// through the drivers aggregation package; the controller only sees the
// slice it was constructed with.
type Driver struct {
	// Format is the format this driver produces.
	Format Format

	// Ext is the default file extension, without the leading dot.
	Ext string

	// New creates a plotter for one file.
	New func(b *board.Board, opts *Options) Plotter

	// Header composes the identification lines pushed into the plotter
	// before StartPlot.
	Header func(b *board.Board, opts *Options, layer board.Layer, sheetDesc string) []string

	// LayerExt returns a per-layer extension override, or "" to keep Ext.
	// Optional.
	LayerExt func(layer board.Layer, opts *Options) string
}

// Renderer draws the geometry of one board layer through a plotter.
// Geometry lives with the embedding application; the plot engine only
// dispatches to it.
type Renderer interface {
	PlotBoardLayer(b *board.Board, p Plotter, layer board.Layer, opts *Options) error
}

// NopRenderer dispatches without drawing. Useful for producing bare framed
// files and in tests.
type NopRenderer struct{}

// PlotBoardLayer implements Renderer.
func (NopRenderer) PlotBoardLayer(*board.Board, Plotter, board.Layer, *Options) error {
	return nil
}

func findDriver(drivers []*Driver, f Format) *Driver {
	for _, d := range drivers {
		if d != nil && d.Format == f {
			return d
		}
	}
	return nil
}
