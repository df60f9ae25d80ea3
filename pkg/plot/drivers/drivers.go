// Package drivers aggregates the built-in output drivers and wires them
// into ready-to-use controllers and runners. Importing this package pulls
// in every format; embedders that want a subset can assemble their own
// driver slice from the format packages directly.
package drivers

import (
	"github.com/charmbracelet/log"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/plot"
	"github.com/boardplot/boardplot/pkg/plot/draw"
	"github.com/boardplot/boardplot/pkg/plot/gerber"
)

// All returns the built-in drivers, one per supported format.
func All() []*plot.Driver {
	return []*plot.Driver{
		gerber.Driver(),
		draw.PSDriver(),
		draw.PDFDriver(),
		draw.SVGDriver(),
		draw.DXFDriver(),
		draw.HPGLDriver(),
	}
}

// Find returns the built-in driver for a format, or nil when the format
// has none.
func Find(f plot.Format) *plot.Driver {
	for _, d := range All() {
		if d.Format == f {
			return d
		}
	}
	return nil
}

// NewController returns a plot controller wired with every built-in
// driver.
func NewController(b *board.Board, opts *plot.Options, renderer plot.Renderer) *plot.Controller {
	return plot.NewController(b, opts, All(), renderer)
}

// NewRunner returns a batch runner wired with every built-in driver and
// the Gerber job-file writer.
func NewRunner(b *board.Board, opts *plot.Options, logger *log.Logger) *plot.Runner {
	r := plot.NewRunner(b, opts, All(), logger)
	r.JobFile = gerber.NewJobWriter()
	return r
}
