// Package plot drives the plot-file lifecycle for board fabrication output.
//
// The package owns everything around the drawing itself: output naming,
// format selection, file handles, header identification lines, and the
// numeric-convention guard that keeps plot files locale-clean. Geometry
// emission is delegated to a Renderer supplied by the embedding application.
//
// # Architecture
//
// A plot run walks a simple session state machine per file:
//
//	idle --OpenPlotfile--> open --ClosePlot--> idle
//
// At most one plot stream is open per controller. Opening closes any
// previous stream first; closing is idempotent; layer plot requests against
// an idle controller report failure instead of erroring.
//
// # Usage
//
// Plot a single layer:
//
//	ctrl := plot.NewController(b, opts, drivers.All(), renderer)
//	defer ctrl.Close()
//
//	ctrl.SetLayer(board.FCu)
//	if err := ctrl.OpenPlotfile(board.FCu.Suffix(), plot.FormatGerber, "demo"); err != nil {
//	    return err
//	}
//	ctrl.PlotLayer()
//	if err := ctrl.ClosePlot(); err != nil {
//	    return err
//	}
//
// Plot a whole layer set with one Runner call:
//
//	runner := drivers.NewRunner(b, opts, logger)
//	result, err := runner.Run(ctx, layers)
package plot

import (
	"os"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/errors"
)

// Controller sequences the plot-file lifecycle for one board. It is not
// safe for concurrent use; each goroutine needs its own controller.
type Controller struct {
	board    *board.Board
	opts     *Options
	drivers  []*Driver
	renderer Renderer

	layer   board.Layer
	plotter Plotter
	file    *os.File
	path    string
}

// NewController creates a controller for a board. The driver slice decides
// which formats can be opened; renderer may be nil, in which case layer
// plots dispatch to nothing and produce framed files without geometry.
func NewController(b *board.Board, opts *Options, drivers []*Driver, renderer Renderer) *Controller {
	if opts == nil {
		opts = &Options{}
	}
	return &Controller{
		board:    b,
		opts:     opts,
		drivers:  drivers,
		renderer: renderer,
		layer:    board.UndefinedLayer,
	}
}

// SetLayer selects the layer for subsequent opens and plots.
func (c *Controller) SetLayer(l board.Layer) {
	c.layer = l
}

// Layer returns the selected layer.
func (c *Controller) Layer() board.Layer {
	return c.layer
}

// IsPlotOpen reports whether a plot stream is currently open.
func (c *Controller) IsPlotOpen() bool {
	return c.plotter != nil
}

// PlotFilePath returns the path of the current plot file, or of the last
// one opened when the controller is idle.
func (c *Controller) PlotFilePath() string {
	return c.path
}

// OpenPlotfile starts a new plot file for the selected layer. Any stream
// still open from a previous call is closed first. The format is recorded
// in the options so later opens and the job-file writer see what was
// actually plotted.
//
// On failure the controller stays idle and the error carries a code
// describing the stage that failed. A partially written file may remain on
// disk; its handle is closed.
func (c *Controller) OpenPlotfile(suffix string, format Format, sheetDesc string) error {
	defer lockPlotIO()()

	// Recorded before anything can fail so later operations and the
	// job-file writer see the requested format either way. Dispatch below
	// uses the explicit argument, not this field.
	c.opts.Format = format

	// A stream may still be open from the previous layer.
	if err := c.ClosePlot(); err != nil {
		return err
	}

	drv := findDriver(c.drivers, format)
	if drv == nil {
		return errors.New(errors.ErrCodeDriverNotFound, "no driver for format %q", format)
	}

	dir := c.opts.ResolveOutputDir(c.board)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodePlotOutputDir, err, "create output directory %s", dir)
	}

	ext := drv.Ext
	if ext == "" {
		ext = format.DefaultExt()
	}
	if drv.LayerExt != nil {
		if e := drv.LayerExt(c.layer, c.opts); e != "" {
			ext = e
		}
	}

	path := BuildPlotFileName(dir, c.board.BaseName(), suffix, ext)

	p := drv.New(c.board, c.opts)
	if drv.Header != nil {
		for _, line := range drv.Header(c.board, c.opts, c.layer, sheetDesc) {
			p.AddLineToHeader(line)
		}
	}
	p.SetColorMode(c.opts.ColorMode)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodePlotOpen, err, "create plot file %s", path)
	}

	if err := p.StartPlot(f); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodePlotOpen, err, "start plot %s", path)
	}

	c.plotter = p
	c.file = f
	c.path = path
	return nil
}

// PlotLayer plots the selected layer into the open stream. It reports
// whether the plot was dispatched: false means no stream is open or the
// renderer rejected the layer, and the stream is left open either way.
func (c *Controller) PlotLayer() bool {
	if c.plotter == nil {
		return false
	}

	defer lockPlotIO()()

	if c.renderer == nil {
		return true
	}
	return c.renderer.PlotBoardLayer(c.board, c.plotter, c.layer, c.opts) == nil
}

// ClosePlot finalizes and closes the open plot stream. Calling it on an
// idle controller is a no-op. The controller returns to idle even when
// finalization fails.
func (c *Controller) ClosePlot() error {
	if c.plotter == nil {
		return nil
	}

	defer lockPlotIO()()

	endErr := c.plotter.EndPlot()
	closeErr := c.file.Close()
	c.plotter = nil
	c.file = nil

	if endErr != nil {
		return errors.Wrap(errors.ErrCodeInternal, endErr, "finalize plot %s", c.path)
	}
	if closeErr != nil {
		return errors.Wrap(errors.ErrCodeInternal, closeErr, "close plot %s", c.path)
	}
	return nil
}

// Close makes the controller an io.Closer so callers can defer cleanup.
// Equivalent to ClosePlot.
func (c *Controller) Close() error {
	return c.ClosePlot()
}

// SetColorMode forwards the color mode to the open plotter. No-op while
// idle.
func (c *Controller) SetColorMode(color bool) {
	if c.plotter != nil {
		c.plotter.SetColorMode(color)
	}
}

// GetColorMode reports the open plotter's color mode, false while idle.
func (c *Controller) GetColorMode() bool {
	if c.plotter == nil {
		return false
	}
	return c.plotter.ColorMode()
}
