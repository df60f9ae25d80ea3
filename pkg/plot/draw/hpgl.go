package draw

import (
	"bufio"
	"fmt"
	"io"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/plot"
)

// hpglPenSpeed is the plot velocity in cm/s sent with the init sequence.
const hpglPenSpeed = 20

// HPGLPlotter writes HPGL/2 command streams for pen plotters.
type HPGLPlotter struct {
	penSizeMM float64
	header    []string
	color     bool
	w         io.Writer
}

// NewHPGLPlotter returns a plotter using the given pen diameter.
func NewHPGLPlotter(penSizeMM float64) *HPGLPlotter {
	return &HPGLPlotter{penSizeMM: penSizeMM}
}

// AddLineToHeader queues a line for emission as a CO comment after the
// init command.
func (p *HPGLPlotter) AddLineToHeader(line string) {
	p.header = append(p.header, line)
}

func (p *HPGLPlotter) SetColorMode(color bool) {
	p.color = color
}

func (p *HPGLPlotter) ColorMode() bool {
	return p.color
}

// StartPlot initializes the plotter, selects pen 1, and programs the pen
// width and speed.
func (p *HPGLPlotter) StartPlot(w io.Writer) error {
	p.w = w
	buf := bufio.NewWriter(w)

	fmt.Fprint(buf, "IN;\n")
	for _, line := range p.header {
		fmt.Fprintf(buf, "CO \"%s\";\n", line)
	}
	fmt.Fprintf(buf, "VS%d;SP1;PW%s;\n", hpglPenSpeed, plot.FormatFloat(p.penSizeMM, 3))
	fmt.Fprint(buf, "PU;PA;\n")
	return buf.Flush()
}

// EndPlot lifts the pen, stows it, and resets the device.
func (p *HPGLPlotter) EndPlot() error {
	buf := bufio.NewWriter(p.w)
	fmt.Fprint(buf, "PU;PA;SP0;IN;\n")
	return buf.Flush()
}

// HPGLDriver returns the HPGL format driver.
func HPGLDriver() *plot.Driver {
	return &plot.Driver{
		Format: plot.FormatHPGL,
		Ext:    "plt",
		New: func(b *board.Board, opts *plot.Options) plot.Plotter {
			size := opts.HPGLPenSizeMM
			if size <= 0 {
				size = plot.DefaultHPGLPenSizeMM
			}
			return NewHPGLPlotter(size)
		},
	}
}
