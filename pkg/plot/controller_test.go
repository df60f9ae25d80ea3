package plot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/errors"
)

// fakePlotter records lifecycle calls and writes a tiny framed stream.
type fakePlotter struct {
	header    []string
	color     bool
	starts    int
	ends      int
	startErr  error
	endErr    error
	startConv []Convention
	w         io.Writer
}

func (p *fakePlotter) AddLineToHeader(line string) { p.header = append(p.header, line) }
func (p *fakePlotter) SetColorMode(c bool)         { p.color = c }
func (p *fakePlotter) ColorMode() bool             { return p.color }

func (p *fakePlotter) StartPlot(w io.Writer) error {
	p.starts++
	p.startConv = append(p.startConv, ActiveConvention())
	if p.startErr != nil {
		return p.startErr
	}
	p.w = w
	for _, line := range p.header {
		fmt.Fprintf(w, "; %s\n", line)
	}
	fmt.Fprintf(w, "start %s\n", FormatFloat(1234.5, 2))
	return nil
}

func (p *fakePlotter) EndPlot() error {
	p.ends++
	if p.endErr != nil {
		return p.endErr
	}
	fmt.Fprintln(p.w, "end")
	return nil
}

// fakeDriverSet builds a single-driver set that records every plotter it
// creates.
type fakeDriverSet struct {
	plotters []*fakePlotter
	startErr error
	endErr   error
}

func (s *fakeDriverSet) driver(format Format) *Driver {
	return &Driver{
		Format: format,
		Ext:    format.DefaultExt(),
		New: func(*board.Board, *Options) Plotter {
			p := &fakePlotter{startErr: s.startErr, endErr: s.endErr}
			s.plotters = append(s.plotters, p)
			return p
		},
		Header: func(_ *board.Board, _ *Options, layer board.Layer, sheetDesc string) []string {
			return []string{"layer " + layer.String(), sheetDesc}
		},
		LayerExt: func(layer board.Layer, opts *Options) string {
			if opts.ProtelExt && layer == board.FCu {
				return "gtl"
			}
			return ""
		},
	}
}

func (s *fakeDriverSet) last(t *testing.T) *fakePlotter {
	t.Helper()
	if len(s.plotters) == 0 {
		t.Fatal("no plotter was created")
	}
	return s.plotters[len(s.plotters)-1]
}

func testBoard(t *testing.T) *board.Board {
	t.Helper()
	return &board.Board{
		FileName:         filepath.Join(t.TempDir(), "demo.kicad_pcb"),
		CopperLayerCount: 2,
	}
}

func TestControllerLifecycle(t *testing.T) {
	set := &fakeDriverSet{}
	b := testBoard(t)
	ctrl := NewController(b, &Options{}, []*Driver{set.driver(FormatGerber)}, nil)
	defer ctrl.Close()

	if ctrl.IsPlotOpen() {
		t.Fatal("new controller reports an open plot")
	}

	ctrl.SetLayer(board.FCu)
	if err := ctrl.OpenPlotfile(board.FCu.Suffix(), FormatGerber, "demo sheet"); err != nil {
		t.Fatalf("OpenPlotfile: %v", err)
	}
	if !ctrl.IsPlotOpen() {
		t.Fatal("plot not open after OpenPlotfile")
	}
	if !ctrl.PlotLayer() {
		t.Error("PlotLayer = false while open")
	}
	if err := ctrl.ClosePlot(); err != nil {
		t.Fatalf("ClosePlot: %v", err)
	}
	if ctrl.IsPlotOpen() {
		t.Error("plot still open after ClosePlot")
	}

	p := set.last(t)
	if p.starts != 1 || p.ends != 1 {
		t.Errorf("starts = %d, ends = %d, want 1 and 1", p.starts, p.ends)
	}

	wantPath := filepath.Join(b.Dir(), "demo-F_Cu.gbr")
	if ctrl.PlotFilePath() != wantPath {
		t.Errorf("PlotFilePath() = %q, want %q", ctrl.PlotFilePath(), wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read plot file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "layer F.Cu") || !strings.Contains(content, "demo sheet") {
		t.Errorf("header lines missing from output:\n%s", content)
	}
	if !strings.HasSuffix(content, "end\n") {
		t.Errorf("trailer missing from output:\n%s", content)
	}
}

func TestClosePlotIdempotent(t *testing.T) {
	set := &fakeDriverSet{}
	ctrl := NewController(testBoard(t), &Options{}, []*Driver{set.driver(FormatGerber)}, nil)

	// Closing an idle controller is a no-op.
	if err := ctrl.ClosePlot(); err != nil {
		t.Fatalf("ClosePlot on idle controller: %v", err)
	}

	ctrl.SetLayer(board.BCu)
	if err := ctrl.OpenPlotfile(board.BCu.Suffix(), FormatGerber, ""); err != nil {
		t.Fatalf("OpenPlotfile: %v", err)
	}
	if err := ctrl.ClosePlot(); err != nil {
		t.Fatalf("first ClosePlot: %v", err)
	}
	if err := ctrl.ClosePlot(); err != nil {
		t.Fatalf("second ClosePlot: %v", err)
	}

	if p := set.last(t); p.ends != 1 {
		t.Errorf("EndPlot called %d times, want 1", p.ends)
	}
}

func TestPlotLayerWhileIdle(t *testing.T) {
	ctrl := NewController(testBoard(t), &Options{}, nil, nil)
	if ctrl.PlotLayer() {
		t.Error("PlotLayer = true on idle controller")
	}
}

func TestOpenWhileOpenClosesPrevious(t *testing.T) {
	set := &fakeDriverSet{}
	ctrl := NewController(testBoard(t), &Options{}, []*Driver{set.driver(FormatGerber)}, nil)
	defer ctrl.Close()

	ctrl.SetLayer(board.FCu)
	if err := ctrl.OpenPlotfile(board.FCu.Suffix(), FormatGerber, ""); err != nil {
		t.Fatalf("first OpenPlotfile: %v", err)
	}
	first := set.last(t)

	ctrl.SetLayer(board.BCu)
	if err := ctrl.OpenPlotfile(board.BCu.Suffix(), FormatGerber, ""); err != nil {
		t.Fatalf("second OpenPlotfile: %v", err)
	}

	if first.ends != 1 {
		t.Errorf("previous stream not finalized: ends = %d", first.ends)
	}
	if !ctrl.IsPlotOpen() {
		t.Error("controller idle after second open")
	}
	if len(set.plotters) != 2 {
		t.Fatalf("created %d plotters, want 2", len(set.plotters))
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	set := &fakeDriverSet{}
	opts := &Options{}
	ctrl := NewController(testBoard(t), opts, []*Driver{set.driver(FormatGerber)}, nil)

	err := ctrl.OpenPlotfile("F_Cu", FormatPDF, "")
	if err == nil {
		t.Fatal("OpenPlotfile succeeded with no matching driver")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeDriverNotFound {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeDriverNotFound)
	}
	if ctrl.IsPlotOpen() {
		t.Error("controller open after failed OpenPlotfile")
	}
	// The requested format is recorded even when the open fails.
	if opts.Format != FormatPDF {
		t.Errorf("options format = %q, want %q", opts.Format, FormatPDF)
	}
}

func TestOpenStartPlotFailure(t *testing.T) {
	set := &fakeDriverSet{startErr: fmt.Errorf("bad preamble")}
	ctrl := NewController(testBoard(t), &Options{}, []*Driver{set.driver(FormatGerber)}, nil)

	ctrl.SetLayer(board.FCu)
	err := ctrl.OpenPlotfile(board.FCu.Suffix(), FormatGerber, "")
	if err == nil {
		t.Fatal("OpenPlotfile succeeded despite StartPlot failure")
	}
	if code := errors.GetCode(err); code != errors.ErrCodePlotOpen {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodePlotOpen)
	}
	if ctrl.IsPlotOpen() {
		t.Error("controller open after StartPlot failure")
	}
	if err := ctrl.ClosePlot(); err != nil {
		t.Errorf("ClosePlot after failed open: %v", err)
	}
}

func TestColorModeForwarding(t *testing.T) {
	set := &fakeDriverSet{}
	ctrl := NewController(testBoard(t), &Options{ColorMode: true}, []*Driver{set.driver(FormatGerber)}, nil)
	defer ctrl.Close()

	// Idle: queries report false, updates are dropped.
	if ctrl.GetColorMode() {
		t.Error("GetColorMode = true while idle")
	}
	ctrl.SetColorMode(true)

	ctrl.SetLayer(board.FCu)
	if err := ctrl.OpenPlotfile(board.FCu.Suffix(), FormatGerber, ""); err != nil {
		t.Fatalf("OpenPlotfile: %v", err)
	}
	if !ctrl.GetColorMode() {
		t.Error("color mode not applied from options on open")
	}
	ctrl.SetColorMode(false)
	if ctrl.GetColorMode() {
		t.Error("SetColorMode(false) not forwarded")
	}
}

func TestConventionPinnedAndRestored(t *testing.T) {
	restoreConvention(t)
	display := Convention{Decimal: ',', Group: '.'}
	SetConvention(display)

	set := &fakeDriverSet{}
	ctrl := NewController(testBoard(t), &Options{}, []*Driver{set.driver(FormatGerber)}, nil)

	ctrl.SetLayer(board.FCu)
	if err := ctrl.OpenPlotfile(board.FCu.Suffix(), FormatGerber, ""); err != nil {
		t.Fatalf("OpenPlotfile: %v", err)
	}
	if err := ctrl.ClosePlot(); err != nil {
		t.Fatalf("ClosePlot: %v", err)
	}

	p := set.last(t)
	if len(p.startConv) != 1 || p.startConv[0] != CConvention {
		t.Errorf("StartPlot saw convention %+v, want CConvention", p.startConv)
	}

	data, err := os.ReadFile(ctrl.PlotFilePath())
	if err != nil {
		t.Fatalf("read plot file: %v", err)
	}
	if !strings.Contains(string(data), "start 1234.50") {
		t.Errorf("plot output not written with C numeric convention:\n%s", data)
	}

	if ActiveConvention() != display {
		t.Errorf("display convention not restored: %+v", ActiveConvention())
	}
}

func TestConventionRestoredOnFailedOpen(t *testing.T) {
	restoreConvention(t)
	display := Convention{Decimal: ','}
	SetConvention(display)

	set := &fakeDriverSet{startErr: fmt.Errorf("boom")}
	ctrl := NewController(testBoard(t), &Options{}, []*Driver{set.driver(FormatGerber)}, nil)

	if err := ctrl.OpenPlotfile("F_Cu", FormatGerber, ""); err == nil {
		t.Fatal("expected OpenPlotfile to fail")
	}
	if ActiveConvention() != display {
		t.Errorf("display convention not restored after failure: %+v", ActiveConvention())
	}
}

func TestOutputDirResolution(t *testing.T) {
	set := &fakeDriverSet{}
	b := testBoard(t)

	t.Run("relative to board dir", func(t *testing.T) {
		ctrl := NewController(b, &Options{OutputDir: "fab"}, []*Driver{set.driver(FormatGerber)}, nil)
		defer ctrl.Close()

		ctrl.SetLayer(board.FCu)
		if err := ctrl.OpenPlotfile(board.FCu.Suffix(), FormatGerber, ""); err != nil {
			t.Fatalf("OpenPlotfile: %v", err)
		}
		want := filepath.Join(b.Dir(), "fab", "demo-F_Cu.gbr")
		if ctrl.PlotFilePath() != want {
			t.Errorf("PlotFilePath() = %q, want %q", ctrl.PlotFilePath(), want)
		}
	})

	t.Run("absolute kept", func(t *testing.T) {
		abs := t.TempDir()
		ctrl := NewController(b, &Options{OutputDir: abs}, []*Driver{set.driver(FormatGerber)}, nil)
		defer ctrl.Close()

		ctrl.SetLayer(board.BCu)
		if err := ctrl.OpenPlotfile(board.BCu.Suffix(), FormatGerber, ""); err != nil {
			t.Fatalf("OpenPlotfile: %v", err)
		}
		want := filepath.Join(abs, "demo-B_Cu.gbr")
		if ctrl.PlotFilePath() != want {
			t.Errorf("PlotFilePath() = %q, want %q", ctrl.PlotFilePath(), want)
		}
	})
}

func TestLayerExtensionOverride(t *testing.T) {
	set := &fakeDriverSet{}
	b := testBoard(t)
	ctrl := NewController(b, &Options{ProtelExt: true}, []*Driver{set.driver(FormatGerber)}, nil)
	defer ctrl.Close()

	ctrl.SetLayer(board.FCu)
	if err := ctrl.OpenPlotfile(board.FCu.Suffix(), FormatGerber, ""); err != nil {
		t.Fatalf("OpenPlotfile: %v", err)
	}
	if got := filepath.Ext(ctrl.PlotFilePath()); got != ".gtl" {
		t.Errorf("extension = %q, want .gtl", got)
	}

	// Layers without an override keep the driver default.
	ctrl.SetLayer(board.BCu)
	if err := ctrl.OpenPlotfile(board.BCu.Suffix(), FormatGerber, ""); err != nil {
		t.Fatalf("OpenPlotfile: %v", err)
	}
	if got := filepath.Ext(ctrl.PlotFilePath()); got != ".gbr" {
		t.Errorf("extension = %q, want .gbr", got)
	}
}

// renderErr is a Renderer that always fails.
type renderErr struct{}

func (renderErr) PlotBoardLayer(*board.Board, Plotter, board.Layer, *Options) error {
	return fmt.Errorf("no geometry")
}

func TestPlotLayerRendererFailure(t *testing.T) {
	set := &fakeDriverSet{}
	ctrl := NewController(testBoard(t), &Options{}, []*Driver{set.driver(FormatGerber)}, renderErr{})
	defer ctrl.Close()

	ctrl.SetLayer(board.FCu)
	if err := ctrl.OpenPlotfile(board.FCu.Suffix(), FormatGerber, ""); err != nil {
		t.Fatalf("OpenPlotfile: %v", err)
	}
	if ctrl.PlotLayer() {
		t.Error("PlotLayer = true although the renderer failed")
	}
	// The stream stays open; the caller decides what to do.
	if !ctrl.IsPlotOpen() {
		t.Error("renderer failure closed the stream")
	}
}
