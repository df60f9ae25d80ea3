package plot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/errors"
	"github.com/boardplot/boardplot/pkg/observability"
)

// FileInfo describes one produced plot file.
type FileInfo struct {
	Layer board.Layer
	Path  string
	Size  int64
}

// Stats contains plot run statistics.
type Stats struct {
	Layers   int
	Duration time.Duration
}

// Result contains the outputs of a plot run.
type Result struct {
	// Files lists the produced plot files in plot order.
	Files []FileInfo

	// JobFilePath is the written job file, when one was requested.
	JobFilePath string

	// Stats contains timing information.
	Stats Stats
}

// JobFileWriter emits a job description covering a finished plot set.
// The Gerber driver package provides the canonical implementation.
type JobFileWriter interface {
	// Path returns the job file path for a plot set.
	Path(outputDir, baseName string) string

	// Write emits the job description for the produced files.
	Write(w io.Writer, b *board.Board, opts *Options, files []FileInfo) error
}

// Runner plots a whole layer set through one controller. Both CLI and API
// use this to avoid duplicating lifecycle logic.
//
// The Runner is stateless apart from its configuration - it does not store
// run results. A single Runner is not safe for concurrent use, but separate
// runners may run in parallel; each plots through its own controller.
type Runner struct {
	Board    *board.Board
	Options  *Options
	Drivers  []*Driver
	Renderer Renderer

	// JobFile, combined with Options.CreateJobFile, writes the job
	// description after a successful Gerber run. Optional.
	JobFile JobFileWriter

	Logger *log.Logger
}

// NewRunner creates a runner for a board. If logger is nil the default
// logger is used.
func NewRunner(b *board.Board, opts *Options, drivers []*Driver, logger *log.Logger) *Runner {
	if opts == nil {
		opts = &Options{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Board:   b,
		Options: opts,
		Drivers: drivers,
		Logger:  logger,
	}
}

// Run plots every requested layer in order, one file per layer. The first
// failure aborts the run; the returned result still lists every file
// produced before it, so partial runs stay inspectable.
func (r *Runner) Run(ctx context.Context, layers []board.Layer) (*Result, error) {
	if err := r.Options.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	result := &Result{}
	observability.Plot().OnRunStart(ctx, r.Options.Format.String(), len(layers))

	ctrl := NewController(r.Board, r.Options, r.Drivers, r.Renderer)
	defer ctrl.Close()

	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, result, start, err)
		}

		layerStart := time.Now()
		ctrl.SetLayer(layer)

		if err := ctrl.OpenPlotfile(layer.Suffix(), r.Options.Format, r.Options.SheetDescription); err != nil {
			return r.finish(ctx, result, start, fmt.Errorf("open plot for %s: %w", layer, err))
		}
		if !ctrl.PlotLayer() {
			err := errors.New(errors.ErrCodePlotLayer, "plot failed for layer %s", layer)
			return r.finish(ctx, result, start, err)
		}
		if err := ctrl.ClosePlot(); err != nil {
			return r.finish(ctx, result, start, fmt.Errorf("close plot for %s: %w", layer, err))
		}

		info := FileInfo{Layer: layer, Path: ctrl.PlotFilePath()}
		if st, err := os.Stat(info.Path); err == nil {
			info.Size = st.Size()
		}
		result.Files = append(result.Files, info)

		elapsed := time.Since(layerStart)
		observability.Plot().OnLayerPlotted(ctx, layer.String(), info.Path, info.Size, elapsed)
		r.Logger.Info("plotted layer",
			"layer", layer.String(),
			"file", filepath.Base(info.Path),
			"duration", elapsed)
	}

	if r.Options.CreateJobFile && r.Options.Format == FormatGerber && r.JobFile != nil {
		path, err := r.writeJobFile(result.Files)
		if err != nil {
			return r.finish(ctx, result, start, fmt.Errorf("write job file: %w", err))
		}
		result.JobFilePath = path
		r.Logger.Info("wrote job file", "file", filepath.Base(path))
	}

	return r.finish(ctx, result, start, nil)
}

func (r *Runner) finish(ctx context.Context, result *Result, start time.Time, err error) (*Result, error) {
	result.Stats.Layers = len(result.Files)
	result.Stats.Duration = time.Since(start)
	observability.Plot().OnRunComplete(ctx, r.Options.Format.String(), len(result.Files), result.Stats.Duration, err)
	return result, err
}

func (r *Runner) writeJobFile(files []FileInfo) (string, error) {
	dir := r.Options.ResolveOutputDir(r.Board)
	path := r.JobFile.Path(dir, r.Board.BaseName())

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	werr := r.JobFile.Write(f, r.Board, r.Options, files)
	cerr := f.Close()
	if werr != nil {
		return "", werr
	}
	if cerr != nil {
		return "", cerr
	}
	return path, nil
}
