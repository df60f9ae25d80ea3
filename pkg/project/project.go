// Package project loads plot project files. A project file is a small
// TOML document that names the board, its fabrication metadata, and the
// plot options to apply, so a plot run is reproducible from one file
// checked in next to the board.
package project

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/errors"
	"github.com/boardplot/boardplot/pkg/plot"
)

// DefaultFile is the project file name looked up when a directory is
// given instead of a file.
const DefaultFile = "boardplot.toml"

// Project is a loaded and validated project file.
type Project struct {
	// Path is the project file location, Dir its directory. Relative
	// paths inside the file resolve against Dir.
	Path string
	Dir  string

	Board   *board.Board
	Options plot.Options

	// Layers is the plot set, in file order, or the full layer set for
	// the board's copper count when the file names none.
	Layers []board.Layer
}

type fileSchema struct {
	Board boardSection `toml:"board"`
	Plot  plotSection  `toml:"plot"`
}

type boardSection struct {
	File         string    `toml:"file"`
	CopperLayers int       `toml:"copper_layers"`
	Title        string    `toml:"title"`
	Revision     string    `toml:"revision"`
	Company      string    `toml:"company"`
	Date         string    `toml:"date"`
	AuxOriginMM  []float64 `toml:"aux_origin_mm"`
	Page         string    `toml:"page"`
}

type plotSection struct {
	Format        string   `toml:"format"`
	OutputDir     string   `toml:"output_dir"`
	Color         bool     `toml:"color"`
	FrameRef      bool     `toml:"plot_frame_ref"`
	UseAuxOrigin  bool     `toml:"use_aux_origin"`
	ProtelExt     bool     `toml:"protel_extensions"`
	X1Compat      bool     `toml:"x1_compat"`
	CreateJobFile bool     `toml:"create_job_file"`
	HPGLPenSizeMM float64  `toml:"hpgl_pen_size_mm"`
	Sheet         string   `toml:"sheet"`
	Layers        []string `toml:"layers"`
}

// Load reads and validates a project file. A directory path is accepted
// and resolves to the default file name inside it. Unknown keys are
// rejected so typos surface instead of silently plotting with defaults.
//
// The board file itself is not required to exist yet; call CheckBoardFile
// before starting work that reads it.
func Load(path string) (*Project, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFile)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read project file %s", path)
	}

	var schema fileSchema
	meta, err := toml.Decode(string(raw), &schema)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "parse project file %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidProject, "unknown key %q in %s", undecoded[0].String(), path)
	}

	return build(path, &schema)
}

func build(path string, schema *fileSchema) (*Project, error) {
	dir := filepath.Dir(path)

	if schema.Board.File == "" {
		return nil, errors.New(errors.ErrCodeInvalidProject, "project %s names no board file", path)
	}
	boardFile := schema.Board.File
	if !filepath.IsAbs(boardFile) {
		boardFile = filepath.Join(dir, boardFile)
	}

	copper := schema.Board.CopperLayers
	if copper == 0 {
		copper = 2
	}
	if err := errors.ValidateCopperCount(copper); err != nil {
		return nil, err
	}

	b := &board.Board{
		FileName:         boardFile,
		CopperLayerCount: copper,
		Title: board.TitleBlock{
			Title:    schema.Board.Title,
			Date:     schema.Board.Date,
			Revision: schema.Board.Revision,
			Company:  schema.Board.Company,
		},
	}

	switch origin := schema.Board.AuxOriginMM; len(origin) {
	case 0:
	case 2:
		b.AuxOrigin = board.FromMM(origin[0], origin[1])
	default:
		return nil, errors.New(errors.ErrCodeInvalidProject, "aux_origin_mm needs [x, y], got %d values", len(origin))
	}

	opts := plot.Options{
		OutputDir:        schema.Plot.OutputDir,
		ColorMode:        schema.Plot.Color,
		PlotFrameRef:     schema.Plot.FrameRef,
		UseAuxOrigin:     schema.Plot.UseAuxOrigin,
		ProtelExt:        schema.Plot.ProtelExt,
		X1Compat:         schema.Plot.X1Compat,
		CreateJobFile:    schema.Plot.CreateJobFile,
		HPGLPenSizeMM:    schema.Plot.HPGLPenSizeMM,
		SheetDescription: schema.Plot.Sheet,
	}

	if schema.Plot.Format != "" {
		format, err := plot.ParseFormat(schema.Plot.Format)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "project plot format")
		}
		opts.Format = format
	}

	if schema.Board.Page != "" {
		page := plot.PageSetting(schema.Board.Page)
		if !plot.ValidPageSettings[page] {
			return nil, errors.New(errors.ErrCodeInvalidProject, "unknown page setting %q", schema.Board.Page)
		}
		opts.Page = page
	}

	layers, err := resolveLayers(schema.Plot.Layers, copper)
	if err != nil {
		return nil, err
	}

	return &Project{
		Path:    path,
		Dir:     dir,
		Board:   b,
		Options: opts,
		Layers:  layers,
	}, nil
}

func resolveLayers(names []string, copperCount int) ([]board.Layer, error) {
	if len(names) == 0 {
		return board.Layers(copperCount), nil
	}
	layers := make([]board.Layer, 0, len(names))
	for _, name := range names {
		l, err := board.ParseLayer(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayer, err, "project layer list")
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// CheckBoardFile verifies the board file exists and is a regular file.
func (p *Project) CheckBoardFile() error {
	info, err := os.Stat(p.Board.FileName)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "board file %s", p.Board.FileName)
	}
	if info.IsDir() {
		return errors.New(errors.ErrCodeInvalidPath, "board file %s is a directory", p.Board.FileName)
	}
	return nil
}
