package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/plot"
	"github.com/boardplot/boardplot/pkg/plot/drivers"
	"github.com/boardplot/boardplot/pkg/project"
)

// plotOpts holds the command-line flags for the plot command. An empty
// string or unset flag leaves the project file's value in effect.
type plotOpts struct {
	format      string // output format override
	outputDir   string // output directory override
	layers      string // comma-separated layer name override
	x1Compat    bool   // downgrade X2 attributes to X1 comments
	protel      bool   // legacy Protel file extensions
	jobFile     bool   // write a Gerber job file
	interactive bool   // pick layers with the terminal picker
}

// plotCommand creates the plot command for producing fabrication outputs.
func (c *CLI) plotCommand() *cobra.Command {
	opts := plotOpts{}

	cmd := &cobra.Command{
		Use:   "plot [project.toml]",
		Short: "Plot board layers to fabrication output files",
		Long: `Plot board layers to fabrication output files.

Reads a boardplot project file describing the board and plot options,
then produces one output file per layer. Flags override the project
file's plot section. With --interactive, a terminal picker selects the
layer set, preselecting the layers the project names.`,
		Example: `  # Plot the project's layer set
  boardplot plot demo/boardplot.toml

  # Gerber with Protel extensions and a job file
  boardplot plot demo/boardplot.toml -f gerber --protel --job-file

  # Only the outer copper layers, as SVG
  boardplot plot demo/boardplot.toml -f svg --layers F.Cu,B.Cu`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}
			return c.runPlot(cmd.Context(), path, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: gerber, pdf, dxf, hpgl, ps, svg")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory (relative to the board file)")
	cmd.Flags().StringVar(&opts.layers, "layers", "", "comma-separated layer names (e.g. F.Cu,B.Cu,Edge.Cuts)")
	cmd.Flags().BoolVar(&opts.x1Compat, "x1", false, "write X2 attributes as X1-compatible comments")
	cmd.Flags().BoolVar(&opts.protel, "protel", false, "use legacy Protel file extensions for Gerber")
	cmd.Flags().BoolVar(&opts.jobFile, "job-file", false, "write a Gerber job file for the plot set")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick layers interactively")

	return cmd
}

// runPlot loads the project, applies flag overrides, and plots the layer
// set through the batch runner.
func (c *CLI) runPlot(ctx context.Context, path string, opts *plotOpts) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded project",
		"project", proj.Path,
		"board", proj.Board.FileName,
		"copper", proj.Board.CopperLayerCount)

	layers, err := applyPlotFlags(proj, opts)
	if err != nil {
		return err
	}

	if opts.interactive {
		layers, err = pickLayers(ctx, proj.Board.CopperLayerCount, layers)
		if err != nil {
			return err
		}
		if len(layers) == 0 {
			printWarning("No layers selected")
			return nil
		}
	}

	prog := newProgress(c.Logger)
	runner := drivers.NewRunner(proj.Board, &proj.Options, c.Logger)

	result, err := runner.Run(ctx, layers)
	if result != nil {
		for _, f := range result.Files {
			printFile(f.Path)
		}
		if result.JobFilePath != "" {
			printFile(result.JobFilePath)
		}
	}
	if err != nil {
		printError("Plot failed: %s", err)
		return err
	}

	prog.done(fmt.Sprintf("Plotted %d layers", result.Stats.Layers))
	fileCount := len(result.Files)
	if result.JobFilePath != "" {
		fileCount++
	}
	printRunStats(fileCount, result.Stats.Duration, false)
	return nil
}

// applyPlotFlags folds flag overrides into the loaded project and returns
// the effective layer set. Boolean flags only switch features on; the
// project file remains the way to switch them off.
func applyPlotFlags(proj *project.Project, opts *plotOpts) ([]board.Layer, error) {
	if opts.format != "" {
		format, err := plot.ParseFormat(opts.format)
		if err != nil {
			return nil, err
		}
		proj.Options.Format = format
	}
	if opts.outputDir != "" {
		proj.Options.OutputDir = opts.outputDir
	}
	if opts.x1Compat {
		proj.Options.X1Compat = true
	}
	if opts.protel {
		proj.Options.ProtelExt = true
	}
	if opts.jobFile {
		proj.Options.CreateJobFile = true
	}

	layers := proj.Layers
	if opts.layers != "" {
		names := parseLayerNames(opts.layers)
		layers = make([]board.Layer, 0, len(names))
		for _, name := range names {
			l, err := board.ParseLayer(name)
			if err != nil {
				return nil, err
			}
			layers = append(layers, l)
		}
	}
	return layers, nil
}

// pickLayers runs the terminal layer picker and returns the confirmed
// selection. A quit without confirmation returns the initial selection
// unchanged.
func pickLayers(ctx context.Context, copperCount int, preselected []board.Layer) ([]board.Layer, error) {
	model := NewLayerPickerModel(board.Layers(copperCount), preselected)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("layer picker: %w", err)
	}

	picker, ok := final.(LayerPickerModel)
	if !ok || !picker.Confirmed {
		return preselected, nil
	}
	return picker.Selection(), nil
}
