package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/boardplot/boardplot/pkg/cache"
	"github.com/boardplot/boardplot/pkg/project"
	"github.com/boardplot/boardplot/pkg/stackup"
)

// stackupCacheTTL bounds how long rendered stackup images are reused.
const stackupCacheTTL = 24 * time.Hour

// stackupCommand creates the stackup command rendering a board's layer
// stack as a diagram.
func (c *CLI) stackupCommand() *cobra.Command {
	var output string
	var detailed bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "stackup [project.toml]",
		Short: "Render the board layer stack as a diagram",
		Long: `Render the board layer stack as a diagram.

Builds the physical stacking order from the project's copper count and
renders it to SVG or PNG via Graphviz, or emits the raw DOT source.
The output format follows the output file extension. Rendered images
are cached locally for faster subsequent runs.`,
		Example: `  # SVG stackup diagram
  boardplot stackup demo/boardplot.toml -o stackup.svg

  # PNG with thickness annotations
  boardplot stackup demo/boardplot.toml -o stackup.png --detailed

  # Raw Graphviz source
  boardplot stackup demo/boardplot.toml -o stackup.dot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}
			if output == "" {
				return fmt.Errorf("missing required flag: --output")
			}
			return c.runStackup(cmd.Context(), path, output, detailed, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file: .svg, .png, or .dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include layer numbers and thickness annotations")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// runStackup renders the project's stackup to the output file.
func (c *CLI) runStackup(ctx context.Context, path, output string, detailed, noCache bool) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}

	format := strings.TrimPrefix(filepath.Ext(output), ".")

	var data []byte
	switch format {
	case "dot":
		data = []byte(stackup.ToDOT(proj.Board, stackup.Options{Detailed: detailed}))
	case "svg", "png":
		data, err = c.renderStackupCached(ctx, proj, format, detailed, noCache)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q (use .svg, .png, or .dot)", format)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Stackup generated")
	printFile(output)
	return nil
}

// renderStackupCached renders the stackup image, consulting the file
// cache first. Cache failures degrade to a fresh render.
func (c *CLI) renderStackupCached(ctx context.Context, proj *project.Project, format string, detailed, noCache bool) ([]byte, error) {
	store, err := newCache(noCache)
	if err != nil {
		store = cache.NewNullCache()
	}
	defer store.Close()

	keyer := cache.NewDefaultKeyer()
	key := keyer.StackupKey(cache.StackupKeyOpts{
		CopperCount: proj.Board.CopperLayerCount,
		Format:      format,
		Detailed:    detailed,
	})

	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		c.Logger.Debug("stackup cache hit", "key", key)
		return data, nil
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering stackup %s...", format))
	spinner.Start()

	dot := stackup.ToDOT(proj.Board, stackup.Options{Detailed: detailed})
	var data []byte
	if format == "svg" {
		data, err = stackup.RenderSVG(dot)
	} else {
		data, err = stackup.RenderPNG(dot)
	}
	if err != nil {
		spinner.StopWithError("Stackup rendering failed")
		return nil, err
	}
	spinner.Stop()

	if err := store.Set(ctx, key, data, stackupCacheTTL); err != nil {
		c.Logger.Debug("stackup cache store failed", "error", err)
	}
	return data, nil
}
