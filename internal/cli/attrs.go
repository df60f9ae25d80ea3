package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/plot/gerber"
	"github.com/boardplot/boardplot/pkg/project"
)

// attrsCommand creates the attrs command printing the Gerber X2
// attribute lines a layer's plot file would carry (debug tool).
func (c *CLI) attrsCommand() *cobra.Command {
	var layerName string
	var x1Compat bool

	cmd := &cobra.Command{
		Use:   "attrs [project.toml]",
		Short: "Show the Gerber X2 attributes for a layer (debug tool)",
		Long: `Show the Gerber X2 attributes for a layer.

Prints the exact header lines the Gerber driver would write for the
given layer of the project's board: generation software, creation date,
project identity, coordinate registration, file function, and polarity.
The creation date reflects the current wall clock.`,
		Example: `  # Attributes of the front copper file
  boardplot attrs demo/boardplot.toml --layer F.Cu

  # X1-compatible comment form
  boardplot attrs demo/boardplot.toml --layer B.Mask --x1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}

			layer, err := board.ParseLayer(layerName)
			if err != nil {
				return err
			}

			proj, err := project.Load(path)
			if err != nil {
				return err
			}
			if x1Compat {
				proj.Options.X1Compat = true
			}

			for _, line := range gerber.Attributes(proj.Board, &proj.Options, layer) {
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&layerName, "layer", "F.Cu", "layer name (e.g. F.Cu, In1.Cu, B.Mask)")
	cmd.Flags().BoolVar(&x1Compat, "x1", false, "print X1-compatible comment form")

	return cmd
}
