package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/errors"
	"github.com/boardplot/boardplot/pkg/plot/gerber"
)

// layersCommand creates the layers command listing the plottable layer
// set for a copper count, with the Gerber metadata each layer gets.
func (c *CLI) layersCommand() *cobra.Command {
	var copperCount int

	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List plottable layers and their Gerber metadata",
		Long: `List plottable layers and their Gerber metadata.

Shows every layer plotted for a board with the given copper count: the
canonical name, the filename suffix, the legacy Protel extension, and
the Gerber X2 file function and polarity the layer would carry.`,
		Example: `  # Layer set of a 2-layer board
  boardplot layers

  # Layer set of a 6-layer board
  boardplot layers --copper 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateCopperCount(copperCount); err != nil {
				return err
			}
			fmt.Println(layerTable(copperCount))
			return nil
		},
	}

	cmd.Flags().IntVar(&copperCount, "copper", 2, "copper layer count (even, 2..32)")

	return cmd
}

// layerTable renders the layer listing for a copper count.
func layerTable(copperCount int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	copperStyle := lipgloss.NewStyle().Foreground(colorYellow)

	layers := board.Layers(copperCount)
	rows := make([][]string, 0, len(layers))
	for _, l := range layers {
		rows = append(rows, []string{
			fmt.Sprintf("%d", int(l)),
			l.String(),
			l.Suffix(),
			gerber.ProtelExtension(l),
			attributeValue(gerber.FileFunction(l, copperCount)),
			attributeValue(gerber.FilePolarity(l)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Layer", "Suffix", "Protel", "File function", "Polarity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(layers) && layers[row].IsCopper() {
				return copperStyle
			}
			return lipgloss.NewStyle()
		})

	return t.Render()
}

// attributeValue strips the %TF.<Key>, prefix and *% suffix from an X2
// attribute for compact display. Empty attributes display as a dash.
func attributeValue(attr string) string {
	if attr == "" {
		return "—"
	}
	attr = strings.TrimSuffix(attr, "*%")
	if i := strings.Index(attr, ","); i >= 0 {
		attr = attr[i+1:]
	}
	return attr
}
