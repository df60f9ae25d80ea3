// Package stackup renders board layer stackup diagrams. The stack is
// derived from the copper layer count: outer technical layers, copper
// layers, and the dielectric between them, drawn top to bottom the way a
// fabrication cross-section is read.
package stackup

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/boardplot/boardplot/pkg/board"
)

// Standard build assumptions for thickness annotations.
const (
	boardThicknessMM = 1.6
	copperFoilMM     = 0.035
)

// Options configures stackup rendering.
type Options struct {
	// Detailed includes copper layer numbers and per-row thickness in
	// node labels. When false, only the layer name is shown.
	Detailed bool
}

type row struct {
	id    string
	label string
	attrs string
}

// ToDOT converts a board's layer stack to Graphviz DOT. The resulting
// string can be rendered with [RenderSVG] or [RenderPNG]. Copper rows are
// gold, soldermask green, dielectric grey; rank order is forced with
// invisible edges so the stack reads top to bottom.
func ToDOT(b *board.Board, opts Options) string {
	rows := buildRows(b.CopperLayerCount, opts.Detailed)

	var buf bytes.Buffer
	buf.WriteString("digraph stackup {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=filled, width=4, fontsize=16, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [style=invis];\n")
	buf.WriteString("  ranksep=0.08;\n")
	buf.WriteString("\n")

	for _, r := range rows {
		fmt.Fprintf(&buf, "  %q [label=%q, %s];\n", r.id, r.label, r.attrs)
	}

	buf.WriteString("\n")
	for i := 0; i+1 < len(rows); i++ {
		fmt.Fprintf(&buf, "  %q -> %q;\n", rows[i].id, rows[i+1].id)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func buildRows(copperCount int, detailed bool) []row {
	if copperCount < 2 {
		copperCount = 2
	}
	dielectricMM := (boardThicknessMM - float64(copperCount)*copperFoilMM) / float64(copperCount-1)

	rows := []row{
		silkRow(board.FSilkS),
		maskRow(board.FMask),
	}

	copper := board.CopperLayers(copperCount)
	for i, l := range copper {
		if i > 0 {
			rows = append(rows, dielectricRow(i, dielectricMM, detailed))
		}
		rows = append(rows, copperRow(l, i+1, detailed))
	}

	rows = append(rows,
		maskRow(board.BMask),
		silkRow(board.BSilkS),
	)
	return rows
}

func silkRow(l board.Layer) row {
	return row{
		id:    l.String(),
		label: l.String(),
		attrs: `fillcolor=white, fontcolor=black`,
	}
}

func maskRow(l board.Layer) row {
	return row{
		id:    l.String(),
		label: l.String(),
		attrs: `fillcolor="#2e7d32", fontcolor=white`,
	}
}

func copperRow(l board.Layer, number int, detailed bool) row {
	label := l.String()
	if detailed {
		label = fmt.Sprintf("%s\nL%d copper, %s mm", l, number, formatMM(copperFoilMM))
	}
	return row{
		id:    l.String(),
		label: label,
		attrs: `fillcolor="#c9a227", fontcolor=black`,
	}
}

func dielectricRow(index int, thicknessMM float64, detailed bool) row {
	label := "dielectric"
	if detailed {
		label = fmt.Sprintf("dielectric, %s mm", formatMM(thicknessMM))
	}
	return row{
		id:    fmt.Sprintf("diel%d", index),
		label: label,
		attrs: `fillcolor="#d9d9d9", fontcolor=black`,
	}
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// RenderSVG renders a DOT stackup to SVG using Graphviz. The returned SVG
// carries a normalized viewBox so it scales cleanly when embedded.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT stackup to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
