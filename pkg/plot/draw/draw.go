// Package draw implements the vector output drivers: SVG, PostScript,
// PDF, DXF and HPGL. Each plotter writes the format framing for one layer
// file; header lines queued before StartPlot are embedded as native
// comments so file provenance survives format conversion.
package draw

import (
	"math"
	"strings"
)

// pointsPerMM converts millimeters to PostScript points.
const pointsPerMM = 72.0 / 25.4

// mmToPoints returns the smallest whole point count covering the given
// length, the rounding direction bounding boxes need.
func mmToPoints(mm float64) int {
	return int(math.Ceil(mm * pointsPerMM))
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// xmlEscape makes a string safe for element content.
func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}
