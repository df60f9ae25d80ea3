package board

import (
	"math"
	"path/filepath"
	"strings"
)

// NanometersPerMillimeter is the internal coordinate resolution.
const NanometersPerMillimeter = 1_000_000

// Point is a board position in nanometers.
type Point struct {
	X int
	Y int
}

// FromMM converts millimeter coordinates to a Point.
func FromMM(x, y float64) Point {
	return Point{
		X: int(math.Round(x * NanometersPerMillimeter)),
		Y: int(math.Round(y * NanometersPerMillimeter)),
	}
}

// MM returns the point coordinates in millimeters.
func (p Point) MM() (x, y float64) {
	return float64(p.X) / NanometersPerMillimeter, float64(p.Y) / NanometersPerMillimeter
}

// IsZero reports whether the point is the origin.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// TitleBlock carries the sheet metadata written into plot-file headers.
type TitleBlock struct {
	Title    string
	Date     string
	Revision string
	Company  string
}

// PageSize is a plot sheet size in millimeters, landscape orientation.
type PageSize struct {
	WidthMM  float64
	HeightMM float64
}

// Standard plot sheet sizes.
var (
	PageA4    = PageSize{WidthMM: 297, HeightMM: 210}
	PageANSIA = PageSize{WidthMM: 279.4, HeightMM: 215.9}
)

// IsZero reports whether the page size is unset.
func (p PageSize) IsZero() bool {
	return p.WidthMM == 0 && p.HeightMM == 0
}

// Board is the plottable board model. Geometry stays with the embedding
// application; plotting needs only the identification metadata below.
type Board struct {
	// FileName is the board file path. Plot output paths and the project
	// identification attributes derive from it.
	FileName string

	// CopperLayerCount is the number of copper layers, front and back
	// included. Always even on a real board.
	CopperLayerCount int

	Title     TitleBlock
	AuxOrigin Point
	Page      PageSize
}

// BaseName returns the board file name without directory and extension.
func (b *Board) BaseName() string {
	base := filepath.Base(b.FileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Dir returns the directory of the board file.
func (b *Board) Dir() string {
	return filepath.Dir(b.FileName)
}
