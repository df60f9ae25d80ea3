// Package board defines the board model shared by all plot drivers: layer
// identifiers, coordinates in nanometers, and the metadata carried into
// plot-file headers (title block, auxiliary origin, page size).
package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Layer identifies a single board layer. Copper layers occupy 0..31 with
// front copper first and back copper last; technical layers follow.
type Layer int

const (
	FCu Layer = iota
	In1Cu
	In2Cu
	In3Cu
	In4Cu
	In5Cu
	In6Cu
	In7Cu
	In8Cu
	In9Cu
	In10Cu
	In11Cu
	In12Cu
	In13Cu
	In14Cu
	In15Cu
	In16Cu
	In17Cu
	In18Cu
	In19Cu
	In20Cu
	In21Cu
	In22Cu
	In23Cu
	In24Cu
	In25Cu
	In26Cu
	In27Cu
	In28Cu
	In29Cu
	In30Cu
	BCu

	BAdhes
	FAdhes
	BPaste
	FPaste
	BSilkS
	FSilkS
	BMask
	FMask
	DwgsUser
	CmtsUser
	Eco1User
	Eco2User
	EdgeCuts
	Margin
	BCrtYd
	FCrtYd
	BFab
	FFab

	// LayerCount bounds the valid layer range.
	LayerCount
)

// UndefinedLayer is the zero-information layer value.
const UndefinedLayer Layer = -1

var technicalNames = [...]string{
	"B.Adhes", "F.Adhes", "B.Paste", "F.Paste", "B.SilkS", "F.SilkS",
	"B.Mask", "F.Mask", "Dwgs.User", "Cmts.User", "Eco1.User", "Eco2.User",
	"Edge.Cuts", "Margin", "B.CrtYd", "F.CrtYd", "B.Fab", "F.Fab",
}

// String returns the canonical dotted layer name, e.g. "F.Cu" or "In3.Cu".
func (l Layer) String() string {
	switch {
	case l == FCu:
		return "F.Cu"
	case l == BCu:
		return "B.Cu"
	case l > FCu && l < BCu:
		return "In" + strconv.Itoa(int(l)) + ".Cu"
	case l >= BAdhes && l <= FFab:
		return technicalNames[l-BAdhes]
	default:
		return "Layer(" + strconv.Itoa(int(l)) + ")"
	}
}

// Suffix returns the filename-safe layer name with dots replaced by
// underscores, e.g. "F_Cu".
func (l Layer) Suffix() string {
	return strings.ReplaceAll(l.String(), ".", "_")
}

// IsCopper reports whether the layer is a copper layer.
func (l Layer) IsCopper() bool {
	return l >= FCu && l <= BCu
}

// IsInnerCopper reports whether the layer is an internal copper layer.
func (l Layer) IsInnerCopper() bool {
	return l > FCu && l < BCu
}

// IsValid reports whether the layer identifies a real board layer.
func (l Layer) IsValid() bool {
	return l >= FCu && l < LayerCount
}

var layersByName = func() map[string]Layer {
	m := make(map[string]Layer, LayerCount)
	for l := FCu; l < LayerCount; l++ {
		m[l.String()] = l
	}
	return m
}()

// ParseLayer resolves a layer from its canonical name. Both the dotted form
// ("F.Cu") and the filename form ("F_Cu") are accepted.
func ParseLayer(name string) (Layer, error) {
	l, ok := layersByName[strings.ReplaceAll(name, "_", ".")]
	if !ok {
		return UndefinedLayer, fmt.Errorf("unknown layer %q", name)
	}
	return l, nil
}

// InnerCopper returns the n-th internal copper layer. n counts from 1
// directly below the front copper layer; values outside 1..30 yield
// UndefinedLayer.
func InnerCopper(n int) Layer {
	if n < 1 || n > int(BCu-In1Cu) {
		return UndefinedLayer
	}
	return Layer(n)
}

// CopperLayers returns the copper layers of a board with the given copper
// count, ordered front to back. Counts below 2 are treated as 2.
func CopperLayers(count int) []Layer {
	if count < 2 {
		count = 2
	}
	layers := make([]Layer, 0, count)
	layers = append(layers, FCu)
	for n := 1; n <= count-2 && n <= int(BCu-In1Cu); n++ {
		layers = append(layers, Layer(n))
	}
	return append(layers, BCu)
}

// Layers returns every plottable layer of a board with the given copper
// count: copper front to back, then the technical layers in identifier
// order.
func Layers(copperCount int) []Layer {
	layers := CopperLayers(copperCount)
	for l := BAdhes; l < LayerCount; l++ {
		layers = append(layers, l)
	}
	return layers
}
