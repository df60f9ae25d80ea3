package plot

import (
	"fmt"
	"strings"
)

// Format identifies a plot output format.
type Format string

// Supported plot formats.
const (
	FormatGerber Format = "gerber"
	FormatPost   Format = "ps"
	FormatPDF    Format = "pdf"
	FormatSVG    Format = "svg"
	FormatDXF    Format = "dxf"
	FormatHPGL   Format = "hpgl"
)

// ValidFormats is the set of supported plot formats.
var ValidFormats = map[Format]bool{
	FormatGerber: true,
	FormatPost:   true,
	FormatPDF:    true,
	FormatSVG:    true,
	FormatDXF:    true,
	FormatHPGL:   true,
}

// Formats returns the supported formats in presentation order.
func Formats() []Format {
	return []Format{FormatGerber, FormatPost, FormatPDF, FormatSVG, FormatDXF, FormatHPGL}
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// DefaultExt returns the default file extension for the format, without the
// leading dot. Format-specific drivers may override this per layer.
func (f Format) DefaultExt() string {
	switch f {
	case FormatGerber:
		return "gbr"
	case FormatPost:
		return "ps"
	case FormatPDF:
		return "pdf"
	case FormatSVG:
		return "svg"
	case FormatDXF:
		return "dxf"
	case FormatHPGL:
		return "plt"
	default:
		return "plot"
	}
}

// ParseFormat resolves a format from its name. Matching is case-insensitive
// and accepts the common aliases "postscript" and "gbr".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "gerber", "gbr", "rs274x":
		return FormatGerber, nil
	case "ps", "post", "postscript":
		return FormatPost, nil
	case "pdf":
		return FormatPDF, nil
	case "svg":
		return FormatSVG, nil
	case "dxf":
		return FormatDXF, nil
	case "hpgl", "plt":
		return FormatHPGL, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be one of: gerber, ps, pdf, svg, dxf, hpgl)", name)
	}
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(f Format) error {
	if !ValidFormats[f] {
		return fmt.Errorf("invalid format: %q (must be one of: gerber, ps, pdf, svg, dxf, hpgl)", f)
	}
	return nil
}
