// Package gerber implements the Gerber output driver: X2 metadata
// attributes, the legacy Protel extension table, the deterministic project
// GUID, stream framing, and the job file describing a finished plot set.
package gerber

import (
	"fmt"
	"strings"
	"time"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/buildinfo"
	"github.com/boardplot/boardplot/pkg/plot"
)

// Generation software identification embedded in every output file.
const (
	genVendor      = "Boardplot"
	genApplication = "boardplot"
)

// creationDateLayout is ISO-8601 combined date-time with a colon-separated
// timezone offset, the form Gerber readers expect in TF.CreationDate.
const creationDateLayout = "2006-01-02T15:04:05-07:00"

// sanitizeField makes a user-supplied string safe for embedding in an
// attribute: comma is the field separator, so every comma becomes an
// underscore.
func sanitizeField(s string) string {
	return strings.ReplaceAll(s, ",", "_")
}

// fileFunctionValue maps a layer to the bare FileFunction value. Unknown
// layers deliberately fall through to a generic value so custom layers
// never break plot generation.
func fileFunctionValue(layer board.Layer, copperLayerCount int) string {
	switch layer {
	case board.FAdhes:
		return "Glue,Top"
	case board.BAdhes:
		return "Glue,Bot"
	case board.FSilkS:
		return "Legend,Top"
	case board.BSilkS:
		return "Legend,Bot"
	case board.FMask:
		return "Soldermask,Top"
	case board.BMask:
		return "Soldermask,Bot"
	case board.FPaste:
		return "Paste,Top"
	case board.BPaste:
		return "Paste,Bot"
	case board.EdgeCuts:
		return "Profile,NP"
	case board.DwgsUser:
		return "Drawing"
	case board.CmtsUser:
		return "Other,Comment"
	case board.Eco1User:
		return "Other,ECO1"
	case board.Eco2User:
		return "Other,ECO2"
	case board.BFab:
		return "Other,Fab,Bot"
	case board.FFab:
		return "Other,Fab,Top"
	case board.FCu:
		return "Copper,L1,Top"
	case board.BCu:
		return fmt.Sprintf("Copper,L%d,Bot", copperLayerCount)
	default:
		if layer.IsCopper() {
			return fmt.Sprintf("Copper,L%d,Inr", int(layer)+1)
		}
		return "Other,User"
	}
}

// FileFunction returns the TF.FileFunction attribute declaring what the
// layer file represents. Copper layers are numbered front to back with L1
// on top.
func FileFunction(layer board.Layer, copperLayerCount int) string {
	return fmt.Sprintf("%%TF.FileFunction,%s*%%", fileFunctionValue(layer, copperLayerCount))
}

// filePolarityValue maps a layer to its image polarity: "Positive" where
// drawn objects mean material present, "Negative" for mask layers where
// drawn objects mean openings, "" for layers without a defined polarity.
func filePolarityValue(layer board.Layer) string {
	switch layer {
	case board.FAdhes, board.BAdhes, board.FSilkS, board.BSilkS, board.FPaste, board.BPaste:
		return "Positive"
	case board.FMask, board.BMask:
		return "Negative"
	default:
		if layer.IsCopper() {
			return "Positive"
		}
		return ""
	}
}

// FilePolarity returns the TF.FilePolarity attribute for a layer, or ""
// for layers where the attribute is omitted entirely.
func FilePolarity(layer board.Layer) string {
	v := filePolarityValue(layer)
	if v == "" {
		return ""
	}
	return fmt.Sprintf("%%TF.FilePolarity,%s*%%", v)
}

// HeaderLines composes the identification attributes shared by every file
// of a plot set, in the fixed order readers expect: GenerationSoftware,
// CreationDate, ProjectId, SameCoordinates.
func HeaderLines(b *board.Board, opts *plot.Options) []string {
	return headerLines(b, opts, time.Now())
}

func headerLines(b *board.Board, opts *plot.Options, now time.Time) []string {
	lines := make([]string, 0, 4)

	lines = append(lines, fmt.Sprintf("%%TF.GenerationSoftware,%s,%s,%s*%%",
		genVendor, genApplication, buildinfo.Version))

	lines = append(lines, fmt.Sprintf("%%TF.CreationDate,%s*%%", now.Format(creationDateLayout)))

	name := sanitizeField(b.BaseName())
	guid := ProjectGUID(baseWithExt(b))
	rev := sanitizeField(b.Title.Revision)
	if rev == "" {
		rev = "rev?"
	}
	lines = append(lines, fmt.Sprintf("%%TF.ProjectId,%s,%s,%s*%%", name, guid, rev))

	// The registration key tells readers whether all files of the set
	// share one coordinate frame. An auxiliary origin shifts the frame,
	// so its offset becomes part of the key.
	sameCoord := "Original"
	if opts.UseAuxOrigin && b.AuxOrigin.X != 0 && b.AuxOrigin.Y != 0 {
		sameCoord = registrationKey(b.AuxOrigin)
	}
	lines = append(lines, fmt.Sprintf("%%TF.SameCoordinates,%s*%%", sameCoord))

	return lines
}

// registrationKey encodes an auxiliary origin as a coordinate-frame key.
// Coordinates are hashed as 32-bit words for compatibility with existing
// readers of the lowercase hex form.
func registrationKey(origin board.Point) string {
	return fmt.Sprintf("PX%xPY%x", uint32(origin.X), uint32(origin.Y))
}

// Attributes returns the complete X2 attribute set for one layer file:
// the common header lines plus FileFunction and, where defined,
// FilePolarity. With X1 compatibility enabled every line is rewritten into
// the structured-comment form.
func Attributes(b *board.Board, opts *plot.Options, layer board.Layer) []string {
	lines := HeaderLines(b, opts)
	lines = append(lines, FileFunction(layer, b.CopperLayerCount))
	if polarity := FilePolarity(layer); polarity != "" {
		lines = append(lines, polarity)
	}

	if opts.X1Compat {
		for i, line := range lines {
			lines[i] = ApplyX1Compatibility(line, true)
		}
	}
	return lines
}

// ApplyX1Compatibility downgrades an X2 attribute line for legacy readers:
// all percent characters are stripped and the structured-comment marker is
// prepended. With enabled false the line passes through unchanged.
func ApplyX1Compatibility(line string, enabled bool) string {
	if !enabled {
		return line
	}
	return "G04 #@! " + strings.ReplaceAll(line, "%", "")
}
