package gerber

import (
	"fmt"

	"github.com/boardplot/boardplot/pkg/board"
)

// ProtelExtension returns the legacy per-layer file extension used by
// toolchains that predate the unified .gbr convention. Inner copper
// layers are numbered g2 upward from the front; anything without a
// dedicated extension falls back to gbr.
func ProtelExtension(layer board.Layer) string {
	switch layer {
	case board.FCu:
		return "gtl"
	case board.BCu:
		return "gbl"
	case board.BAdhes:
		return "gba"
	case board.FAdhes:
		return "gta"
	case board.BPaste:
		return "gbp"
	case board.FPaste:
		return "gtp"
	case board.BSilkS:
		return "gbo"
	case board.FSilkS:
		return "gto"
	case board.BMask:
		return "gbs"
	case board.FMask:
		return "gts"
	case board.EdgeCuts:
		return "gm1"
	default:
		if layer.IsInnerCopper() {
			return fmt.Sprintf("g%d", int(layer)+1)
		}
		return "gbr"
	}
}
