package gerber

import (
	"fmt"
	"path/filepath"

	"github.com/boardplot/boardplot/pkg/board"
)

// guidFiller pads short names so the payload always spans 16 bytes.
const guidFiller = 'X'

// ProjectGUID derives the 36-character project identifier embedded in
// TF.ProjectId from a board file name. The value has RFC 4122 shape with a
// fixed version nibble '1' and variant nibble '9', but the payload is the
// name itself: the first 15 bytes, right-padded with 'X' when shorter.
// The same name always yields the same identifier, so regenerated plot
// sets stay byte-stable and downstream tools can correlate files across
// runs without a registry.
func ProjectGUID(name string) string {
	b := []byte(name)
	for len(b) < 16 {
		b = append(b, guidFiller)
	}

	version := (uint(b[6])<<4 | uint(b[7])>>4) & 0xFFF
	variant := (uint(b[7])&0x0F)<<8 | uint(b[8])

	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-1%03x-9%03x-%02x%02x%02x%02x%02x%02x",
		b[0], b[1], b[2], b[3],
		b[4], b[5],
		version,
		variant,
		b[9], b[10], b[11], b[12], b[13], b[14])
}

// baseWithExt returns the board file name without directories but with its
// extension, the form the project GUID is derived from.
func baseWithExt(b *board.Board) string {
	return filepath.Base(b.FileName)
}
