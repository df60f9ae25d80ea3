package plot

import (
	"path/filepath"
	"strings"
)

// plotFileForbidden is the character set replaced in filename suffixes. It
// matches the strictest host filesystem so generated names stay portable,
// plus '%', which some plot-file readers treat specially.
const plotFileForbidden = `*?|/\:"<>%`

// BuildPlotFileName assembles the output path for one plot file. The suffix
// is trimmed of surrounding whitespace and sanitized, never rejected: every
// forbidden character becomes an underscore. A non-empty sanitized suffix is
// appended to the base name with a dash separator.
func BuildPlotFileName(outputDir, baseName, suffix, ext string) string {
	s := strings.TrimSpace(suffix)
	if s != "" {
		var sb strings.Builder
		for _, r := range s {
			if strings.ContainsRune(plotFileForbidden, r) {
				sb.WriteByte('_')
			} else {
				sb.WriteRune(r)
			}
		}
		baseName = baseName + "-" + sb.String()
	}
	return filepath.Join(outputDir, baseName+"."+ext)
}
