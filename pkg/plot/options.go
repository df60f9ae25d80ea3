package plot

import (
	"path/filepath"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/errors"
)

// Default values shared by CLI, API, and library callers.
const (
	// DefaultHPGLPenSizeMM is the HPGL pen diameter applied when none is
	// configured.
	DefaultHPGLPenSizeMM = 0.5
)

// PageSetting selects the plot sheet size policy.
type PageSetting string

// Page size policies. PageAuto follows the board page; the fixed settings
// force a standard sheet regardless of the board.
const (
	PageAuto PageSetting = "auto"
	PageA4   PageSetting = "A4"
	PageA    PageSetting = "A"
)

// ValidPageSettings is the set of supported page policies.
var ValidPageSettings = map[PageSetting]bool{
	PageAuto: true,
	PageA4:   true,
	PageA:    true,
}

// Options contains all configuration for a plot run. A single Options value
// is shared by every file of a run; the controller records the format of the
// most recent open here so that consecutive opens without an explicit format
// change keep plotting the same way.
//
// This struct supports JSON serialization for API requests.
type Options struct {
	// Format is the output format. Updated by Controller.OpenPlotfile on
	// every successful open.
	Format Format `json:"format,omitempty"`

	// OutputDir receives the plot files. Relative paths are resolved
	// against the board file directory; empty means the board directory
	// itself.
	OutputDir string `json:"output_dir,omitempty"`

	// ColorMode selects color output where the format supports it.
	ColorMode bool `json:"color_mode,omitempty"`

	// PlotFrameRef draws the sheet frame reference.
	PlotFrameRef bool `json:"plot_frame_ref,omitempty"`

	// UseAuxOrigin plots coordinates relative to the auxiliary origin and
	// advertises the offset in the Gerber coordinate-registration
	// attribute.
	UseAuxOrigin bool `json:"use_aux_origin,omitempty"`

	// X1Compat downgrades Gerber X2 attributes to X1 comments for readers
	// that choke on the structured form.
	X1Compat bool `json:"x1_compat,omitempty"`

	// ProtelExt uses the legacy per-layer Protel file extensions for
	// Gerber output instead of .gbr.
	ProtelExt bool `json:"protel_ext,omitempty"`

	// CreateJobFile writes a Gerber job file describing the produced set.
	CreateJobFile bool `json:"create_job_file,omitempty"`

	// HPGLPenSizeMM is the HPGL pen diameter in millimeters.
	HPGLPenSizeMM float64 `json:"hpgl_pen_size_mm,omitempty"`

	// Page selects the sheet size policy.
	Page PageSetting `json:"page,omitempty"`

	// SheetDescription is carried into plot-file headers.
	SheetDescription string `json:"sheet,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Format == "" {
		o.Format = FormatGerber
	}
	if err := ValidateFormat(o.Format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "plot options")
	}

	if o.Page == "" {
		o.Page = PageAuto
	}
	if !ValidPageSettings[o.Page] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid page setting: %q (must be one of: auto, A4, A)", o.Page)
	}

	if o.HPGLPenSizeMM == 0 {
		o.HPGLPenSizeMM = DefaultHPGLPenSizeMM
	}
	if err := errors.ValidatePenSize(o.HPGLPenSizeMM); err != nil {
		return err
	}

	if o.OutputDir != "" {
		if err := errors.ValidateOutputDir(o.OutputDir); err != nil {
			return err
		}
	}

	o.validated = true
	return nil
}

// PageFor resolves the page policy against a board. PageAuto follows the
// board page and falls back to A4 when the board does not carry one.
func (o *Options) PageFor(b *board.Board) board.PageSize {
	switch o.Page {
	case PageA4:
		return board.PageA4
	case PageA:
		return board.PageANSIA
	default:
		if b != nil && !b.Page.IsZero() {
			return b.Page
		}
		return board.PageA4
	}
}

// ResolveOutputDir returns the absolute output directory for a board.
// Relative directories are anchored at the board file directory.
func (o *Options) ResolveOutputDir(b *board.Board) string {
	dir := o.OutputDir
	if dir == "" {
		return b.Dir()
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(b.Dir(), dir)
}
