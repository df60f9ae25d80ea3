package gerber

import (
	"encoding/json"
	"io"
	"path/filepath"
	"time"

	"github.com/boardplot/boardplot/pkg/board"
	"github.com/boardplot/boardplot/pkg/buildinfo"
	"github.com/boardplot/boardplot/pkg/plot"
)

// JobWriter emits the Gerber job file, a JSON sidecar that describes a
// finished plot set: which files exist, what each represents, and the
// project identity shared by all of them. Field names follow the job
// format specification, hence the non-Go capitalization in the tags.
type JobWriter struct{}

// NewJobWriter returns a JobWriter.
func NewJobWriter() *JobWriter {
	return &JobWriter{}
}

// Path returns the job file location for a plot set: the board base name
// with a "-job.gbrjob" suffix, alongside the layer files.
func (JobWriter) Path(outputDir, baseName string) string {
	return filepath.Join(outputDir, baseName+"-job.gbrjob")
}

// Write encodes the job description for the given plot set. File paths
// are stored relative to the job file so the set can be moved as a unit.
func (JobWriter) Write(w io.Writer, b *board.Board, opts *plot.Options, files []plot.FileInfo) error {
	rev := sanitizeField(b.Title.Revision)
	if rev == "" {
		rev = "rev?"
	}

	spec := jobSpec{
		Header: jobHeader{
			GenerationSoftware: jobSoftware{
				Vendor:      genVendor,
				Application: genApplication,
				Version:     buildinfo.Version,
			},
			CreationDate: time.Now().Format(creationDateLayout),
		},
		GeneralSpecs: jobGeneralSpecs{
			ProjectID: jobProjectID{
				Name:     sanitizeField(b.BaseName()),
				GUID:     ProjectGUID(baseWithExt(b)),
				Revision: rev,
			},
			LayerNumber: b.CopperLayerCount,
		},
	}

	for _, f := range files {
		spec.FilesAttributes = append(spec.FilesAttributes, jobFile{
			Path:         filepath.Base(f.Path),
			FileFunction: fileFunctionValue(f.Layer, b.CopperLayerCount),
			FilePolarity: filePolarityValue(f.Layer),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(spec)
}

type jobSpec struct {
	Header          jobHeader       `json:"Header"`
	GeneralSpecs    jobGeneralSpecs `json:"GeneralSpecs"`
	FilesAttributes []jobFile       `json:"FilesAttributes"`
}

type jobHeader struct {
	GenerationSoftware jobSoftware `json:"GenerationSoftware"`
	CreationDate       string      `json:"CreationDate"`
}

type jobSoftware struct {
	Vendor      string `json:"Vendor"`
	Application string `json:"Application"`
	Version     string `json:"Version"`
}

type jobGeneralSpecs struct {
	ProjectID   jobProjectID `json:"ProjectId"`
	LayerNumber int          `json:"LayerNumber"`
}

type jobProjectID struct {
	Name     string `json:"Name"`
	GUID     string `json:"GUID"`
	Revision string `json:"Revision"`
}

type jobFile struct {
	Path         string `json:"Path"`
	FileFunction string `json:"FileFunction"`
	FilePolarity string `json:"FilePolarity,omitempty"`
}
