package plot

import (
	"path/filepath"
	"testing"
)

func TestBuildPlotFileName(t *testing.T) {
	tests := []struct {
		name   string
		dir    string
		base   string
		suffix string
		ext    string
		want   string
	}{
		{
			name: "layer suffix",
			dir:  "out", base: "demo", suffix: "F_Cu", ext: "gbr",
			want: filepath.Join("out", "demo-F_Cu.gbr"),
		},
		{
			name: "empty suffix",
			dir:  "out", base: "demo", suffix: "", ext: "gbr",
			want: filepath.Join("out", "demo.gbr"),
		},
		{
			name: "whitespace only suffix",
			dir:  "out", base: "demo", suffix: "   ", ext: "pdf",
			want: filepath.Join("out", "demo.pdf"),
		},
		{
			name: "surrounding whitespace trimmed",
			dir:  "out", base: "demo", suffix: "  F_Cu\t", ext: "gbr",
			want: filepath.Join("out", "demo-F_Cu.gbr"),
		},
		{
			name: "path separators replaced",
			dir:  "out", base: "demo", suffix: "In1/Cu", ext: "gbr",
			want: filepath.Join("out", "demo-In1_Cu.gbr"),
		},
		{
			name: "drive and quote characters replaced",
			dir:  "out", base: "demo", suffix: `a:b"c`, ext: "gbr",
			want: filepath.Join("out", "demo-a_b_c.gbr"),
		},
		{
			name: "percent replaced",
			dir:  "out", base: "demo", suffix: "50%", ext: "gbr",
			want: filepath.Join("out", "demo-50_.gbr"),
		},
		{
			name: "suffix of only forbidden characters",
			dir:  "out", base: "demo", suffix: "///", ext: "gbr",
			want: filepath.Join("out", "demo-___.gbr"),
		},
		{
			name: "wildcards replaced",
			dir:  "out", base: "demo", suffix: "a*b?c|d", ext: "gbr",
			want: filepath.Join("out", "demo-a_b_c_d.gbr"),
		},
		{
			name: "no output dir",
			dir:  "", base: "demo", suffix: "B_Cu", ext: "gbr",
			want: "demo-B_Cu.gbr",
		},
		{
			name: "protel extension",
			dir:  "fab", base: "demo", suffix: "F_Cu", ext: "gtl",
			want: filepath.Join("fab", "demo-F_Cu.gtl"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPlotFileName(tt.dir, tt.base, tt.suffix, tt.ext)
			if got != tt.want {
				t.Errorf("BuildPlotFileName(%q, %q, %q, %q) = %q, want %q",
					tt.dir, tt.base, tt.suffix, tt.ext, got, tt.want)
			}
		})
	}
}

func TestBuildPlotFileNameIsPure(t *testing.T) {
	// Same inputs always give the same output.
	a := BuildPlotFileName("out", "demo", "F_Cu", "gbr")
	b := BuildPlotFileName("out", "demo", "F_Cu", "gbr")
	if a != b {
		t.Errorf("BuildPlotFileName not deterministic: %q vs %q", a, b)
	}
}
