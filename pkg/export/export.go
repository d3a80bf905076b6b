// Package export writes classified voxel grids to files: STL and GLB
// meshes of the intersecting cells, the labeled vertex lattice as a PCD
// point cloud, and an occupancy report in JSON or YAML.
package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/voxel"
)

const (
	// ErrTypeUnknownFormat marks an output format name that is not supported.
	ErrTypeUnknownFormat = "export_unknown_format"

	// ErrTypeUnclassified marks a grid that has not been classified yet.
	ErrTypeUnclassified = "export_unclassified_grid"

	// ErrTypeWrite marks a failure to create or write an output file.
	ErrTypeWrite = "export_write_failed"
)

// Format is an output file format.
type Format string

const (
	FormatSTL  Format = "stl"
	FormatGLB  Format = "glb"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPCD  Format = "pcd"
)

// Formats lists the supported formats.
var Formats = []Format{FormatSTL, FormatGLB, FormatJSON, FormatYAML, FormatPCD}

// ParseFormats parses a comma separated list of format names. Names are
// case insensitive and duplicates are dropped.
func ParseFormats(s string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)

	for _, name := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		switch f {
		case "":
			continue
		case FormatSTL, FormatGLB, FormatJSON, FormatYAML, FormatPCD:
		case "yml":
			f = FormatYAML
		default:
			return nil, errors.Newf("unknown output format %q", name).
				WithType(ErrTypeUnknownFormat).
				WithTag("supported", Formats)
		}

		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// Write saves g in every format into dir, one file per format named after
// the solid. It returns the paths it wrote.
func Write(dir, name string, g *voxel.Grid, formats []Format) ([]string, error) {
	if !g.Classified() {
		return nil, errors.Newf("grid of %q is not classified", name).WithType(ErrTypeUnclassified)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New("creating output directory failed").
			WithType(ErrTypeWrite).
			WithTag("dir", dir).
			Wrap(err)
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := filepath.Join(dir, FileName(name)+"."+string(f))

		var err error
		switch f {
		case FormatSTL:
			err = SaveSTL(path, g)
		case FormatGLB:
			err = SaveGLB(path, name, g)
		case FormatJSON, FormatYAML:
			err = SaveReport(path, f, NewReport(name, g))
		case FormatPCD:
			err = SavePCD(path, g)
		default:
			err = errors.Newf("unknown output format %q", f).WithType(ErrTypeUnknownFormat)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName turns a solid name into a safe file name.
func FileName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)

	if strings.Trim(safe, "._") == "" {
		return "solid"
	}
	return safe
}

// create opens path for writing and returns a write typed error on failure.
func create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.New("creating output file failed").
			WithType(ErrTypeWrite).
			WithTag("path", path).
			Wrap(err)
	}
	return f, nil
}

// closeFile closes f, keeping the first error.
func closeFile(f *os.File, err error) error {
	if cerr := f.Close(); cerr != nil && err == nil {
		return errors.New("closing output file failed").
			WithType(ErrTypeWrite).
			WithTag("path", f.Name()).
			Wrap(cerr)
	}
	return err
}
