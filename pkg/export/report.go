package export

import (
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/voxel"
	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"
)

// Report describes the occupancy of a voxel grid.
type Report struct {
	Name  string       `json:"name" yaml:"name"`
	Stats voxel.Stats  `json:"stats" yaml:"stats"`
	Cells []voxel.Cell `json:"intersecting" yaml:"intersecting"`
}

// NewReport summarizes g and lists its intersecting cells in x-major order.
func NewReport(name string, g *voxel.Grid) Report {
	cells := g.Intersecting()
	if cells == nil {
		cells = []voxel.Cell{}
	}
	return Report{
		Name:  name,
		Stats: g.Stats(),
		Cells: cells,
	}
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.New("encoding json report failed").WithType(ErrTypeWrite).Wrap(err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return errors.New("writing json report failed").WithType(ErrTypeWrite).Wrap(err)
	}
	return nil
}

// WriteYAML encodes r as YAML.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.New("encoding yaml report failed").WithType(ErrTypeWrite).Wrap(err)
	}
	if err := enc.Close(); err != nil {
		return errors.New("encoding yaml report failed").WithType(ErrTypeWrite).Wrap(err)
	}
	return nil
}

// SaveReport writes r to path as JSON or YAML.
func SaveReport(path string, format Format, r Report) (err error) {
	var write func(io.Writer, Report) error
	switch format {
	case FormatJSON:
		write = WriteJSON
	case FormatYAML:
		write = WriteYAML
	default:
		return errors.Newf("format %q is not a report format", format).WithType(ErrTypeUnknownFormat)
	}

	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() { err = closeFile(f, err) }()

	return write(f, r)
}
