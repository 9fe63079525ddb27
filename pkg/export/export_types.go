// Package export writes a doped lattice as a point cloud: one point per site,
// labelled by its kind. No molecular geometry is generated.
package export

import (
	"errors"
)

// Output formats
const (
	FormatXYZ    = "xyz"
	FormatMDView = "mdview"
	FormatJSON   = "json"
)

// ErrUnknownFormat is returned by Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// bohr is one atomic length unit in angstrom, as mdview expects.
const bohr = 0.528

// Options controls element labels and the comment line.
type Options struct {
	Water   string // label for water sites (default "O")
	Anion   string // label for anion sites (default "F")
	Cation  string // label for cation sites (default "N")
	Comment string // second line of an XYZ file
}

// DefaultOptions labels water as O, anions as F and cations as N.
func DefaultOptions() Options {
	return Options{Water: "O", Anion: "F", Cation: "N"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Water == "" {
		o.Water = d.Water
	}
	if o.Anion == "" {
		o.Anion = d.Anion
	}
	if o.Cation == "" {
		o.Cation = d.Cation
	}
	return o
}

// Point is one exported site in angstrom.
type Point struct {
	Site    int        `json:"site"`
	Kind    string     `json:"kind"`
	Element string     `json:"element"`
	Pos     [3]float64 `json:"pos"`
}
