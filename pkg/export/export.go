package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/lattice"
)

// Points lists the sites of l in output order: water first, then anions,
// then cations, each group in ascending site order.
func Points(l *lattice.Lattice, opts Options) ([]Point, error) {
	opts = opts.withDefaults()
	g := l.Graph
	if len(l.Positions) != g.NumSites() {
		return nil, fmt.Errorf("%d positions for %d sites", len(l.Positions), g.NumSites())
	}

	points := make([]Point, 0, g.NumSites())
	for _, group := range []struct {
		kind    bondgraph.SiteKind
		element string
	}{
		{bondgraph.Water, opts.Water},
		{bondgraph.Anion, opts.Anion},
		{bondgraph.Cation, opts.Cation},
	} {
		for _, site := range g.SitesOfKind(group.kind) {
			points = append(points, Point{
				Site:    site,
				Kind:    group.kind.String(),
				Element: group.element,
				Pos:     l.Cartesian(site),
			})
		}
	}
	if len(points) != g.NumSites() {
		return nil, fmt.Errorf("%d of %d sites are unclassified", g.NumSites()-len(points), g.NumSites())
	}
	return points, nil
}

// Write renders l in format.
func Write(w io.Writer, format string, l *lattice.Lattice, opts Options) error {
	switch format {
	case FormatXYZ:
		return WriteXYZ(w, l, opts)
	case FormatMDView:
		return WriteMDView(w, l, opts)
	case FormatJSON:
		return WriteJSON(w, l, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteXYZ writes the standard XYZ layout in angstrom.
func WriteXYZ(w io.Writer, l *lattice.Lattice, opts Options) error {
	points, err := Points(l, opts)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%s\n", len(points), opts.Comment)
	for _, p := range points {
		fmt.Fprintf(bw, "%s %.4f %.4f %.4f\n", p.Element, p.Pos[0], p.Pos[1], p.Pos[2])
	}
	return bw.Flush()
}

// WriteMDView writes a count line followed by positions in atomic units.
func WriteMDView(w io.Writer, l *lattice.Lattice, opts Options) error {
	points, err := Points(l, opts)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(points))
	for _, p := range points {
		fmt.Fprintf(bw, "%s %.2f %.2f %.2f\n", p.Element, p.Pos[0]/bohr, p.Pos[1]/bohr, p.Pos[2]/bohr)
	}
	return bw.Flush()
}

// WriteJSON writes the points together with the oriented bonds.
func WriteJSON(w io.Writer, l *lattice.Lattice, opts Options) error {
	points, err := Points(l, opts)
	if err != nil {
		return err
	}

	type cloud struct {
		Kind   string           `json:"lattice,omitempty"`
		Cell   [3][3]float64    `json:"cell"`
		Points []Point          `json:"points"`
		Bonds  []bondgraph.Bond `json:"bonds"`
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cloud{
		Kind:   l.Kind,
		Cell:   l.Cell,
		Points: points,
		Bonds:  l.Graph.Bonds(),
	})
}
