package lattice

import (
	"fmt"
	"math"

	"github.com/dd0wney/icedope/pkg/bondgraph"
)

// Cubic ice Ic lattice constant in angstrom.
const iceIcCell = 6.358

// diamondBasis lists the eight sites of the conventional cubic cell: an fcc
// sublattice A followed by the same shifted by (1/4, 1/4, 1/4).
var diamondBasis = [8][3]float64{
	{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0},
	{0.25, 0.25, 0.25}, {0.25, 0.75, 0.75}, {0.75, 0.25, 0.75}, {0.75, 0.75, 0.25},
}

// Tetrahedral bond vectors from an A site, in units of the cubic cell.
var diamondBonds = [4][3]float64{
	{0.25, 0.25, 0.25}, {0.25, -0.25, -0.25}, {-0.25, 0.25, -0.25}, {-0.25, -0.25, 0.25},
}

// Diamond builds cubic ice (the oxygen diamond lattice) from cells^3
// conventional cells with periodic boundaries. Bond directions come from an
// Eulerian orientation, so every site satisfies the water rule.
func Diamond(cells int) (*Lattice, error) {
	if cells < 1 {
		return nil, fmt.Errorf("diamond: cells=%d (must be >= 1): %w", cells, ErrTooSmall)
	}
	n := 8 * cells * cells * cells
	id := func(cx, cy, cz, b int) int {
		wrap := func(c int) int { return ((c % cells) + cells) % cells }
		return ((wrap(cz)*cells+wrap(cy))*cells+wrap(cx))*8 + b
	}

	pos := make([][3]float64, n)
	pairs := make([][2]int, 0, 2*n)
	for cz := 0; cz < cells; cz++ {
		for cy := 0; cy < cells; cy++ {
			for cx := 0; cx < cells; cx++ {
				for b, basis := range diamondBasis {
					pos[id(cx, cy, cz, b)] = [3]float64{
						(float64(cx) + basis[0]) / float64(cells),
						(float64(cy) + basis[1]) / float64(cells),
						(float64(cz) + basis[2]) / float64(cells),
					}
					if b >= 4 {
						continue
					}
					for _, d := range diamondBonds {
						target := [3]float64{basis[0] + d[0], basis[1] + d[1], basis[2] + d[2]}
						tb, shift, ok := locateB(target)
						if !ok {
							return nil, fmt.Errorf("diamond: bond from basis %d lands off the lattice", b)
						}
						pairs = append(pairs, [2]int{
							id(cx, cy, cz, b),
							id(cx+shift[0], cy+shift[1], cz+shift[2], tb),
						})
					}
				}
			}
		}
	}

	bonds, err := OrientEulerian(n, pairs)
	if err != nil {
		return nil, fmt.Errorf("diamond: %w", err)
	}
	g, err := bondgraph.FromBonds(n, bonds)
	if err != nil {
		return nil, fmt.Errorf("diamond: %w", err)
	}

	a := float64(cells) * iceIcCell
	return &Lattice{
		Kind:      KindDiamond,
		Cell:      diag(a, a, a),
		Positions: pos,
		Graph:     g,
	}, nil
}

// locateB finds the B-sublattice basis site and the integer cell shift that
// place a point given in cell units.
func locateB(p [3]float64) (int, [3]int, bool) {
	for b := 4; b < 8; b++ {
		var shift [3]int
		ok := true
		for k := 0; k < 3; k++ {
			d := p[k] - diamondBasis[b][k]
			r := math.Round(d)
			if math.Abs(d-r) > 1e-9 {
				ok = false
				break
			}
			shift[k] = int(r)
		}
		if ok {
			return b, shift, true
		}
	}
	return 0, [3]int{}, false
}
