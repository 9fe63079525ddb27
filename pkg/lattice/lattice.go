// Package lattice builds initial water-rule bond graphs for periodic ice-like
// lattices, together with the fractional site positions and cell matrix the
// export and bundle layers carry along.
package lattice

import (
	"errors"
	"fmt"

	"github.com/dd0wney/icedope/pkg/bondgraph"
)

// Lattice kinds accepted by Build.
const (
	KindRing    = "ring"
	KindSquare  = "square"
	KindDiamond = "diamond"
)

// OH...O distance used to scale the toy cells, in angstrom.
const hbondLength = 2.76

var (
	ErrUnknownKind = errors.New("unknown lattice kind")
	ErrTooSmall    = errors.New("lattice too small")
	ErrOddDegree   = errors.New("site has odd degree")
)

// Lattice is a bond graph with the geometry needed downstream.
type Lattice struct {
	Kind string
	// Cell rows are the cell vectors in angstrom.
	Cell [3][3]float64
	// Positions are fractional coordinates, one per site.
	Positions [][3]float64
	Graph     *bondgraph.Graph
}

// Build dispatches on kind.
func Build(kind string, size int) (*Lattice, error) {
	switch kind {
	case KindRing:
		return Ring(size)
	case KindSquare:
		return Square(size)
	case KindDiamond:
		return Diamond(size)
	default:
		return nil, fmt.Errorf("%w: %q (want %s, %s or %s)", ErrUnknownKind, kind, KindRing, KindSquare, KindDiamond)
	}
}

// Ring builds the 4-regular ring where site i donates to i+1 and i+2.
// n must be at least 5 so that the four neighbours of a site are distinct.
func Ring(n int) (*Lattice, error) {
	if n < 5 {
		return nil, fmt.Errorf("ring: n=%d (must be >= 5): %w", n, ErrTooSmall)
	}
	g := bondgraph.New(n)
	pos := make([][3]float64, n)
	for i := 0; i < n; i++ {
		for _, step := range []int{1, 2} {
			if err := g.Connect(i, (i+step)%n); err != nil {
				return nil, fmt.Errorf("ring: %w", err)
			}
		}
		pos[i] = [3]float64{float64(i) / float64(n), 0.5, 0.5}
	}
	return &Lattice{
		Kind:      KindRing,
		Cell:      diag(float64(n)*hbondLength, 2*hbondLength, 2*hbondLength),
		Positions: pos,
		Graph:     g,
	}, nil
}

// Square builds a periodic l x l square ice: every site donates to its +x
// and +y neighbours. l must be at least 3.
func Square(l int) (*Lattice, error) {
	if l < 3 {
		return nil, fmt.Errorf("square: l=%d (must be >= 3): %w", l, ErrTooSmall)
	}
	n := l * l
	g := bondgraph.New(n)
	pos := make([][3]float64, n)
	id := func(x, y int) int { return (x+l)%l + l*((y+l)%l) }

	for y := 0; y < l; y++ {
		for x := 0; x < l; x++ {
			u := id(x, y)
			if err := g.Connect(u, id(x+1, y)); err != nil {
				return nil, fmt.Errorf("square: %w", err)
			}
			if err := g.Connect(u, id(x, y+1)); err != nil {
				return nil, fmt.Errorf("square: %w", err)
			}
			pos[u] = [3]float64{float64(x) / float64(l), float64(y) / float64(l), 0.5}
		}
	}
	return &Lattice{
		Kind:      KindSquare,
		Cell:      diag(float64(l)*hbondLength, float64(l)*hbondLength, hbondLength),
		Positions: pos,
		Graph:     g,
	}, nil
}

func diag(a, b, c float64) [3][3]float64 {
	return [3][3]float64{{a, 0, 0}, {0, b, 0}, {0, 0, c}}
}

// Cartesian converts the fractional position of site to angstrom.
func (l *Lattice) Cartesian(site int) [3]float64 {
	return ToCartesian(l.Cell, l.Positions[site])
}

// ToCartesian multiplies a fractional position by the cell rows.
func ToCartesian(cell [3][3]float64, frac [3]float64) [3]float64 {
	var out [3]float64
	for axis := 0; axis < 3; axis++ {
		for k := 0; k < 3; k++ {
			out[axis] += frac[k] * cell[k][axis]
		}
	}
	return out
}
