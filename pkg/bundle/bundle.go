// Package bundle persists a doped lattice: cell, fractional positions, ion
// ids and the oriented bond graph, plus the metadata of the run that
// produced it.
package bundle

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/lattice"
	"github.com/google/uuid"
)

var (
	// ErrBadMagic means the data does not start with the bundle magic.
	ErrBadMagic = errors.New("not an icedope bundle")

	// ErrChecksum means the payload was corrupted after it was written.
	ErrChecksum = errors.New("bundle checksum mismatch")

	// ErrVersion means the bundle was written by an incompatible format version.
	ErrVersion = errors.New("unsupported bundle version")

	// ErrIonMismatch means the stored ion lists disagree with the bond graph.
	ErrIonMismatch = errors.New("bundle ion lists disagree with bonds")
)

// Bundle is the persisted state of one lattice.
type Bundle struct {
	RunID     string
	Seed      uint64
	CreatedAt time.Time
	Kind      string
	Cell      [3][3]float64
	Positions [][3]float64
	// Anions and Cations are sorted site ids.
	Anions  []int
	Cations []int
	Graph   *bondgraph.Graph
}

// New wraps a freshly built lattice in a bundle with a new run id.
func New(l *lattice.Lattice, seed uint64) *Bundle {
	b := &Bundle{
		RunID:     uuid.New().String(),
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
		Kind:      l.Kind,
		Cell:      l.Cell,
		Positions: l.Positions,
		Graph:     l.Graph,
	}
	b.Refresh()
	return b
}

// Refresh recomputes the ion lists from the graph after it was mutated.
func (b *Bundle) Refresh() {
	b.Anions = b.Graph.SitesOfKind(bondgraph.Anion)
	b.Cations = b.Graph.SitesOfKind(bondgraph.Cation)
}

// Derive returns a bundle for a new run on the same lattice state. The graph
// is shared, not copied.
func (b *Bundle) Derive(seed uint64) *Bundle {
	d := *b
	d.RunID = uuid.New().String()
	d.Seed = seed
	d.CreatedAt = time.Now().UTC()
	return &d
}

// Clone deep-copies the bundle, including its graph.
func (b *Bundle) Clone() *Bundle {
	c := *b
	c.Positions = slices.Clone(b.Positions)
	c.Anions = slices.Clone(b.Anions)
	c.Cations = slices.Clone(b.Cations)
	c.Graph = b.Graph.Clone()
	return &c
}

// Lattice returns the geometry view of the bundle.
func (b *Bundle) Lattice() *lattice.Lattice {
	return &lattice.Lattice{
		Kind:      b.Kind,
		Cell:      b.Cell,
		Positions: b.Positions,
		Graph:     b.Graph,
	}
}

// validate checks the stored ion lists and positions against the graph.
func (b *Bundle) validate() error {
	if n := b.Graph.NumSites(); len(b.Positions) != 0 && len(b.Positions) != n {
		return fmt.Errorf("%d positions for %d sites", len(b.Positions), n)
	}
	if anions := b.Graph.SitesOfKind(bondgraph.Anion); !slices.Equal(anions, b.Anions) {
		return fmt.Errorf("anions %v, graph has %v: %w", b.Anions, anions, ErrIonMismatch)
	}
	if cations := b.Graph.SitesOfKind(bondgraph.Cation); !slices.Equal(cations, b.Cations) {
		return fmt.Errorf("cations %v, graph has %v: %w", b.Cations, cations, ErrIonMismatch)
	}
	return nil
}
