package defects

import (
	"testing"

	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/lattice"
)

// waterRing returns the 8-site ring where site i donates to i+1 and i+2.
func waterRing(t *testing.T) *bondgraph.Graph {
	t.Helper()
	l, err := lattice.Ring(8)
	if err != nil {
		t.Fatalf("lattice.Ring failed: %v", err)
	}
	return l.Graph
}

// dopedRing returns the 8-site ring with an anion on 0 and a cation on 4,
// made by reversing 0->2->4 and 0->1->3->4.
func dopedRing(t *testing.T) *bondgraph.Graph {
	t.Helper()
	g := waterRing(t)
	if err := g.InvertPath(bondgraph.Path{0, 2, 4}); err != nil {
		t.Fatal(err)
	}
	if err := g.InvertPath(bondgraph.Path{0, 1, 3, 4}); err != nil {
		t.Fatal(err)
	}
	return g
}

// ionicSolid returns K(4,4) with every bond running cation -> anion:
// cations 1-4, anions 0, 5, 6, 7. No ion has a water neighbour.
func ionicSolid(t *testing.T) *bondgraph.Graph {
	t.Helper()
	g := bondgraph.New(8)
	for _, c := range []int{1, 2, 3, 4} {
		for _, a := range []int{0, 5, 6, 7} {
			if err := g.Connect(c, a); err != nil {
				t.Fatal(err)
			}
		}
	}
	return g
}

func diamondLattice(t *testing.T, cells int) *bondgraph.Graph {
	t.Helper()
	l, err := lattice.Diamond(cells)
	if err != nil {
		t.Fatalf("lattice.Diamond failed: %v", err)
	}
	return l.Graph
}

func seeded(seed uint64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return cfg
}
