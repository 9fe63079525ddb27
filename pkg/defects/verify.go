package defects

import (
	"errors"
	"fmt"

	"github.com/dd0wney/icedope/pkg/bondgraph"
)

// Verify checks the lattice invariants that must hold after every completed
// doping batch or trial move and returns all violations joined:
//
//   - out+in of every site equals its neighbour count;
//   - every site is water, cation or anion;
//   - there are as many anions as cations;
//   - no two neighbouring sites are both anions or both cations;
//   - reg, when non-nil, equals a fresh classification of g.
func Verify(g *bondgraph.Graph, reg *Registry) error {
	var errs []error

	if err := g.CheckDegreeSums(); err != nil {
		errs = append(errs, err)
	}
	if err := checkClassified(g); err != nil {
		errs = append(errs, err)
	}

	census := g.Census()
	if census.Anion != census.Cation {
		errs = append(errs, fmt.Errorf("%d anions but %d cations: %w", census.Anion, census.Cation, ErrInvariantViolation))
	}

	for site := 0; site < g.NumSites(); site++ {
		kind := g.Kind(site)
		if kind != bondgraph.Anion && kind != bondgraph.Cation {
			continue
		}
		for _, nb := range g.Neighbors(site) {
			if nb > site && g.Kind(nb) == kind {
				errs = append(errs, fmt.Errorf("adjacent %ss at %d and %d: %w", kind, site, nb, ErrInvariantViolation))
			}
		}
	}

	if reg != nil && !reg.Matches(g) {
		fresh := RegistryFromGraph(g)
		errs = append(errs, fmt.Errorf("registry anions=%v cations=%v, graph anions=%v cations=%v: %w",
			reg.Anions(), reg.Cations(), fresh.Anions(), fresh.Cations(), ErrInvariantViolation))
	}

	return errors.Join(errs...)
}
