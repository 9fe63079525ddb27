package defects

import (
	"errors"
	"fmt"

	"github.com/dd0wney/icedope/pkg/bondgraph"
)

var (
	// ErrInvariantViolation means a completed mutation left the lattice in a
	// state the placement or hop logic guarantees cannot happen. It is never an
	// expected runtime condition.
	ErrInvariantViolation = errors.New("defect invariant violated")

	// ErrAttemptsExhausted means a bounded retry loop ran out of attempts.
	ErrAttemptsExhausted = errors.New("attempts exhausted")

	// ErrNoIons means a diffusion run was asked to move ions that do not exist.
	ErrNoIons = errors.New("lattice has no ions")

	// ErrUnclassifiedSite means an input site is neither water nor an ion.
	ErrUnclassifiedSite = errors.New("site is neither water nor ion")
)

// invariantError wraps a violation with the site it was detected on.
func invariantError(op string, site int, format string, args ...any) error {
	return fmt.Errorf("%s: site %d: %s: %w", op, site, fmt.Sprintf(format, args...), ErrInvariantViolation)
}

// checkClassified rejects graphs with sites in an invalid intermediate state.
func checkClassified(g *bondgraph.Graph) error {
	var errs []error
	for site := 0; site < g.NumSites(); site++ {
		if g.Kind(site) == bondgraph.Invalid {
			errs = append(errs, fmt.Errorf("site %d (out=%d in=%d): %w",
				site, g.OutDegree(site), g.InDegree(site), ErrUnclassifiedSite))
		}
	}
	return errors.Join(errs...)
}
