package defects

import (
	"fmt"
	"slices"

	"github.com/dd0wney/icedope/pkg/bondgraph"
)

// Pair is one anion/cation pair inserted together.
type Pair struct {
	Anion  int `json:"anion"`
	Cation int `json:"cation"`
}

// Registry caches which sites are currently ions. It is derived state: the
// bond graph is authoritative and Rebuild recomputes the registry from it.
type Registry struct {
	anions  map[int]struct{}
	cations map[int]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		anions:  make(map[int]struct{}),
		cations: make(map[int]struct{}),
	}
}

// RegistryFromGraph classifies every site of g.
func RegistryFromGraph(g *bondgraph.Graph) *Registry {
	r := NewRegistry()
	r.Rebuild(g)
	return r
}

func (r *Registry) set(kind bondgraph.SiteKind) (map[int]struct{}, error) {
	switch kind {
	case bondgraph.Anion:
		return r.anions, nil
	case bondgraph.Cation:
		return r.cations, nil
	default:
		return nil, fmt.Errorf("registry holds ions only, got %s", kind)
	}
}

// Add records site as an ion of the given kind.
func (r *Registry) Add(kind bondgraph.SiteKind, site int) error {
	s, err := r.set(kind)
	if err != nil {
		return err
	}
	s[site] = struct{}{}
	return nil
}

// AddPair records both ions of a pair.
func (r *Registry) AddPair(p Pair) {
	r.anions[p.Anion] = struct{}{}
	r.cations[p.Cation] = struct{}{}
}

// Move relocates an ion after a diffusion hop.
func (r *Registry) Move(kind bondgraph.SiteKind, from, to int) error {
	s, err := r.set(kind)
	if err != nil {
		return err
	}
	if _, ok := s[from]; !ok {
		return fmt.Errorf("move %s %d -> %d: site is not registered: %w", kind, from, to, ErrInvariantViolation)
	}
	delete(s, from)
	s[to] = struct{}{}
	return nil
}

// Contains reports whether site is registered as kind.
func (r *Registry) Contains(kind bondgraph.SiteKind, site int) bool {
	s, err := r.set(kind)
	if err != nil {
		return false
	}
	_, ok := s[site]
	return ok
}

// Anions returns the anion sites in ascending order.
func (r *Registry) Anions() []int {
	return sortedKeys(r.anions)
}

// Cations returns the cation sites in ascending order.
func (r *Registry) Cations() []int {
	return sortedKeys(r.cations)
}

// Len returns the number of registered ions.
func (r *Registry) Len() int {
	return len(r.anions) + len(r.cations)
}

// Rebuild discards the cached sets and reclassifies every site of g.
func (r *Registry) Rebuild(g *bondgraph.Graph) {
	clear(r.anions)
	clear(r.cations)
	for site := 0; site < g.NumSites(); site++ {
		switch g.Kind(site) {
		case bondgraph.Anion:
			r.anions[site] = struct{}{}
		case bondgraph.Cation:
			r.cations[site] = struct{}{}
		}
	}
}

// Matches reports whether the registry equals a fresh classification of g.
func (r *Registry) Matches(g *bondgraph.Graph) bool {
	fresh := RegistryFromGraph(g)
	return slices.Equal(r.Anions(), fresh.Anions()) && slices.Equal(r.Cations(), fresh.Cations())
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for k := range r.anions {
		c.anions[k] = struct{}{}
	}
	for k := range r.cations {
		c.cations[k] = struct{}{}
	}
	return c
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
