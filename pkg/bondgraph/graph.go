package bondgraph

import (
	"errors"
	"fmt"
	"sort"
)

// New creates a graph with n isolated sites.
func New(n int) *Graph {
	if n < 0 {
		n = 0
	}
	return &Graph{
		neighbors: make([][]int, n),
		bonds:     make([]Bond, 0, 2*n),
		index:     make(map[pairKey]int, 2*n),
		outDeg:    make([]int, n),
		inDeg:     make([]int, n),
	}
}

// FromBonds builds a graph over n sites from a list of directed bonds.
func FromBonds(n int, bonds []Bond) (*Graph, error) {
	g := New(n)
	for _, b := range bonds {
		if err := g.Connect(b.From, b.To); err != nil {
			return nil, err
		}
		if b.Fixed {
			g.bonds[g.index[keyOf(b.From, b.To)]].Fixed = true
		}
	}
	return g, nil
}

// Connect makes from and to lattice neighbours, bonded from -> to.
// It is only used while building the lattice; the neighbour set is frozen
// once doping starts.
func (g *Graph) Connect(from, to int) error {
	if !g.valid(from) {
		return siteError("Connect", from, ErrSiteOutOfRange, "")
	}
	if !g.valid(to) {
		return siteError("Connect", to, ErrSiteOutOfRange, "")
	}
	if from == to {
		return bondError("Connect", from, to, ErrSelfBond)
	}
	k := keyOf(from, to)
	if _, exists := g.index[k]; exists {
		return bondError("Connect", from, to, ErrDuplicateBond)
	}

	g.index[k] = len(g.bonds)
	g.bonds = append(g.bonds, Bond{From: from, To: to})
	g.neighbors[from] = insertSorted(g.neighbors[from], to)
	g.neighbors[to] = insertSorted(g.neighbors[to], from)
	g.outDeg[from]++
	g.inDeg[to]++
	return nil
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func (g *Graph) valid(site int) bool {
	return site >= 0 && site < len(g.neighbors)
}

// NumSites returns the number of sites.
func (g *Graph) NumSites() int {
	return len(g.neighbors)
}

// NumBonds returns the number of bonds (undirected neighbour pairs).
func (g *Graph) NumBonds() int {
	return len(g.bonds)
}

// OutDegree returns the number of bonds the site donates.
func (g *Graph) OutDegree(site int) int {
	return g.outDeg[site]
}

// InDegree returns the number of bonds the site accepts.
func (g *Graph) InDegree(site int) int {
	return g.inDeg[site]
}

// Kind classifies the site from its current degrees.
func (g *Graph) Kind(site int) SiteKind {
	return Classify(g.outDeg[site], g.inDeg[site])
}

// Neighbors returns the undirected lattice neighbours of a site in ascending order.
func (g *Graph) Neighbors(site int) []int {
	out := make([]int, len(g.neighbors[site]))
	copy(out, g.neighbors[site])
	return out
}

// Successors returns the sites this site donates to, in ascending order.
func (g *Graph) Successors(site int) []int {
	out := make([]int, 0, g.outDeg[site])
	for _, nb := range g.neighbors[site] {
		if g.bonds[g.index[keyOf(site, nb)]].From == site {
			out = append(out, nb)
		}
	}
	return out
}

// Predecessors returns the sites donating to this site, in ascending order.
func (g *Graph) Predecessors(site int) []int {
	out := make([]int, 0, g.inDeg[site])
	for _, nb := range g.neighbors[site] {
		if g.bonds[g.index[keyOf(site, nb)]].To == site {
			out = append(out, nb)
		}
	}
	return out
}

// HasBond reports whether the directed bond a -> b exists.
func (g *Graph) HasBond(a, b int) bool {
	if !g.valid(a) || !g.valid(b) {
		return false
	}
	i, ok := g.index[keyOf(a, b)]
	return ok && g.bonds[i].From == a
}

// Bond returns the bond between two neighbours in its current orientation.
func (g *Graph) Bond(a, b int) (Bond, bool) {
	if !g.valid(a) || !g.valid(b) {
		return Bond{}, false
	}
	i, ok := g.index[keyOf(a, b)]
	if !ok {
		return Bond{}, false
	}
	return g.bonds[i], true
}

// ReverseBond turns a -> b into b -> a. It fails if a -> b does not exist,
// including when the pair is bonded the other way round.
func (g *Graph) ReverseBond(a, b int) error {
	if !g.HasBond(a, b) {
		return bondError("ReverseBond", a, b, ErrBondNotFound)
	}
	g.flip(g.index[keyOf(a, b)])
	return nil
}

// flip reverses bond i without checks.
func (g *Graph) flip(i int) {
	b := &g.bonds[i]
	g.outDeg[b.From]--
	g.inDeg[b.To]--
	b.From, b.To = b.To, b.From
	g.outDeg[b.From]++
	g.inDeg[b.To]++
}

// IsFixed reports the fixed flag of the bond between two neighbours.
func (g *Graph) IsFixed(a, b int) bool {
	bond, ok := g.Bond(a, b)
	return ok && bond.Fixed
}

// SetFixed sets the fixed flag of the bond between two neighbours,
// regardless of its direction.
func (g *Graph) SetFixed(a, b int, fixed bool) error {
	if !g.valid(a) || !g.valid(b) {
		return bondError("SetFixed", a, b, ErrSiteOutOfRange)
	}
	i, ok := g.index[keyOf(a, b)]
	if !ok {
		return bondError("SetFixed", a, b, ErrBondNotFound)
	}
	g.bonds[i].Fixed = fixed
	return nil
}

// Bonds returns a copy of every bond in insertion order.
func (g *Graph) Bonds() []Bond {
	out := make([]Bond, len(g.bonds))
	copy(out, g.bonds)
	return out
}

// Census counts the sites of each kind.
func (g *Graph) Census() Census {
	var c Census
	for site := range g.neighbors {
		switch g.Kind(site) {
		case Water:
			c.Water++
		case Cation:
			c.Cation++
		case Anion:
			c.Anion++
		default:
			c.Invalid++
		}
	}
	return c
}

// SitesOfKind returns all sites currently classified as kind, ascending.
func (g *Graph) SitesOfKind(kind SiteKind) []int {
	var out []int
	for site := range g.neighbors {
		if g.Kind(site) == kind {
			out = append(out, site)
		}
	}
	return out
}

// CheckWaterRule verifies that every site donates two bonds and accepts two.
// It is the precondition on a freshly built lattice.
func (g *Graph) CheckWaterRule() error {
	var errs []error
	for site := range g.neighbors {
		if g.Kind(site) != Water {
			errs = append(errs, siteError("CheckWaterRule", site, ErrNotWaterRule,
				fmt.Sprintf("out=%d in=%d", g.outDeg[site], g.inDeg[site])))
		}
	}
	return errors.Join(errs...)
}

// CheckDegreeSums verifies out+in equals the neighbour count of every site.
func (g *Graph) CheckDegreeSums() error {
	var errs []error
	for site, nbs := range g.neighbors {
		if g.outDeg[site]+g.inDeg[site] != len(nbs) {
			errs = append(errs, siteError("CheckDegreeSums", site, ErrDegreeSumChanged,
				fmt.Sprintf("out=%d in=%d neighbours=%d", g.outDeg[site], g.inDeg[site], len(nbs))))
		}
	}
	return errors.Join(errs...)
}

// SameTopology reports whether two graphs share the same undirected neighbour sets.
func (g *Graph) SameTopology(other *Graph) bool {
	if other == nil || len(g.neighbors) != len(other.neighbors) || len(g.bonds) != len(other.bonds) {
		return false
	}
	for k := range g.index {
		if _, ok := other.index[k]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		neighbors: make([][]int, len(g.neighbors)),
		bonds:     make([]Bond, len(g.bonds)),
		index:     make(map[pairKey]int, len(g.index)),
		outDeg:    make([]int, len(g.outDeg)),
		inDeg:     make([]int, len(g.inDeg)),
	}
	for i, nbs := range g.neighbors {
		c.neighbors[i] = append([]int(nil), nbs...)
	}
	copy(c.bonds, g.bonds)
	for k, v := range g.index {
		c.index[k] = v
	}
	copy(c.outDeg, g.outDeg)
	copy(c.inDeg, g.inDeg)
	return c
}

// Equal reports whether both graphs have identical topology, orientation and
// fixed flags.
func (g *Graph) Equal(other *Graph) bool {
	if !g.SameTopology(other) {
		return false
	}
	for _, b := range g.bonds {
		ob := other.bonds[other.index[keyOf(b.From, b.To)]]
		if ob != b {
			return false
		}
	}
	return true
}
