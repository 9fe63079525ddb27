// Package bondgraph holds the directed hydrogen-bond network of an ice lattice.
//
// The undirected neighbour relation between sites is fixed when the graph is
// built; afterwards only bond directions change. Degrees are cached so that
// donor/acceptor counts and bond existence are O(1) queries.
package bondgraph

// SiteKind classifies a site by its current donor/acceptor degrees.
type SiteKind int

const (
	// Invalid is any degree combination other than the three below.
	Invalid SiteKind = iota
	// Water donates two bonds and accepts two.
	Water
	// Cation donates four bonds and accepts none.
	Cation
	// Anion accepts four bonds and donates none.
	Anion
)

// String returns the string representation of a site kind
func (k SiteKind) String() string {
	switch k {
	case Water:
		return "water"
	case Cation:
		return "cation"
	case Anion:
		return "anion"
	default:
		return "invalid"
	}
}

// Classify maps a donor/acceptor degree pair to a SiteKind.
func Classify(out, in int) SiteKind {
	switch {
	case out == 2 && in == 2:
		return Water
	case out == 4 && in == 0:
		return Cation
	case out == 0 && in == 4:
		return Anion
	default:
		return Invalid
	}
}

// Bond is a directed hydrogen bond from a donor site to an acceptor site.
//
// Fixed belongs to the undirected pair and survives reversal.
type Bond struct {
	From  int  `json:"from"`
	To    int  `json:"to"`
	Fixed bool `json:"fixed,omitempty"`
}

// Reversed returns the bond with its direction flipped.
func (b Bond) Reversed() Bond {
	return Bond{From: b.To, To: b.From, Fixed: b.Fixed}
}

// Path is a sequence of sites where each consecutive pair is a bond in the
// current orientation.
type Path []int

// Len returns the number of bonds on the path.
func (p Path) Len() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Orientation is the read-only directed adjacency used by path searches.
// Both *Graph and *View implement it.
type Orientation interface {
	NumSites() int
	Successors(site int) []int
	Predecessors(site int) []int
}

// Census counts sites per kind.
type Census struct {
	Water   int
	Cation  int
	Anion   int
	Invalid int
}

// pairKey identifies an undirected neighbour pair.
type pairKey uint64

func keyOf(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey(uint64(uint32(a))<<32 | uint64(uint32(b)))
}

// Graph is the directed bond network over sites 0..N-1.
//
// A Graph is not safe for concurrent mutation; callers own it as a single writer.
type Graph struct {
	neighbors [][]int         // site -> sorted undirected neighbours
	bonds     []Bond          // one entry per undirected pair, in insertion order
	index     map[pairKey]int // pair -> position in bonds
	outDeg    []int           // cached donor counts
	inDeg     []int           // cached acceptor counts
}
