package bondgraph

// View is a read-only orientation of a Graph with some bonds hidden.
//
// It answers adjacency queries by consulting the base graph and an exclusion
// set, so building one costs O(len(excluded)) instead of a full graph copy.
// A View must not outlive mutations of its base graph.
type View struct {
	base     *Graph
	excluded map[pairKey]struct{}

	// When skipFixed is set, fixed bonds are hidden too, except those
	// touching keepSite.
	skipFixed bool
	keepSite  int
}

// Without returns a view of g with the given directed bonds hidden.
// A bond is only hidden while it still points the way it is listed.
func (g *Graph) Without(bonds ...Bond) *View {
	v := &View{
		base:     g,
		excluded: make(map[pairKey]struct{}, len(bonds)),
		keepSite: -1,
	}
	for _, b := range bonds {
		if g.HasBond(b.From, b.To) {
			v.excluded[keyOf(b.From, b.To)] = struct{}{}
		}
	}
	return v
}

// WithoutFixed additionally hides every fixed bond that does not touch site.
// Pass -1 to hide all fixed bonds.
func (v *View) WithoutFixed(site int) *View {
	return &View{
		base:      v.base,
		excluded:  v.excluded,
		skipFixed: true,
		keepSite:  site,
	}
}

// NumSites returns the number of sites of the base graph.
func (v *View) NumSites() int {
	return v.base.NumSites()
}

func (v *View) hidden(a, b int) bool {
	k := keyOf(a, b)
	if _, ok := v.excluded[k]; ok {
		return true
	}
	if v.skipFixed && a != v.keepSite && b != v.keepSite {
		return v.base.bonds[v.base.index[k]].Fixed
	}
	return false
}

// HasBond reports whether a -> b exists in the base graph and is visible.
func (v *View) HasBond(a, b int) bool {
	return v.base.HasBond(a, b) && !v.hidden(a, b)
}

// Successors returns the visible sites this site donates to.
func (v *View) Successors(site int) []int {
	all := v.base.Successors(site)
	out := all[:0]
	for _, nb := range all {
		if !v.hidden(site, nb) {
			out = append(out, nb)
		}
	}
	return out
}

// Predecessors returns the visible sites donating to this site.
func (v *View) Predecessors(site int) []int {
	all := v.base.Predecessors(site)
	out := all[:0]
	for _, nb := range all {
		if !v.hidden(site, nb) {
			out = append(out, nb)
		}
	}
	return out
}

// OutDegree counts the visible bonds this site donates.
func (v *View) OutDegree(site int) int {
	return len(v.Successors(site))
}

// InDegree counts the visible bonds this site accepts.
func (v *View) InDegree(site int) int {
	return len(v.Predecessors(site))
}
