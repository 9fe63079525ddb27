package defects

import "github.com/dd0wney/icedope/pkg/bondgraph"

// IsAnionizable reports whether site may become an anion: it donates two
// bonds and none of the sites it donates to is already an anion. Anion
// neighbours can only be successors, since an anion donates nothing.
func IsAnionizable(g *bondgraph.Graph, site int) bool {
	if site < 0 || site >= g.NumSites() || g.OutDegree(site) != 2 {
		return false
	}
	for _, s := range g.Successors(site) {
		if g.InDegree(s) == 4 {
			return false
		}
	}
	return true
}

// IsCationizable reports whether site may become a cation: it donates two
// bonds and none of the sites donating to it is already a cation.
func IsCationizable(g *bondgraph.Graph, site int) bool {
	if site < 0 || site >= g.NumSites() || g.OutDegree(site) != 2 {
		return false
	}
	for _, p := range g.Predecessors(site) {
		if g.OutDegree(p) == 4 {
			return false
		}
	}
	return true
}
