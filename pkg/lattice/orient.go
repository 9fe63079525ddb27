package lattice

import (
	"fmt"

	"github.com/dd0wney/icedope/pkg/bondgraph"
)

// OrientEulerian directs every undirected pair so that each site has equal
// in- and out-degree. All degrees must be even.
//
// It walks Hierholzer-style closed trails over the unused pairs and orients
// each pair the way it is traversed; a trail in an even graph can only get
// stuck where it started, so every visit in is matched by a visit out. The
// result keeps the order of pairs.
func OrientEulerian(n int, pairs [][2]int) ([]bondgraph.Bond, error) {
	adj := make([][]int, n) // pair indices per site
	for i, p := range pairs {
		for _, s := range p {
			if s < 0 || s >= n {
				return nil, fmt.Errorf("orient pair %d (%d-%d): %w", i, p[0], p[1], bondgraph.ErrSiteOutOfRange)
			}
		}
		if p[0] == p[1] {
			return nil, fmt.Errorf("orient pair %d: %w", i, bondgraph.ErrSelfBond)
		}
		adj[p[0]] = append(adj[p[0]], i)
		adj[p[1]] = append(adj[p[1]], i)
	}
	for site, edges := range adj {
		if len(edges)%2 != 0 {
			return nil, fmt.Errorf("orient: site %d has degree %d: %w", site, len(edges), ErrOddDegree)
		}
	}

	bonds := make([]bondgraph.Bond, len(pairs))
	used := make([]bool, len(pairs))
	next := make([]int, n) // first unexamined entry of adj[site]

	for start := 0; start < n; start++ {
		stack := []int{start}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			for next[v] < len(adj[v]) && used[adj[v][next[v]]] {
				next[v]++
			}
			if next[v] == len(adj[v]) {
				stack = stack[:len(stack)-1]
				continue
			}

			e := adj[v][next[v]]
			used[e] = true
			u := pairs[e][0]
			if u == v {
				u = pairs[e][1]
			}
			bonds[e] = bondgraph.Bond{From: v, To: u}
			stack = append(stack, u)
		}
	}
	return bonds, nil
}
