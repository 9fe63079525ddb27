package algorithms

import (
	"github.com/dd0wney/icedope/pkg/bondgraph"
)

// frontier is one side of a bidirectional search.
type frontier struct {
	queue  []int
	parent map[int]int // site -> site it was reached from (roots map to themselves)
	next   func(site int) []int
}

func newFrontier(root int, next func(int) []int) *frontier {
	return &frontier{
		queue:  []int{root},
		parent: map[int]int{root: root},
		next:   next,
	}
}

// ShortestPath finds a shortest directed path from source to target using
// bidirectional BFS: the forward side follows successors, the backward side
// follows predecessors, and whole levels are expanded alternately so the first
// meeting point lies on a shortest path.
//
// Ties are broken by the ascending neighbour order of the orientation. The
// second return value is false when target is unreachable.
func ShortestPath(g bondgraph.Orientation, source, target int) (bondgraph.Path, bool) {
	n := g.NumSites()
	if source < 0 || source >= n || target < 0 || target >= n {
		return nil, false
	}
	if source == target {
		return bondgraph.Path{source}, true
	}

	forward := newFrontier(source, g.Successors)
	backward := newFrontier(target, g.Predecessors)

	// Either side running dry means the reachable set has been exhausted
	// without touching the other side.
	for len(forward.queue) > 0 && len(backward.queue) > 0 {
		if meet, ok := expandFrontier(forward, backward); ok {
			return reconstructPath(meet, forward.parent, backward.parent), true
		}
		if meet, ok := expandFrontier(backward, forward); ok {
			return reconstructPath(meet, forward.parent, backward.parent), true
		}
	}

	return nil, false
}

// expandFrontier expands one level of BFS and reports the first site already
// reached by the other side.
func expandFrontier(f, other *frontier) (int, bool) {
	levelSize := len(f.queue)
	for i := 0; i < levelSize; i++ {
		current := f.queue[0]
		f.queue = f.queue[1:]

		for _, neighbor := range f.next(current) {
			// Check if we've met the other search
			if _, met := other.parent[neighbor]; met {
				if _, seen := f.parent[neighbor]; !seen {
					f.parent[neighbor] = current
				}
				return neighbor, true
			}

			if _, seen := f.parent[neighbor]; !seen {
				f.parent[neighbor] = current
				f.queue = append(f.queue, neighbor)
			}
		}
	}

	return 0, false
}

// reconstructPath builds the path from source to target through the meeting site
func reconstructPath(meeting int, forwardParent, backwardParent map[int]int) bondgraph.Path {
	// Build forward path (source -> meeting)
	path := make(bondgraph.Path, 0)
	site := meeting
	for site != forwardParent[site] {
		path = append(path, site)
		site = forwardParent[site]
	}
	path = append(path, site)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	// Append backward path (meeting -> target), excluding the meeting site
	site = meeting
	for site != backwardParent[site] {
		site = backwardParent[site]
		path = append(path, site)
	}

	return path
}

// Distances returns the BFS hop count from source to every site following
// bond directions; unreachable sites get -1.
func Distances(g bondgraph.Orientation, source int) []int {
	n := g.NumSites()
	dist := make([]int, n)
	for i := range dist {
		dist[i] = -1
	}
	if source < 0 || source >= n {
		return dist
	}

	dist[source] = 0
	queue := []int{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range g.Successors(current) {
			if dist[neighbor] < 0 {
				dist[neighbor] = dist[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}

	return dist
}
