package algorithms

import (
	"reflect"
	"testing"

	"github.com/dd0wney/icedope/pkg/bondgraph"
)

// buildGraph creates an n-site graph with the given directed bonds
func buildGraph(t *testing.T, n int, bonds ...[2]int) *bondgraph.Graph {
	t.Helper()
	g := bondgraph.New(n)
	for _, b := range bonds {
		if err := g.Connect(b[0], b[1]); err != nil {
			t.Fatalf("Connect(%d, %d) failed: %v", b[0], b[1], err)
		}
	}
	return g
}

// buildRing creates the 4-regular ring where site i donates to i+1 and i+2
func buildRing(t *testing.T, n int) *bondgraph.Graph {
	t.Helper()
	bonds := make([][2]int, 0, 2*n)
	for i := 0; i < n; i++ {
		bonds = append(bonds, [2]int{i, (i + 1) % n}, [2]int{i, (i + 2) % n})
	}
	return buildGraph(t, n, bonds...)
}

// assertValidPath checks that consecutive sites are joined by bonds in path direction
func assertValidPath(t *testing.T, g bondgraph.Orientation, path bondgraph.Path, source, target int) {
	t.Helper()
	if len(path) == 0 || path[0] != source || path[len(path)-1] != target {
		t.Fatalf("path %v does not run %d -> %d", path, source, target)
	}
	seen := map[int]bool{}
	for i, site := range path {
		if seen[site] {
			t.Fatalf("path %v revisits site %d", path, site)
		}
		seen[site] = true
		if i == 0 {
			continue
		}
		found := false
		for _, s := range g.Successors(path[i-1]) {
			if s == site {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("path %v uses missing bond %d->%d", path, path[i-1], site)
		}
	}
}

// TestShortestPath_SameNode tests path from a site to itself
func TestShortestPath_SameNode(t *testing.T) {
	g := buildGraph(t, 1)

	path, ok := ShortestPath(g, 0, 0)
	if !ok {
		t.Fatal("ShortestPath reported no path")
	}
	if !reflect.DeepEqual(path, bondgraph.Path{0}) {
		t.Errorf("Expected path [0], got %v", path)
	}
}

// TestShortestPath_DirectConnection tests a simple A->B path
func TestShortestPath_DirectConnection(t *testing.T) {
	g := buildGraph(t, 2, [2]int{0, 1})

	path, ok := ShortestPath(g, 0, 1)
	if !ok {
		t.Fatal("ShortestPath reported no path")
	}
	if !reflect.DeepEqual(path, bondgraph.Path{0, 1}) {
		t.Errorf("Expected path [0 1], got %v", path)
	}
}

// TestShortestPath_LinearPath tests A->B->C->D
func TestShortestPath_LinearPath(t *testing.T) {
	g := buildGraph(t, 4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})

	path, ok := ShortestPath(g, 0, 3)
	if !ok {
		t.Fatal("ShortestPath reported no path")
	}
	if !reflect.DeepEqual(path, bondgraph.Path{0, 1, 2, 3}) {
		t.Errorf("Expected path [0 1 2 3], got %v", path)
	}
}

// TestShortestPath_PrefersShorterRoute tests that a detour is not taken
func TestShortestPath_PrefersShorterRoute(t *testing.T) {
	// 0->1->2->3->5 and 0->4->5
	g := buildGraph(t, 6,
		[2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 5},
		[2]int{0, 4}, [2]int{4, 5},
	)

	path, ok := ShortestPath(g, 0, 5)
	if !ok {
		t.Fatal("ShortestPath reported no path")
	}
	if !reflect.DeepEqual(path, bondgraph.Path{0, 4, 5}) {
		t.Errorf("Expected path [0 4 5], got %v", path)
	}
}

// TestShortestPath_RespectsDirection tests that bonds are never walked backwards
func TestShortestPath_RespectsDirection(t *testing.T) {
	g := buildGraph(t, 3, [2]int{1, 0}, [2]int{2, 1})

	if path, ok := ShortestPath(g, 0, 2); ok {
		t.Errorf("Expected no path against bond direction, got %v", path)
	}

	path, ok := ShortestPath(g, 2, 0)
	if !ok {
		t.Fatal("ShortestPath reported no path along bond direction")
	}
	if !reflect.DeepEqual(path, bondgraph.Path{2, 1, 0}) {
		t.Errorf("Expected path [2 1 0], got %v", path)
	}
}

// TestShortestPath_NoPath tests disconnected sites
func TestShortestPath_NoPath(t *testing.T) {
	g := buildGraph(t, 4, [2]int{0, 1}, [2]int{2, 3})

	if path, ok := ShortestPath(g, 0, 3); ok || path != nil {
		t.Errorf("Expected no path, got %v", path)
	}
}

// TestShortestPath_OutOfRange tests invalid site ids
func TestShortestPath_OutOfRange(t *testing.T) {
	g := buildGraph(t, 2, [2]int{0, 1})

	if _, ok := ShortestPath(g, -1, 1); ok {
		t.Error("negative source must not yield a path")
	}
	if _, ok := ShortestPath(g, 0, 2); ok {
		t.Error("target beyond the graph must not yield a path")
	}
}

// TestShortestPath_RingPair tests the anion/cation pair search on an 8-site ring
func TestShortestPath_RingPair(t *testing.T) {
	g := buildRing(t, 8)

	first, ok := ShortestPath(g, 0, 4)
	if !ok {
		t.Fatal("no first path")
	}
	if !reflect.DeepEqual(first, bondgraph.Path{0, 2, 4}) {
		t.Errorf("first path = %v, want [0 2 4]", first)
	}

	view := g.Without(bondgraph.PathEdges(first)...)
	second, ok := ShortestPath(view, 0, 4)
	if !ok {
		t.Fatal("no second path")
	}
	if !reflect.DeepEqual(second, bondgraph.Path{0, 1, 3, 4}) {
		t.Errorf("second path = %v, want [0 1 3 4]", second)
	}
	assertValidPath(t, view, second, 0, 4)

	used := map[bondgraph.Bond]bool{}
	for _, b := range bondgraph.PathEdges(first) {
		used[b] = true
	}
	for _, b := range bondgraph.PathEdges(second) {
		if used[b] {
			t.Errorf("paths share bond %v", b)
		}
	}
}

// TestShortestPath_AdjacentPair tests the long way round once the direct bond is hidden
func TestShortestPath_AdjacentPair(t *testing.T) {
	g := buildRing(t, 8)

	first, ok := ShortestPath(g, 0, 1)
	if !ok || !reflect.DeepEqual(first, bondgraph.Path{0, 1}) {
		t.Fatalf("first path = %v, %v", first, ok)
	}

	second, ok := ShortestPath(g.Without(bondgraph.PathEdges(first)...), 0, 1)
	if !ok {
		t.Fatal("no second path")
	}
	if !reflect.DeepEqual(second, bondgraph.Path{0, 2, 3, 5, 7, 1}) {
		t.Errorf("second path = %v, want [0 2 3 5 7 1]", second)
	}
}

// TestShortestPath_MatchesDistances cross-checks every pair against plain BFS
func TestShortestPath_MatchesDistances(t *testing.T) {
	g := buildRing(t, 11)
	// break the symmetry a little
	if err := g.InvertPath(bondgraph.Path{0, 2, 3, 5}); err != nil {
		t.Fatal(err)
	}

	n := g.NumSites()
	for s := 0; s < n; s++ {
		dist := Distances(g, s)
		for d := 0; d < n; d++ {
			path, ok := ShortestPath(g, s, d)
			if dist[d] < 0 {
				if ok {
					t.Errorf("%d -> %d: unexpected path %v", s, d, path)
				}
				continue
			}
			if !ok {
				t.Errorf("%d -> %d: no path, BFS distance %d", s, d, dist[d])
				continue
			}
			assertValidPath(t, g, path, s, d)
			if path.Len() != dist[d] {
				t.Errorf("%d -> %d: path length %d, BFS distance %d", s, d, path.Len(), dist[d])
			}
		}
	}
}

func TestDistances(t *testing.T) {
	g := buildRing(t, 8)

	got := Distances(g, 0)
	want := []int{0, 1, 1, 2, 2, 3, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Distances(0) = %v, want %v", got, want)
	}

	line := buildGraph(t, 3, [2]int{0, 1})
	if got := Distances(line, 0); !reflect.DeepEqual(got, []int{0, 1, -1}) {
		t.Errorf("Distances on a line = %v", got)
	}
	if got := Distances(line, 5); !reflect.DeepEqual(got, []int{-1, -1, -1}) {
		t.Errorf("Distances from an invalid source = %v", got)
	}
}
