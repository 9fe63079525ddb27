package defects

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/metrics"
	dto "github.com/prometheus/client_model/go"
)

func TestPlace_RingSinglePair(t *testing.T) {
	g := waterRing(t)
	before := g.Clone()

	d, err := NewDoper(g, seeded(7))
	if err != nil {
		t.Fatalf("NewDoper failed: %v", err)
	}
	res, err := d.Place(context.Background(), 1)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if res.Placed != 1 || len(res.Pairs) != 1 || len(res.PathLengths) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	in4, out4 := 0, 0
	for site := 0; site < g.NumSites(); site++ {
		switch {
		case g.InDegree(site) == 4:
			in4++
		case g.OutDegree(site) == 4:
			out4++
		case g.OutDegree(site) != 2 || g.InDegree(site) != 2:
			t.Errorf("site %d left at out=%d in=%d", site, g.OutDegree(site), g.InDegree(site))
		}
	}
	if in4 != 1 || out4 != 1 {
		t.Errorf("got %d in-4 and %d out-4 sites, want 1 and 1", in4, out4)
	}

	pair := res.Pairs[0]
	if g.Kind(pair.Anion) != bondgraph.Anion || g.Kind(pair.Cation) != bondgraph.Cation {
		t.Errorf("pair %+v not classified as anion/cation", pair)
	}
	if !g.SameTopology(before) {
		t.Error("doping changed the neighbour relation")
	}
	if err := Verify(g, d.Registry()); err != nil {
		t.Errorf("Verify after placement: %v", err)
	}
	if !reflect.DeepEqual(d.Registry().Anions(), []int{pair.Anion}) ||
		!reflect.DeepEqual(d.Registry().Cations(), []int{pair.Cation}) {
		t.Errorf("registry %v/%v does not match pair %+v", d.Registry().Anions(), d.Registry().Cations(), pair)
	}
}

func TestPlace_Diamond(t *testing.T) {
	g := diamondLattice(t, 2)

	d, err := NewDoper(g, seeded(2024))
	if err != nil {
		t.Fatal(err)
	}
	res, err := d.Place(context.Background(), 3)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	c := g.Census()
	if c.Anion != 3 || c.Cation != 3 || c.Water != g.NumSites()-6 || c.Invalid != 0 {
		t.Errorf("census after 3 pairs: %+v", c)
	}
	if err := Verify(g, d.Registry()); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if res.Attempts < 2*res.Placed {
		t.Errorf("attempts %d cannot be below two draws per pair", res.Attempts)
	}
	for _, l := range res.PathLengths {
		if l < 1 {
			t.Errorf("path length %d", l)
		}
	}
}

func TestPlace_Deterministic(t *testing.T) {
	run := func() (*bondgraph.Graph, PlaceResult) {
		g := diamondLattice(t, 2)
		d, err := NewDoper(g, seeded(99))
		if err != nil {
			t.Fatal(err)
		}
		res, err := d.Place(context.Background(), 4)
		if err != nil {
			t.Fatal(err)
		}
		return g, res
	}

	g1, r1 := run()
	g2, r2 := run()
	if !g1.Equal(g2) {
		t.Error("same seed produced different graphs")
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("same seed produced different results:\n%+v\n%+v", r1, r2)
	}
}

func TestPlace_ZeroPairs(t *testing.T) {
	g := waterRing(t)
	snapshot := g.Clone()
	d, err := NewDoper(g, seeded(1))
	if err != nil {
		t.Fatal(err)
	}
	res, err := d.Place(context.Background(), 0)
	if err != nil || res.Placed != 0 || res.Attempts != 0 {
		t.Fatalf("Place(0) = %+v, %v", res, err)
	}
	if !g.Equal(snapshot) {
		t.Error("Place(0) mutated the graph")
	}
}

func TestPlace_AttemptsExhausted(t *testing.T) {
	g := waterRing(t)
	snapshot := g.Clone()

	cfg := seeded(3)
	cfg.MaxAttempts = 1 // the anion draw succeeds, the cation draw has no budget
	d, err := NewDoper(g, cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := d.Place(context.Background(), 1)
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("Place error = %v, want ErrAttemptsExhausted", err)
	}
	if res.Placed != 0 || res.Attempts != 1 {
		t.Errorf("result %+v", res)
	}
	if !g.Equal(snapshot) {
		t.Error("exhausted placement mutated the graph")
	}
}

func TestPlace_NoEligibleSites(t *testing.T) {
	g := ionicSolid(t)
	cfg := seeded(5)
	cfg.MaxAttempts = 50
	d, err := NewDoper(g, cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := d.Place(context.Background(), 1)
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("Place error = %v, want ErrAttemptsExhausted", err)
	}
	if res.Rejections[metrics.OutcomeIneligibleAnion] != 50 {
		t.Errorf("rejections = %v", res.Rejections)
	}
}

func TestPlace_ContextCancelled(t *testing.T) {
	g := waterRing(t)
	snapshot := g.Clone()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := NewDoper(g, seeded(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Place(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("Place error = %v, want context.Canceled", err)
	}
	if !g.Equal(snapshot) {
		t.Error("cancelled placement mutated the graph")
	}
}

func TestPlacePercent(t *testing.T) {
	tests := []struct {
		sites   int
		percent float64
		want    int
	}{
		{64, 10, 6},
		{8, 12.5, 1},
		{8, 12, 0},
		{8, 0, 0},
		{8, -5, 0},
		{1000, 0.5, 5},
	}
	for _, tt := range tests {
		if got := PairsForPercent(tt.sites, tt.percent); got != tt.want {
			t.Errorf("PairsForPercent(%d, %v) = %d, want %d", tt.sites, tt.percent, got, tt.want)
		}
	}

	g := diamondLattice(t, 2)
	d, err := NewDoper(g, seeded(11))
	if err != nil {
		t.Fatal(err)
	}
	res, err := d.PlacePercent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if res.Requested != 3 || res.Placed != 3 {
		t.Errorf("PlacePercent(5) on 64 sites = %+v", res)
	}
}

func TestNewDoper_RejectsInvalidSites(t *testing.T) {
	g := waterRing(t)
	if err := g.ReverseBond(0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDoper(g, DefaultConfig()); !errors.Is(err, ErrUnclassifiedSite) {
		t.Errorf("NewDoper error = %v, want ErrUnclassifiedSite", err)
	}
}

func TestPlace_RecordsMetrics(t *testing.T) {
	g := diamondLattice(t, 1)
	reg := metrics.NewRegistry()
	d, err := NewDoper(g, seeded(4), WithMetrics(reg))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Place(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	var m dto.Metric
	if err := reg.PairsPlacedTotal.Write(&m); err != nil {
		t.Fatal(err)
	}
	if got := m.Counter.GetValue(); got != 1 {
		t.Errorf("pairs placed counter = %v", got)
	}
}
