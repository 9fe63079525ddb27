package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLatticeMetrics() {
	r.LatticeSites = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "icedope_lattice_sites",
			Help: "Number of sites in the bond graph",
		},
	)

	r.LatticeBonds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "icedope_lattice_bonds",
			Help: "Number of hydrogen bonds in the bond graph",
		},
	)

	r.LatticeIons = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "icedope_lattice_ions",
			Help: "Current number of ion sites by kind",
		},
		[]string{"kind"},
	)
}
