package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/armech/armature"
)

// Collector exports a world's counters as Prometheus metrics. It reads a
// snapshot on every scrape, so it never holds the world across requests.
type Collector struct {
	world *armature.World

	version          *prometheus.Desc
	mutations        *prometheus.Desc
	compiles         *prometheus.Desc
	fkCacheHits      *prometheus.Desc
	fkCacheMisses    *prometheus.Desc
	chainCacheHits   *prometheus.Desc
	chainCacheMisses *prometheus.Desc
}

// NewCollector returns a collector bound to the given world.
func NewCollector(world *armature.World) *Collector {
	return &Collector{
		world: world,
		version: prometheus.NewDesc(
			"armature_world_version",
			"Structural version of the world tree.",
			nil, nil),
		mutations: prometheus.NewDesc(
			"armature_world_mutations_total",
			"Structural mutations applied to the world tree.",
			nil, nil),
		compiles: prometheus.NewDesc(
			"armature_fk_compiles_total",
			"Forward kinematics expression compilations.",
			nil, nil),
		fkCacheHits: prometheus.NewDesc(
			"armature_fk_cache_hits_total",
			"Compiled forward kinematics evaluator cache hits.",
			nil, nil),
		fkCacheMisses: prometheus.NewDesc(
			"armature_fk_cache_misses_total",
			"Compiled forward kinematics evaluator cache misses.",
			nil, nil),
		chainCacheHits: prometheus.NewDesc(
			"armature_chain_cache_hits_total",
			"Split-chain memoization hits.",
			nil, nil),
		chainCacheMisses: prometheus.NewDesc(
			"armature_chain_cache_misses_total",
			"Split-chain memoization misses.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.version
	ch <- c.mutations
	ch <- c.compiles
	ch <- c.fkCacheHits
	ch <- c.fkCacheMisses
	ch <- c.chainCacheHits
	ch <- c.chainCacheMisses
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.world.Stats()
	ch <- prometheus.MustNewConstMetric(c.version, prometheus.GaugeValue, float64(s.Version))
	ch <- prometheus.MustNewConstMetric(c.mutations, prometheus.CounterValue, float64(s.Mutations))
	ch <- prometheus.MustNewConstMetric(c.compiles, prometheus.CounterValue, float64(s.Compiles))
	ch <- prometheus.MustNewConstMetric(c.fkCacheHits, prometheus.CounterValue, float64(s.FKCacheHits))
	ch <- prometheus.MustNewConstMetric(c.fkCacheMisses, prometheus.CounterValue, float64(s.FKCacheMisses))
	ch <- prometheus.MustNewConstMetric(c.chainCacheHits, prometheus.CounterValue, float64(s.ChainCacheHits))
	ch <- prometheus.MustNewConstMetric(c.chainCacheMisses, prometheus.CounterValue, float64(s.ChainCacheMisses))
}

var _ prometheus.Collector = (*Collector)(nil)
