/*
Package observability exports world counters as Prometheus metrics.

It provides a prometheus.Collector that snapshots the world's structural
version, mutation count and forward kinematics cache statistics on every
scrape.
*/
package observability
