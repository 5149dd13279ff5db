// Package metric provides Prometheus metrics for turbine.
//
// A run is a short-lived process, so nothing is served over HTTP. The
// registry is written once per run in the node_exporter textfile format
// (WriteTextfile) when metrics.textfile is configured.
//
//   - prometheus.go: registry with run and task counters/histograms
//   - collector.go: storage engine statistics collected on gather
package metric
