// Package metrics exports tooltip and bridge activity to Prometheus.
//
// A *Metrics is a tooltip.Observer, so it plugs straight into Attach:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg))
//	tip, _ := tooltip.Attach(owner, host, anchor, opts, tooltip.WithObserver(m))
//
// Expose the registry with promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).
package metrics
