/*
Package observability turns sequencer lifecycle hooks into Prometheus metrics
and serves them over HTTP.

	m := observability.NewMetrics(prometheus.NewRegistry())
	seq := prologue.New(prologue.WithLifecycleHooks(m.Hooks()))
*/
package observability
