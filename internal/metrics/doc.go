// Package metrics provides observability hooks for refactor runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so instrumentation never needs nil checks:
//
//	engine := refactor.NewEngine(loader, refactor.WithRecorder(metrics.NoopRecorder{}))
//
// When metrics are enabled the CLI swaps in a PrometheusRecorder and the serve
// command exposes it on /metrics through HTTPHandler.
package metrics
