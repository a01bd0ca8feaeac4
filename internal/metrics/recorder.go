package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// Recorder defines observability hooks for page and fetch metrics.
type Recorder interface {
	ObservePageDuration(d time.Duration)
	IncPageResult(result ResultLabel)
	ObserveFetchDuration(scheme string, d time.Duration, success bool)
	IncFetchRetry(scheme string)
	AddPropertiesMoved(n int)
	IncInheritResult(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePageDuration(time.Duration)                {}
func (NoopRecorder) IncPageResult(ResultLabel)                        {}
func (NoopRecorder) ObserveFetchDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncFetchRetry(string)                             {}
func (NoopRecorder) AddPropertiesMoved(int)                           {}
func (NoopRecorder) IncInheritResult(ResultLabel)                     {}
