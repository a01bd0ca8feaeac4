package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	pageDuration    prom.Histogram
	pageResults     *prom.CounterVec
	fetchDuration   *prom.HistogramVec
	fetchRetries    *prom.CounterVec
	propertiesMoved prom.Counter
	inheritResults  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pageDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docrefactor",
			Name:      "page_duration_seconds",
			Help:      "Duration of a full page refactor including inherited fetches",
			Buckets:   prom.DefBuckets,
		}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docrefactor",
			Name:      "page_results_total",
			Help:      "Page refactor outcomes",
		}, []string{"result"}),
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docrefactor",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of inherited page fetches",
			Buckets:   prom.DefBuckets,
		}, []string{"scheme", "result"}),
		fetchRetries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docrefactor",
			Name:      "fetch_retries_total",
			Help:      "Retries of transient fetch failures",
		}, []string{"scheme"}),
		propertiesMoved: prom.NewCounter(prom.CounterOpts{
			Namespace: "docrefactor",
			Name:      "properties_moved_total",
			Help:      "Property entries relocated into Properties sections",
		}),
		inheritResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docrefactor",
			Name:      "inherit_results_total",
			Help:      "Inherited page merge outcomes",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.pageDuration, pr.pageResults, pr.fetchDuration, pr.fetchRetries, pr.propertiesMoved, pr.inheritResults)
	return pr
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveFetchDuration(scheme string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := ResultFailed
	if success {
		res = ResultSuccess
	}
	p.fetchDuration.WithLabelValues(scheme, string(res)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFetchRetry(scheme string) {
	if p == nil {
		return
	}
	p.fetchRetries.WithLabelValues(scheme).Inc()
}

func (p *PrometheusRecorder) AddPropertiesMoved(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.propertiesMoved.Add(float64(n))
}

func (p *PrometheusRecorder) IncInheritResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.inheritResults.WithLabelValues(string(result)).Inc()
}
