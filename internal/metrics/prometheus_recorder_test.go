package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePageDuration(150 * time.Millisecond)
	pr.IncPageResult(ResultSuccess)
	pr.ObserveFetchDuration("file", 2*time.Millisecond, true)
	pr.IncFetchRetry("https")
	pr.AddPropertiesMoved(3)
	pr.AddPropertiesMoved(-1)
	pr.IncInheritResult(ResultFailed)

	require.InDelta(t, 3, testutil.ToFloat64(pr.propertiesMoved), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.inheritResults.WithLabelValues("failed")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestHTTPHandler_ServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncPageResult(ResultSkipped)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "docrefactor_page_results_total")
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncPageResult(ResultSuccess)
	pr.AddPropertiesMoved(1)
	NoopRecorder{}.ObservePageDuration(time.Second)
}

func TestNewRegistry_IncludesRuntimeCollectors(t *testing.T) {
	reg := NewRegistry()
	NewPrometheusRecorder(reg).IncPageResult(ResultSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "go_goroutines")
	require.Contains(t, rec.Body.String(), "docrefactor_page_results_total")
}
