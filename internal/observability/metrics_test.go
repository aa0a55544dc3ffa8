package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordCaseCreated()
	m.RecordCaseCreated()
	m.RecordCaseAssigned("AGENT")
	m.RecordStatusChange("TO_BE_REVIEWED", "COMPLETE")
	m.RecordRequest("/api/v1/cases", "GET", 200, 15*time.Millisecond)
	m.RecordError("/api/v1/cases/:id", "GET", "FORBIDDEN")
	m.RecordAuthorizationDenied("/api/v1/cases/:id")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.casesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.casesAssigned.WithLabelValues("AGENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusTransition.WithLabelValues("TO_BE_REVIEWED", "COMPLETE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/api/v1/cases", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authzDenied.WithLabelValues("/api/v1/cases/:id")))
}

func TestMetricsHandlerExposesSeries(t *testing.T) {
	m := NewMetrics()
	m.RecordCaseCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cases_created_total 1"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCaseCreated()
		m.RecordRequest("/", "GET", 200, time.Second)
		m.RecordError("/", "GET", "X")
	})
	assert.Nil(t, m.Registry())
}
