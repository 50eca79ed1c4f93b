package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordAuth("login", "success")
	m.RecordAuth("login", "success")
	m.RecordRejection("TOKEN_BLACKLISTED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthOutcome("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejection("TOKEN_BLACKLISTED")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Rejection("SESSION_MISMATCH")))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/auth/login", "POST", 200, time.Millisecond)
		m.RecordError("/auth/login", "POST", "INVALID_CREDENTIALS")
		m.RecordAuth("login", "failure")
		m.RecordRejection("UNAUTHORIZED")
	})
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/auth/login", "POST", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="POST",route="/auth/login",status="200"} 1`)
}
