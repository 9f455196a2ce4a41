package telemetry_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := telemetry.NewMetrics("crm")

	m.ObserveRequest(http.MethodGet, "/api/customers", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/customers", http.StatusOK, 30*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/customers", http.StatusConflict, 5*time.Millisecond)

	count, err := testutil.GatherAndCount(m.Registry(), "crm_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(m.Registry(), "crm_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_InFlight(t *testing.T) {
	m := telemetry.NewMetrics("crm")

	m.InFlight().Inc()
	m.InFlight().Inc()
	m.InFlight().Dec()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight()))
}

func TestMetrics_RegisterDBStats(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := telemetry.NewMetrics("crm")
	require.NoError(t, m.RegisterDBStats(db, "crm"))
	assert.Error(t, m.RegisterDBStats(db, "crm"), "duplicate collector must be rejected")

	count, err := testutil.GatherAndCount(m.Registry(), "go_sql_max_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_Handler(t *testing.T) {
	m := telemetry.NewMetrics("crm")
	m.ObserveRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `crm_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
