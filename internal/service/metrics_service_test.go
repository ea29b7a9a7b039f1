package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/models"
)

func TestMetricsServiceDomainCounters(t *testing.T) {
	m := NewMetricsService()

	m.EnrollmentCreated(models.EnrollmentTypeLate, 3)
	m.SeatsChanged("release", 1)
	m.EnrollmentRejected("CONFLICT")
	m.PaymentRecorded(models.PaymentMethodCash)
	m.PaymentCancelled()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/enrollments", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.enrollmentsCreated.WithLabelValues("late")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.seatReservations.WithLabelValues("reserve")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.seatReservations.WithLabelValues("release")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.paymentsCancelled))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.cacheHitRatio))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, name := range []string{"enrollments_created_total", "enrollment_rejections_total", "seat_reservations_total", "payments_recorded_total", "http_requests_total"} {
		assert.True(t, names[name], name)
	}

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.Equal(t, uint64(1), snapshot.EnrollmentsCreated)
	assert.Equal(t, uint64(1), snapshot.EnrollmentRejections)
	assert.Equal(t, uint64(1), snapshot.PaymentsRecorded)
	assert.InDelta(t, 20.0, snapshot.AverageRequestDurationMs, 0.001)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.EnrollmentCreated(models.EnrollmentTypeRegular, 1)
	m.PaymentCancelled()
	assert.Nil(t, m.Registry())
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())
}
