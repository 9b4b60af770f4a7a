package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.BorrowingCreated()
	m.BorrowingCreated()
	m.BorrowingReturned()
	m.Failure("conflict")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BorrowingsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BorrowingsReturned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestFailures.WithLabelValues("conflict")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.BorrowingCreated()
	m.BorrowingReturned()
	m.Failure("storage")
}

func TestHandler(t *testing.T) {
	m := New()
	m.BorrowingCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "library_borrowings_created_total 1")
}
