package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/testutil"
)

func TestLoggingRecordsStatus(t *testing.T) {
	collector := metrics.New()
	handler := Logging(testutil.NopLogger(), collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tea", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, 1.0, promtest.ToFloat64(collector.HTTPRequests.WithLabelValues("GET", "418")))
}

func TestLoggingWithoutCollector(t *testing.T) {
	handler := Logging(testutil.NopLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecoveryUsesPanicHandler(t *testing.T) {
	var recovered any
	onPanic := func(w http.ResponseWriter, _ *http.Request, err any) {
		recovered = err
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	handler := Recovery(testutil.NopLogger(), nil, onPanic)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "boom", recovered)
}

func TestRecoveryCountsAndLogsPanics(t *testing.T) {
	collector := metrics.New()
	logger, logs := testutil.CaptureLogger()
	handler := Recovery(logger, collector, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/predict", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1.0, promtest.ToFloat64(collector.Panics.WithLabelValues("POST")))
	records := logs.Records("panic recovered")
	require.Len(t, records, 1)
	assert.Equal(t, "/predict", records[0]["path"])
	assert.Equal(t, "boom", records[0]["error"])
}

func TestRecoveryReraisesAbort(t *testing.T) {
	collector := metrics.New()
	handler := Recovery(testutil.NopLogger(), collector, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, 0.0, promtest.ToFloat64(collector.Panics.WithLabelValues("GET")))
}
