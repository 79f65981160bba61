package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRPC(t *testing.T) {
	before := testutil.ToFloat64(rpcRequests.WithLabelValues("/test.v1.Svc/Call", "ok"))
	ObserveRPC("/test.v1.Svc/Call", "ok", 3*time.Millisecond)
	after := testutil.ToFloat64(rpcRequests.WithLabelValues("/test.v1.Svc/Call", "ok"))
	assert.Equal(t, before+1, after)
}

func TestRecordLedgerAndReconcile(t *testing.T) {
	before := testutil.ToFloat64(ledgerRecords.WithLabelValues(KindSettlement))
	RecordLedger(KindSettlement, 3)
	assert.Equal(t, before+3, testutil.ToFloat64(ledgerRecords.WithLabelValues(KindSettlement)))

	ReconcileRun(true, 1234)
	assert.Equal(t, float64(1234), testutil.ToFloat64(reconcileBlock))

	ReconcileRun(false, 99)
	assert.Equal(t, float64(1234), testutil.ToFloat64(reconcileBlock))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RateLimited()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "splitme_http_rate_limited_total")
}
