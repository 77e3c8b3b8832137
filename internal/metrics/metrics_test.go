package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOwnerAction(t *testing.T) {
	before := testutil.ToFloat64(ownerActionsTotal.WithLabelValues("approve"))
	RecordOwnerAction("approve")
	RecordOwnerAction("approve")
	assert.Equal(t, before+2, testutil.ToFloat64(ownerActionsTotal.WithLabelValues("approve")))
}

func TestSetRequestsByStatus(t *testing.T) {
	SetRequestsByStatus(map[string]int{"pending": 3, "failed": 1})
	assert.Equal(t, 3.0, testutil.ToFloat64(requestsByStatus.WithLabelValues("pending")))

	SetRequestsByStatus(map[string]int{"completed": 2})
	assert.Equal(t, 1, testutil.CollectAndCount(requestsByStatus))
}

func TestHandlerExposesInstruments(t *testing.T) {
	RecordAPIRequest(http.MethodGet, "/api/requests", http.StatusOK, 0.01)
	RecordAPIRequest(http.MethodGet, "", http.StatusNotFound, 0.001)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `ecoa_api_requests_total{method="GET",route="/api/requests",status="200"}`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestUpdateDatabaseConnectionsNil(t *testing.T) {
	assert.Error(t, UpdateDatabaseConnections(nil))
}
