package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serroba/redirect-gateway/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := metrics.New("gateway")

	r.Issued("token")
	r.Issued("token")
	r.Resolved("encoded", metrics.OutcomeDelivered)
	r.Verified(metrics.OutcomeRejected, 40*time.Millisecond)
	r.RateLimited("verify")
	r.Consumed("link.issued", "processed")

	count, err := testutil.GatherAndCount(r.Registry(),
		"gateway_links_issued_total",
		"gateway_links_resolved_total",
		"gateway_verifications_total",
		"gateway_rate_limited_total",
		"gateway_events_consumed_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.New("gateway")
	r.Issued("encoded")

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gateway_links_issued_total{mode="encoded"} 1`)
}
