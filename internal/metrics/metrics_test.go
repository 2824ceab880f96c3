package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector()
	c.RecordChat(OutcomeServed, "gemini")
	c.RecordChat(OutcomeServed, "gemini")
	c.RecordVendor("openai", "status")
	c.RecordCrisis()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ChatRequests.WithLabelValues(OutcomeServed, "gemini")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.VendorAttempts.WithLabelValues("openai", "status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CrisisFlags))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordChat(OutcomeFault, "fallback")
		c.RecordVendor("gemini", "ok")
		c.RecordCrisis()
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordCrisis()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mindcare_crisis_flags_total 1")
}
