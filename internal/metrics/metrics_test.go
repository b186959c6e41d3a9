package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncLabelRead(OutcomeMatched)
	m.IncLabelRead(OutcomeMatched)
	m.IncLabelRead(OutcomeUnreadable)
	m.IncMessage("arrival", nil)
	m.IncMessage("arrival", errors.New("twilio down"))
	m.IncHTTPRequest("GET", "/api/v1/packages", 200)
	m.IncPickups()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LabelReads.WithLabelValues(OutcomeMatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LabelReads.WithLabelValues(OutcomeUnreadable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesSent.WithLabelValues("arrival", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesSent.WithLabelValues("arrival", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/packages", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Pickups))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncLabelRead(OutcomeError)
		m.ObserveMatchScore(40)
		m.IncMessage("pickup", nil)
		m.IncPackagesRegistered()
	})
}
