package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSale(t *testing.T) {
	m := New()

	m.RecordSale("Card", 3)
	m.RecordSale("Card", 2)
	m.RecordSale("Cash", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SalesRecorded.WithLabelValues("Card")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SalesRecorded.WithLabelValues("Cash")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.UnitsSold))
}

func TestRecordSaleRejected(t *testing.T) {
	m := New()

	m.RecordSaleRejected("insufficient_stock")
	m.RecordSaleRejected("insufficient_stock")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SalesRejected.WithLabelValues("insufficient_stock")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordSale("Card", 1)
		m.RecordSaleRejected("x")
		m.RecordAdjustment("adjust")
		m.ObserveLockWait(time.Millisecond)
		m.ObserveForecast(time.Millisecond)
		m.RecordForecastCache(true)
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}
