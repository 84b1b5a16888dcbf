package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewConversationMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConversationMetrics(reg)

	m.ObserveTurn("awaiting_date_of_birth", "ok", 0.01)
	m.ObserveBooking()
	m.ObserveCancellation()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 4 {
		t.Fatalf("expected 4 metric families, got %d", len(families))
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *ConversationMetrics
	m.ObserveTurn("initial", "ok", 0)
	m.ObserveBooking()
	m.ObserveCancellation()
}
