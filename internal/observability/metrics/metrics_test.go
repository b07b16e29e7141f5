package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			matched := true
			for _, pair := range m.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					matched = false
					break
				}
			}
			if matched {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestAppointmentMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAppointmentMetrics(reg)

	m.ObserveBooked("Cardiology")
	m.ObserveBooked("Cardiology")
	m.ObserveTransition("approved", true)
	m.ObserveTransition("approved", false)

	booked := counterValue(t, reg, "careloop_appointments_booked_total",
		map[string]string{"specialization": "Cardiology"})
	if booked != 2 {
		t.Fatalf("booked counter = %f, want 2", booked)
	}
	applied := counterValue(t, reg, "careloop_appointments_transition_total",
		map[string]string{"to": "approved", "outcome": "applied"})
	if applied != 1 {
		t.Fatalf("applied counter = %f, want 1", applied)
	}
	rejected := counterValue(t, reg, "careloop_appointments_transition_total",
		map[string]string{"to": "approved", "outcome": "rejected"})
	if rejected != 1 {
		t.Fatalf("rejected counter = %f, want 1", rejected)
	}
}

func TestAppointmentMetricsNilSafe(t *testing.T) {
	var m *AppointmentMetrics
	m.ObserveBooked("General")
	m.ObserveTransition("completed", true)
}
