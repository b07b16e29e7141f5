package metrics

import "github.com/prometheus/client_golang/prometheus"

// AppointmentMetrics exposes counters for the appointment lifecycle.
type AppointmentMetrics struct {
	bookedTotal     *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		bookedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careloop",
			Subsystem: "appointments",
			Name:      "booked_total",
			Help:      "Total appointment booking requests accepted",
		}, []string{"specialization"}),
		transitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careloop",
			Subsystem: "appointments",
			Name:      "transition_total",
			Help:      "Total appointment status transition attempts",
		}, []string{"to", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookedTotal, m.transitionTotal)
	return m
}

func (m *AppointmentMetrics) ObserveBooked(specialization string) {
	if m == nil {
		return
	}
	m.bookedTotal.WithLabelValues(specialization).Inc()
}

func (m *AppointmentMetrics) ObserveTransition(to string, ok bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = "applied"
	}
	m.transitionTotal.WithLabelValues(to, outcome).Inc()
}
