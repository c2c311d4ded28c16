package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics counts processed payment-gateway webhook events,
// labelled by event type and handling outcome.
type WebhookMetrics struct {
	events *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook counters on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "milko",
		Subsystem: "webhooks",
		Name:      "events_total",
		Help:      "Webhook events processed, by event type and outcome.",
	}, []string{"event", "outcome"})
	reg.MustRegister(events)
	return &WebhookMetrics{events: events}
}

// IncEvent records one processed event with its outcome.
func (w *WebhookMetrics) IncEvent(event, outcome string) {
	if w == nil || w.events == nil {
		return
	}
	if event == "" {
		event = "unknown"
	}
	w.events.WithLabelValues(event, outcome).Inc()
}
