// Package observability exposes the service's Prometheus metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. One instance is created at startup and
// shared by reference.
type Metrics struct {
	registry *prometheus.Registry

	CheckoutSessionsCreated prometheus.Counter
	PaymentsConfirmed       prometheus.Counter
	PaymentsDenied          prometheus.Counter
	RateLimitRejections     prometheus.Counter
	GatedDenials            prometheus.Counter
}

// New creates the metrics set on its own registry so tests can create
// instances without double-registration panics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CheckoutSessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifeclock_checkout_sessions_created_total",
			Help: "Checkout sessions successfully created with the payment provider.",
		}),
		PaymentsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifeclock_payments_confirmed_total",
			Help: "Payment confirmations that issued an access token.",
		}),
		PaymentsDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifeclock_payments_denied_total",
			Help: "Payment confirmations denied (unpaid, missing email, or lookup failure).",
		}),
		RateLimitRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifeclock_ratelimit_rejections_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		GatedDenials: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifeclock_gated_denials_total",
			Help: "Gated resource requests refused for lack of a valid access token.",
		}),
	}
}

// Handler serves the metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
