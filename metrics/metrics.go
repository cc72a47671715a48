package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Payments struct {
	Initialized      prometheus.Counter
	Confirmed        prometheus.Counter
	Mismatches       prometheus.Counter
	WebhooksRejected prometheus.Counter
}

func NewPayments(reg prometheus.Registerer) *Payments {
	initialized := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "datagod",
		Name:      "payments_initialized_total",
		Help:      "Payment transactions opened with the gateway.",
	})
	confirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "datagod",
		Name:      "payments_confirmed_total",
		Help:      "Orders confirmed as paid after verification.",
	})
	mismatches := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "datagod",
		Name:      "amount_mismatches_total",
		Help:      "Verified charges rejected because the amount did not match the quote.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "datagod",
		Name:      "webhooks_rejected_total",
		Help:      "Webhook deliveries rejected for a bad signature.",
	})

	reg.MustRegister(initialized, confirmed, mismatches, rejected)
	return &Payments{
		Initialized:      initialized,
		Confirmed:        confirmed,
		Mismatches:       mismatches,
		WebhooksRejected: rejected,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
