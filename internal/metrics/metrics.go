package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "api_requests_total",
			Help:      "Count of backend API calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "logins_total",
			Help:      "Count of login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	credentialEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "credential_evictions_total",
			Help:      "Count of bearer credentials evicted after a 401.",
		},
	)

	reservationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "reservation_actions_total",
			Help:      "Count of reservation actions by kind.",
		},
		[]string{"action"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, logins, credentialEvictions, reservationActions)
	})
}

func IncAPIRequest(operation, outcome string) {
	apiRequests.WithLabelValues(operation, outcome).Inc()
}

func IncLogin(outcome string) {
	logins.WithLabelValues(outcome).Inc()
}

func IncCredentialEviction() {
	credentialEvictions.Inc()
}

func IncReservationAction(action string) {
	reservationActions.WithLabelValues(action).Inc()
}
