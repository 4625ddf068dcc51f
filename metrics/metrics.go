package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotel"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	reservationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transitions_total",
			Help:      "Reservation status changes by target status.",
		},
		[]string{"status"},
	)

	paymentsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_received_total",
			Help:      "Payments recorded by method.",
		},
		[]string{"method"},
	)

	paymentAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_amount_total",
			Help:      "Sum of recorded payment amounts.",
		},
	)

	refunds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_refunds_total",
			Help:      "Payments refunded.",
		},
	)

	scheduledJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_job_runs_total",
			Help:      "Scheduled job executions by job and result.",
		},
		[]string{"job", "result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration, reservationTransitions,
			paymentsReceived, paymentAmount, refunds, scheduledJobs,
		)
	})
}

func ObserveRequest(route, method, status string, seconds float64) {
	httpRequests.WithLabelValues(route, method, status).Inc()
	httpDuration.WithLabelValues(route, method).Observe(seconds)
}

func IncReservationTransition(status string) {
	reservationTransitions.WithLabelValues(status).Inc()
}

func AddPayment(method string, amount float64) {
	paymentsReceived.WithLabelValues(method).Inc()
	paymentAmount.Add(amount)
}

func IncRefund() {
	refunds.Inc()
}

func IncScheduledJob(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	scheduledJobs.WithLabelValues(job, result).Inc()
}
