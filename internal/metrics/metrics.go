package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parktix"

// Metrics holds the application collectors. A nil *Metrics records nothing.
type Metrics struct {
	Checkouts     *prometheus.CounterVec
	TicketsIssued prometheus.Counter
	TicketOps     *prometheus.CounterVec
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A
// *prometheus.Registry is also used as the gatherer for Handler.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		TicketsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "tickets_issued_total",
			Help:      "Tickets issued by committed checkouts.",
		}),
		TicketOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "operations_total",
			Help:      "Ticket cancel and reschedule operations by result.",
		}, []string{"op", "result"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		gatherer: prometheus.DefaultGatherer,
	}

	reg.MustRegister(m.Checkouts, m.TicketsIssued, m.TicketOps, m.Requests, m.LatencyMS)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m
}

func (m *Metrics) ObserveCheckout(result string, tickets int) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(result).Inc()
	if tickets > 0 {
		m.TicketsIssued.Add(float64(tickets))
	}
}

func (m *Metrics) ObserveTicketOp(op, result string) {
	if m == nil {
		return
	}
	m.TicketOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObserveHTTP(handler string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Microseconds()) / 1000)
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
