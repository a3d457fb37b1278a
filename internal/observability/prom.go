package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	// UI host
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// remote store gateway
	GatewayOpsTotal   *prometheus.CounterVec
	GatewayOpDuration *prometheus.HistogramVec

	// refresher
	RefreshTotal *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agendahub",
				Name:      "http_requests_total",
				Help:      "Total UI host requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agendahub",
				Name:      "http_request_duration_seconds",
				Help:      "UI host request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "agendahub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight UI host requests.",
			},
			[]string{"method", "route"},
		),
		GatewayOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agendahub",
				Subsystem: "gateway",
				Name:      "ops_total",
				Help:      "Remote store calls by operation and outcome.",
			},
			[]string{"op", "outcome"}, // outcome=ok|transport|rejected|unknown
		),
		GatewayOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agendahub",
				Subsystem: "gateway",
				Name:      "op_duration_seconds",
				Help:      "Remote store call latency by operation and outcome.",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "outcome"},
		),
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agendahub",
				Subsystem: "refresh",
				Name:      "runs_total",
				Help:      "Background re-fetch runs by result.",
			},
			[]string{"result"}, // result=ok|failed
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.GatewayOpsTotal, p.GatewayOpDuration, p.RefreshTotal,
	)

	return p
}

// ObserveGatewayOp records one remote store call. Nil receiver is fine so
// the gateway can run unmetered in tests.
func (p *Prom) ObserveGatewayOp(op, outcome string, elapsed time.Duration) {
	if p == nil {
		return
	}
	p.GatewayOpsTotal.WithLabelValues(op, outcome).Inc()
	p.GatewayOpDuration.WithLabelValues(op, outcome).Observe(elapsed.Seconds())
}

func (p *Prom) ObserveRefresh(result string) {
	if p == nil {
		return
	}
	p.RefreshTotal.WithLabelValues(result).Inc()
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
