package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// marketplace
	Signups          *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	CartToggles      *prometheus.CounterVec
	ImageUploads     *prometheus.CounterVec
	ReceiptsRendered prometheus.Counter
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quickkart",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "quickkart",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "quickkart",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "quickkart",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quickkart",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		Signups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quickkart",
				Subsystem: "accounts",
				Name:      "signups_total",
				Help:      "Signups by role and result.",
			},
			[]string{"role", "result"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quickkart",
				Subsystem: "accounts",
				Name:      "logins_total",
				Help:      "Login attempts by result.",
			},
			[]string{"result"}, // ok, unknown_email, bad_password, error
		),
		CartToggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quickkart",
				Subsystem: "cart",
				Name:      "toggles_total",
				Help:      "Cart toggles by direction.",
			},
			[]string{"direction"}, // added|removed
		),
		ImageUploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quickkart",
				Subsystem: "catalog",
				Name:      "image_uploads_total",
				Help:      "Product image uploads by result.",
			},
			[]string{"result"},
		),
		ReceiptsRendered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quickkart",
				Subsystem: "cart",
				Name:      "receipts_rendered_total",
				Help:      "Receipt documents generated.",
			},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.Signups, p.Logins, p.CartToggles, p.ImageUploads, p.ReceiptsRendered,
	)

	return p
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

// nil-safe helpers so services can run without metrics in tests

func (p *Prom) IncSignup(role, result string) {
	if p != nil {
		p.Signups.WithLabelValues(role, result).Inc()
	}
}

func (p *Prom) IncLogin(result string) {
	if p != nil {
		p.Logins.WithLabelValues(result).Inc()
	}
}

func (p *Prom) IncCartToggle(added bool) {
	if p == nil {
		return
	}
	dir := "removed"
	if added {
		dir = "added"
	}
	p.CartToggles.WithLabelValues(dir).Inc()
}

func (p *Prom) IncImageUpload(result string) {
	if p != nil {
		p.ImageUploads.WithLabelValues(result).Inc()
	}
}

func (p *Prom) IncReceipt() {
	if p != nil {
		p.ReceiptsRendered.Inc()
	}
}
