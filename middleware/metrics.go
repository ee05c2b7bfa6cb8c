package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/saiset-co/sai-strate/types"
)

// MetricsMiddleware records invocation counts and latency per method, path
// and status.
type MetricsMiddleware struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetricsMiddleware(reg prometheus.Registerer) *MetricsMiddleware {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &MetricsMiddleware{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "strate_requests_total",
			Help: "Total route invocations.",
		}, []string{"method", "path", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "strate_request_duration_seconds",
			Help:    "Route invocation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (m *MetricsMiddleware) Name() string { return "metrics" }

func (m *MetricsMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	start := time.Now()

	err := next()

	m.duration.WithLabelValues(req.Method(), req.Path()).Observe(time.Since(start).Seconds())
	m.requests.WithLabelValues(req.Method(), req.Path(), strconv.Itoa(res.StatusCode())).Inc()

	return err
}
