// Package metrics exposes Prometheus counters and latency histograms for
// the gRPC API and the HTTP gateway.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type Metrics struct {
	registry *prometheus.Registry

	RPCRequests  *prometheus.CounterVec
	RPCDuration  *prometheus.HistogramVec
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	StreamsOpen  *prometheus.GaugeVec
}

// New registers the collectors on a private registry, so several instances
// can coexist in one process.
func New(service string) *Metrics {
	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "grpc_requests_total",
			Help:        "Total number of gRPC calls",
			ConstLabels: constLabels,
		}, []string{"method", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "grpc_request_duration_seconds",
			Help:        "Duration of unary gRPC calls in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "code"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		StreamsOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "grpc_streams_open",
			Help:        "Number of open server streams",
			ConstLabels: constLabels,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.RPCRequests, m.RPCDuration, m.HTTPRequests, m.HTTPDuration, m.StreamsOpen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err).String()

		m.RPCRequests.WithLabelValues(info.FullMethod, code).Inc()
		m.RPCDuration.WithLabelValues(info.FullMethod, code).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

func (m *Metrics) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		open := m.StreamsOpen.WithLabelValues(info.FullMethod)
		open.Inc()
		defer open.Dec()

		err := handler(srv, ss)
		m.RPCRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return err
	}
}

// Middleware records HTTP requests labelled with the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		st := ww.Status()
		if st == 0 {
			st = http.StatusOK
		}
		statusStr := strconv.Itoa(st)

		m.HTTPRequests.WithLabelValues(r.Method, path, statusStr).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, path, statusStr).Observe(time.Since(start).Seconds())
	})
}
