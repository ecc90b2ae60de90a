// Package metrics exposes Prometheus instrumentation for the registry and a
// small HTTP server that serves the /metrics endpoint.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

var (
	// OperationsTotal counts registry operations by name and outcome.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authentieats_registry_operations_total",
		Help: "Registry operations by operation name and result.",
	}, []string{"operation", "result"})

	// EventsEmitted counts events published to the configured sinks.
	EventsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authentieats_registry_events_emitted_total",
		Help: "Events emitted by the registry.",
	})

	// EventsDropped counts events dropped by sinks that could not keep up.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authentieats_registry_events_dropped_total",
		Help: "Events dropped by saturated event sinks.",
	})

	// SnapshotsSaved counts snapshots written to the storage backend.
	SnapshotsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authentieats_registry_snapshots_saved_total",
		Help: "Registry snapshots saved to storage.",
	})
)

// RecordOperation records one operation outcome. The result label is "ok" for
// success and a short error class otherwise.
func RecordOperation(operation string, err error) {
	OperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, interfaces.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, interfaces.ErrPaused):
		return "paused"
	case errors.Is(err, interfaces.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, interfaces.ErrInvalidStringLength):
		return "invalid_string_length"
	case errors.Is(err, interfaces.ErrInvalidQuality):
		return "invalid_quality"
	case errors.Is(err, interfaces.ErrMaxCertsExceeded):
		return "max_certs_exceeded"
	case errors.Is(err, interfaces.ErrZeroAddress):
		return "zero_address"
	case errors.Is(err, interfaces.ErrNoChanges):
		return "no_changes"
	case errors.Is(err, interfaces.ErrHistoryFull):
		return "history_full"
	case errors.Is(err, interfaces.ErrInvalidOptional):
		return "invalid_optional"
	default:
		return "error"
	}
}

// MetricsServer serves the Prometheus scrape endpoint.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on listenAddr. The name parameter
// tags the server for logs and is not used in metric names.
func New(name, listenAddr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &MetricsServer{
		srv: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving the metrics endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
