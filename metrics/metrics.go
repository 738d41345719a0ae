package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skywatch",
		Name:      "events_received_total",
		Help:      "Events read from the stream, by kind.",
	}, []string{"kind"})

	EventsMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skywatch",
		Name:      "events_matched_total",
		Help:      "Events retained by a filter, by filter name.",
	}, []string{"filter"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skywatch",
		Name:      "events_dropped_total",
		Help:      "Events matched by no filter.",
	})

	SinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skywatch",
		Name:      "sink_errors_total",
		Help:      "Failed sink writes, by sink type.",
	}, []string{"sink"})

	StreamCursor = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skywatch",
		Name:      "stream_cursor",
		Help:      "Last observed stream cursor in microseconds.",
	})
)

// Handler serves the prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
