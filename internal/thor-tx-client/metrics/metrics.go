package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts broadcast attempts and status computations on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	broadcastAttempts *prometheus.CounterVec
	statusPolls       *prometheus.CounterVec
	networkSwitches   *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		broadcastAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thortx_broadcast_attempts_total",
				Help: "Broadcast attempts by outcome",
			},
			[]string{"outcome"},
		),
		statusPolls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thortx_status_polls_total",
				Help: "Transaction status computations by resulting status",
			},
			[]string{"status"},
		),
		networkSwitches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thortx_network_switches_total",
				Help: "Network switches by target network",
			},
			[]string{"network"},
		),
	}
}

func (r *Recorder) BroadcastAttempt(outcome string) {
	r.broadcastAttempts.WithLabelValues(outcome).Inc()
}

func (r *Recorder) StatusPoll(status string) {
	r.statusPolls.WithLabelValues(status).Inc()
}

func (r *Recorder) NetworkSwitch(network string) {
	r.networkSwitches.WithLabelValues(network).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
