// Package metrics records bootstrap and autoscale results for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "symphonyctl"

// Recorder owns a private registry; nothing is exported over HTTP.
type Recorder struct {
	reg *prometheus.Registry

	success       prometheus.Gauge
	lastSuccess   prometheus.Gauge
	duration      prometheus.Gauge
	phaseDuration *prometheus.GaugeVec
	attempts      prometheus.Gauge
	discoveryWait prometheus.Gauge
	managedHosts  prometheus.Gauge
	isMaster      prometheus.Gauge

	demand    *prometheus.GaugeVec
	unmet     prometheus.Gauge
	slots     *prometheus.GaugeVec
	removed   prometheus.Gauge
	idle      prometheus.Gauge
	stopReady prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{reg: prometheus.NewRegistry()}
	r.success = r.gauge("bootstrap", "success", "1 if the last bootstrap run succeeded.")
	r.lastSuccess = r.gauge("bootstrap", "last_success_timestamp_seconds", "Unix time of the last successful bootstrap.")
	r.duration = r.gauge("bootstrap", "duration_seconds", "Wall time of the last bootstrap run.")
	r.phaseDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "bootstrap",
		Name:      "phase_duration_seconds",
		Help:      "Wall time of each bootstrap phase in the last run.",
	}, []string{"phase"})
	r.reg.MustRegister(r.phaseDuration)
	r.attempts = r.gauge("discovery", "attempts", "Directory queries needed to find the master.")
	r.discoveryWait = r.gauge("discovery", "wait_seconds", "Time spent waiting for the master to register.")
	r.managedHosts = r.gauge("topology", "management_hosts", "Number of management hosts in the resolved topology.")
	r.isMaster = r.gauge("topology", "is_master", "1 if this node is the resolved master.")

	r.demand = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "autoscale",
		Name:      "demand_slots",
		Help:      "Slots requested per application by the last autostart run.",
	}, []string{"app"})
	r.reg.MustRegister(r.demand)
	r.unmet = r.gauge("autoscale", "unmet_demand_slots", "Demand not covered by existing compute slots.")
	r.slots = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "autoscale",
		Name:      "compute_slots",
		Help:      "ComputeHosts slots by state.",
	}, []string{"state"})
	r.reg.MustRegister(r.slots)
	r.removed = r.gauge("cleanup", "removed_hosts", "Unavailable hosts removed by the last cleanup run.")
	r.idle = r.gauge("autostop", "idle_seconds", "How long the grid has had no running or pending tasks.")
	r.stopReady = r.gauge("autostop", "stop_eligible", "1 if the idle threshold was reached.")
	return r
}

func (r *Recorder) gauge(subsystem, name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
	r.reg.MustRegister(g)
	return g
}

// Registry exposes the underlying registry for tests and custom writers.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ObservePhase records the duration of one bootstrap phase.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.phaseDuration.WithLabelValues(phase).Set(d.Seconds())
}

// ObserveDiscovery records how the topology was found.
func (r *Recorder) ObserveDiscovery(attempts int, waited time.Duration, managementHosts int, isMaster bool) {
	r.attempts.Set(float64(attempts))
	r.discoveryWait.Set(waited.Seconds())
	r.managedHosts.Set(float64(managementHosts))
	r.isMaster.Set(boolValue(isMaster))
}

// ObserveBootstrap records the outcome of a bootstrap run.
func (r *Recorder) ObserveBootstrap(d time.Duration, err error, now time.Time) {
	r.duration.Set(d.Seconds())
	if err != nil {
		r.success.Set(0)
		return
	}
	r.success.Set(1)
	r.lastSuccess.Set(float64(now.Unix()))
}

// ObserveAutostart records per-application demand and slot counts.
func (r *Recorder) ObserveAutostart(demand map[string]int, unmet, total, free int) {
	r.demand.Reset()
	for app, d := range demand {
		r.demand.WithLabelValues(app).Set(float64(d))
	}
	r.unmet.Set(float64(unmet))
	r.slots.WithLabelValues("total").Set(float64(total))
	r.slots.WithLabelValues("free").Set(float64(free))
}

// ObserveCleanup records the hosts removed by a cleanup run.
func (r *Recorder) ObserveCleanup(removed int) {
	r.removed.Set(float64(removed))
}

// ObserveAutostop records the idle clock.
func (r *Recorder) ObserveAutostop(idle time.Duration, stop bool) {
	r.idle.Set(idle.Seconds())
	r.stopReady.Set(boolValue(stop))
}

// WriteTextfile writes every gathered metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
