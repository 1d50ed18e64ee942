package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles every process metric behind one registry so /metrics
// exposes only what this service owns.
type Collector struct {
	reg *prometheus.Registry

	plansTotal     prometheus.Counter
	planFailures   prometheus.Counter
	planDuration   prometheus.Histogram
	transitOmitted prometheus.Counter

	simulationsStarted prometheus.Counter
	simulationsActive  prometheus.Gauge
	framesTotal        prometheus.Counter

	tripsCreated    prometheus.Counter
	tripTransitions *prometheus.CounterVec

	wsClients prometheus.Gauge

	natsPublished   prometheus.Counter
	natsPublishErrs prometheus.Counter
	natsConnected   prometheus.Gauge

	tickSeconds prometheus.Gauge
}

func NewCollector(tickInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		plansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiero_plans_total",
			Help: "Total route plans computed.",
		}),
		planFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiero_plan_failures_total",
			Help: "Total route plans that ended in an error.",
		}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentiero_plan_duration_seconds",
			Help:    "Duration of route plan computations.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
		transitOmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiero_transit_omitted_total",
			Help: "Plans where the transit candidate was silently omitted.",
		}),
		simulationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiero_simulations_started_total",
			Help: "Total trip simulations started.",
		}),
		simulationsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentiero_simulations_active",
			Help: "Simulations currently running or paused.",
		}),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiero_position_frames_total",
			Help: "Total simulator position frames emitted.",
		}),
		tripsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiero_trips_created_total",
			Help: "Total trips registered.",
		}),
		tripTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentiero_trip_transitions_total",
			Help: "Trip phase transitions by event.",
		}, []string{"event"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentiero_ws_connected_clients",
			Help: "Currently connected websocket clients.",
		}),
		natsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiero_nats_published_total",
			Help: "Total NATS position messages published.",
		}),
		natsPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiero_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		natsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentiero_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		tickSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentiero_simulator_tick_seconds",
			Help: "Configured simulator tick period in seconds.",
		}),
	}

	reg.MustRegister(
		c.plansTotal, c.planFailures, c.planDuration, c.transitOmitted,
		c.simulationsStarted, c.simulationsActive, c.framesTotal,
		c.tripsCreated, c.tripTransitions,
		c.wsClients,
		c.natsPublished, c.natsPublishErrs, c.natsConnected,
		c.tickSeconds,
	)

	c.tickSeconds.Set(tickInterval.Seconds())

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) PlansInc() {
	c.plansTotal.Inc()
}

func (c *Collector) PlanFailuresInc() {
	c.planFailures.Inc()
}

func (c *Collector) PlanObserve(d time.Duration) {
	c.planDuration.Observe(d.Seconds())
}

func (c *Collector) TransitOmittedInc() {
	c.transitOmitted.Inc()
}

func (c *Collector) SimulationStartedInc() {
	c.simulationsStarted.Inc()
}

func (c *Collector) SimulationsActiveSet(n int) {
	c.simulationsActive.Set(float64(n))
}

func (c *Collector) FrameInc() {
	c.framesTotal.Inc()
}

func (c *Collector) TripCreatedInc() {
	c.tripsCreated.Inc()
}

func (c *Collector) TripTransitionInc(event string) {
	c.tripTransitions.WithLabelValues(event).Inc()
}

func (c *Collector) WSClientInc() {
	c.wsClients.Inc()
}

func (c *Collector) WSClientDec() {
	c.wsClients.Dec()
}

func (c *Collector) NATSPublishedInc() {
	c.natsPublished.Inc()
}

func (c *Collector) NATSPublishErrInc() {
	c.natsPublishErrs.Inc()
}

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.natsConnected.Set(1)
	} else {
		c.natsConnected.Set(0)
	}
}
