package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CalendarCollector bundles Prometheus metrics for the simulation engine's
// event calendar and logger dispatch. None of these counters influence
// scheduling or state-change semantics; they exist purely for operators
// watching a long-running simulation.
type CalendarCollector struct {
	gatherer prometheus.Gatherer

	EventsScheduled  prometheus.Counter
	EventsHandled    prometheus.Counter
	RekeyOperations  prometheus.Counter
	RunStepDuration  prometheus.Histogram
	LiveAgents       prometheus.Gauge
	LoggerReports    *prometheus.CounterVec
}

// NewCalendarCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewCalendarCollector(reg prometheus.Registerer) (*CalendarCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	scheduled, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "abmsim_events_scheduled_total",
		Help: "Total number of transition-rule activations triggered by agent state changes.",
	}), "abmsim_events_scheduled_total")
	if err != nil {
		return nil, err
	}

	handled, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "abmsim_events_handled_total",
		Help: "Total number of events dispatched by Calendar.Handle.",
	}), "abmsim_events_handled_total")
	if err != nil {
		return nil, err
	}

	rekeys, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "abmsim_rekey_operations_total",
		Help: "Total number of upward re-key propagations reported via IncRekeyOperations; Calendar does not report them itself.",
	}), "abmsim_rekey_operations_total")
	if err != nil {
		return nil, err
	}

	runStep := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "abmsim_run_step_duration_seconds",
		Help:    "Wall-clock duration of a single Simulation.Resume step.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	runStep, err = registerHistogram(reg, runStep, "abmsim_run_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	liveAgents, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "abmsim_live_agents",
		Help: "Current number of agents attached to the root population.",
	}), "abmsim_live_agents")
	if err != nil {
		return nil, err
	}

	loggerReports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "abmsim_logger_reports_total",
		Help: "Total number of Logger.Report invocations, labeled by logger name.",
	}, []string{"logger"})
	loggerReports, err = registerCounterVec(reg, loggerReports, "abmsim_logger_reports_total")
	if err != nil {
		return nil, err
	}

	return &CalendarCollector{
		gatherer:        gatherer,
		EventsScheduled: scheduled,
		EventsHandled:   handled,
		RekeyOperations: rekeys,
		RunStepDuration: runStep,
		LiveAgents:      liveAgents,
		LoggerReports:   loggerReports,
	}, nil
}

// ObserveRunStep records the duration of one Resume step.
func (c *CalendarCollector) ObserveRunStep(d time.Duration) {
	if c == nil || c.RunStepDuration == nil {
		return
	}
	c.RunStepDuration.Observe(d.Seconds())
}

// IncEventsScheduled increments the scheduled-events counter.
func (c *CalendarCollector) IncEventsScheduled() {
	if c == nil || c.EventsScheduled == nil {
		return
	}
	c.EventsScheduled.Inc()
}

// IncEventsHandled increments the handled-events counter.
func (c *CalendarCollector) IncEventsHandled() {
	if c == nil || c.EventsHandled == nil {
		return
	}
	c.EventsHandled.Inc()
}

// IncRekeyOperations increments the re-key counter.
func (c *CalendarCollector) IncRekeyOperations() {
	if c == nil || c.RekeyOperations == nil {
		return
	}
	c.RekeyOperations.Inc()
}

// SetLiveAgents updates the live-agent gauge.
func (c *CalendarCollector) SetLiveAgents(n int) {
	if c == nil || c.LiveAgents == nil {
		return
	}
	c.LiveAgents.Set(float64(n))
}

// IncLoggerReport increments the report counter for the named logger.
func (c *CalendarCollector) IncLoggerReport(name string) {
	if c == nil || c.LoggerReports == nil {
		return
	}
	c.LoggerReports.WithLabelValues(name).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *CalendarCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
