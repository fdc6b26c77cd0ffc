package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/abmsim/internal/logging"
	"github.com/signalsfoundry/abmsim/internal/observability"
	"github.com/signalsfoundry/abmsim/state"
	"go.opentelemetry.io/otel/trace"
)

// Simulation is the root Population: the outermost calendar, an id
// generator, an ordered list of loggers, an ordered list of transition
// rules, and the "current time" updated just before each handler runs.
type Simulation struct {
	Population

	loggers []Logger
	rules   []Rule

	nextIDCounter uint64
	currentTime   float64

	log     logging.Logger
	metrics *observability.CalendarCollector
	tracer  trace.Tracer
}

// Option configures optional ambient collaborators on construction. None of
// them affect simulation semantics; they exist for diagnostics.
type Option func(*Simulation)

// WithLogger injects a structured logger for lifecycle diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithMetrics injects a Prometheus collector for calendar/logger metrics.
func WithMetrics(m *observability.CalendarCollector) Option {
	return func(s *Simulation) { s.metrics = m }
}

// WithTracer injects an OpenTelemetry tracer for Resume/Handle spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Simulation) { s.tracer = t }
}

// Result is the output of Run/Resume: the snapshot times and, per logger
// name, the series of values observed at those times.
type Result struct {
	Times   []float64
	Columns map[string][]float64
}

// New constructs a Simulation with n freshly created agents. initializer,
// if non-nil, supplies the initial state for agent i; agents are otherwise
// constructed with the empty state.
func New(n int, initializer func(i int) state.State, opts ...Option) (*Simulation, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n must be non-negative, got %d", ErrInvalidArgument, n)
	}
	s := newSimulation(opts...)
	for i := 0; i < n; i++ {
		st := state.Empty()
		if initializer != nil {
			st = initializer(i)
		}
		if err := s.Population.AddAgent(NewAgent(st)); err != nil {
			return nil, err
		}
	}
	s.log.Info(context.Background(), "simulation constructed", logging.Int("agents", n))
	return s, nil
}

// NewFromStates constructs a Simulation with one agent per provided state,
// in order.
func NewFromStates(states []state.State, opts ...Option) (*Simulation, error) {
	s := newSimulation(opts...)
	for _, st := range states {
		if err := s.Population.AddAgent(NewAgent(st)); err != nil {
			return nil, err
		}
	}
	s.log.Info(context.Background(), "simulation constructed", logging.Int("agents", len(states)))
	return s, nil
}

func newSimulation(opts ...Option) *Simulation {
	s := &Simulation{log: logging.Noop()}
	for _, o := range opts {
		o(s)
	}
	s.Population.sim = s
	return s
}

// AddLogger appends l to the simulation's logger list; a logger already
// present (by identity) is ignored.
func (s *Simulation) AddLogger(l Logger) {
	for _, existing := range s.loggers {
		if existing == l {
			return
		}
	}
	s.loggers = append(s.loggers, l)
	s.log.Debug(context.Background(), "logger registered", logging.String("name", l.Name()))
}

// AddTransition appends r to the simulation's rule list; a rule already
// present (by identity) is ignored.
func (s *Simulation) AddTransition(r Rule) {
	for _, existing := range s.rules {
		if existing == r {
			return
		}
	}
	s.rules = append(s.rules, r)
	s.log.Debug(context.Background(), "transition rule registered")
}

// nextID returns a fresh, monotonically increasing agent id.
func (s *Simulation) nextID() uint64 {
	s.nextIDCounter++
	return s.nextIDCounter
}

// onStateChanged is the single point through which every Agent.stateChanged
// flows once it reaches the simulation: loggers observe in insertion
// order, then rules are checked for edge-triggered entry into their
// FromPattern.
func (s *Simulation) onStateChanged(agent *Agent, from state.State) {
	for _, l := range s.loggers {
		l.Log(agent, from)
	}
	for _, r := range s.rules {
		if !from.Match(r.FromPattern()) && agent.Match(r.FromPattern()) {
			r.Schedule(s.currentTime, agent)
			s.metrics.IncEventsScheduled()
		}
	}
}

// Run seeds current time to the earlier of times[0] and the time of the
// first pending event, performs the one-shot population report (contact
// pattern attachment plus an initial broadcast of every agent's state so
// loggers registered after construction still see a baseline), and then
// resumes.
func (s *Simulation) Run(times []float64) (*Result, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: times must be non-empty", ErrInvalidArgument)
	}
	s.currentTime = math.Min(times[0], s.Time())
	s.Population.Report()
	return s.Resume(times)
}

// Resume advances the simulation through each element of times in order:
// while the root calendar's time does not exceed t, it pops and dispatches
// the minimum event; once it does, every logger's Report is snapshotted
// into the column for t.
func (s *Simulation) Resume(times []float64) (*Result, error) {
	result := &Result{Columns: make(map[string][]float64, len(s.loggers))}

	for _, t := range times {
		for s.Time() <= t {
			ctx := context.Background()
			var span trace.Span
			if s.tracer != nil {
				ctx, span = s.tracer.Start(ctx, "sim.Calendar.Handle")
			}
			start := time.Now()

			s.currentTime = s.Time()
			s.Population.Handle(s, nil)

			s.metrics.IncEventsHandled()
			s.metrics.ObserveRunStep(time.Since(start))
			s.metrics.SetLiveAgents(s.Population.Len())
			if span != nil {
				span.End()
			}
		}

		s.currentTime = t
		result.Times = append(result.Times, t)
		for _, l := range s.loggers {
			v := l.Report()
			result.Columns[l.Name()] = append(result.Columns[l.Name()], v)
			s.metrics.IncLoggerReport(l.Name())
		}
	}

	s.log.Debug(context.Background(), "resume complete",
		logging.Int("snapshots", len(result.Times)),
		logging.Int("loggers", len(s.loggers)))
	return result, nil
}

// CurrentTime reports the simulation's current time: it is set just before
// each handler runs, and to each snapshot time once Resume has taken that
// time's logger readings (the initial seed comes from Run). It is distinct
// from Time (promoted from Calendar), which reports the time of the next
// pending event.
func (s *Simulation) CurrentTime() float64 { return s.currentTime }
