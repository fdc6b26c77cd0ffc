// Package logger provides the two concrete Logger implementations named in
// the component design: Counter (a population-count or transition-count
// observer) and StateLogger (a single numeric-slot tracker).
package logger

import (
	"github.com/signalsfoundry/abmsim/sim"
	"github.com/signalsfoundry/abmsim/state"
)

// Counter observes state changes and maintains a scalar derived from them.
// With no To pattern it tracks a running population count of agents
// matching From; Report never resets it. With a To pattern it instead
// counts transitions whose from-state matched From and whose new state
// matches To, and Report resets the count to zero after reading it.
type Counter struct {
	name string
	from state.State
	to   state.State
	hasT bool
	n    int64
}

// NewPopulationCounter builds a Counter that reports the current number of
// agents matching pattern.
func NewPopulationCounter(name string, pattern state.State) *Counter {
	return &Counter{name: name, from: pattern}
}

// NewTransitionCounter builds a Counter that reports, and then resets, the
// number of from -> to transitions observed since the last Report.
func NewTransitionCounter(name string, from, to state.State) *Counter {
	return &Counter{name: name, from: from, to: to, hasT: true}
}

// Name implements sim.Logger.
func (c *Counter) Name() string { return c.name }

// Log implements sim.Logger.
func (c *Counter) Log(agent *sim.Agent, from state.State) {
	if c.hasT {
		if from.Match(c.from) && agent.State().Match(c.to) {
			c.n++
		}
		return
	}
	if from.Match(c.from) {
		c.n--
	}
	if agent.State().Match(c.from) {
		c.n++
	}
}

// Report implements sim.Logger. For a population counter this is a pure
// read; for a transition counter it also resets the count to zero.
func (c *Counter) Report() float64 {
	v := float64(c.n)
	if c.hasT {
		c.n = 0
	}
	return v
}

// StateLogger tracks a single numeric slot of a named agent, or of
// whichever agent last changed state if no agent id was pinned, and
// reports its last observed value.
type StateLogger struct {
	name    string
	key     string
	agentID uint64 // 0 means "track whichever agent last changed"
	last    float64
}

// NewStateLogger builds a StateLogger for the numeric slot named key. If
// agentID is zero, the logger tracks whichever agent most recently changed
// state; otherwise it tracks only that agent's slot.
func NewStateLogger(name, key string, agentID uint64) *StateLogger {
	return &StateLogger{name: name, key: key, agentID: agentID}
}

// Name implements sim.Logger.
func (l *StateLogger) Name() string { return l.name }

// Log implements sim.Logger.
func (l *StateLogger) Log(agent *sim.Agent, _ state.State) {
	if l.agentID != 0 && agent.ID() != l.agentID {
		return
	}
	v, ok := agent.State().Get(l.key)
	if !ok {
		return
	}
	switch v.Kind {
	case state.KindInt:
		if len(v.Ints) > 0 {
			l.last = float64(v.Ints[0])
		}
	case state.KindFloat:
		if len(v.Floats) > 0 {
			l.last = v.Floats[0]
		}
	}
}

// Report implements sim.Logger.
func (l *StateLogger) Report() float64 { return l.last }
