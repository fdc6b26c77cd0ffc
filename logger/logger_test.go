package logger

import (
	"testing"

	"github.com/signalsfoundry/abmsim/sim"
	"github.com/signalsfoundry/abmsim/state"
)

func status(v string) state.State { return state.New(state.Str("status", v)) }

func TestPopulationCounterIgnoresNonMatchingLog(t *testing.T) {
	c := NewPopulationCounter("I", status("I"))
	a := sim.NewAgent(state.Empty())

	c.Log(a, state.Empty())
	if got := c.Report(); got != 0 {
		t.Fatalf("Report() = %v, want 0 before any match", got)
	}
}

func TestPopulationCounterIncrementsOnMatchAndDecrementsOnExit(t *testing.T) {
	c := NewPopulationCounter("I", status("I"))
	a := sim.NewAgent(status("I"))

	c.Log(a, state.Empty()) // arrival into I: from=Empty doesn't match I, current does -> +1
	if got := c.Report(); got != 1 {
		t.Fatalf("Report() after arrival = %v, want 1", got)
	}

	a2 := sim.NewAgent(status("R"))
	c.Log(a2, status("I")) // a2 left I for R: from matches I (-1), current doesn't match (+0)
	if got := c.Report(); got != 0 {
		t.Fatalf("Report() after departure = %v, want 0", got)
	}
}

func TestPopulationCounterReportDoesNotReset(t *testing.T) {
	c := NewPopulationCounter("I", status("I"))
	a := sim.NewAgent(status("I"))
	c.Log(a, state.Empty())

	first := c.Report()
	second := c.Report()
	if first != second {
		t.Fatalf("population counter must not reset on Report: %v != %v", first, second)
	}
}

func TestTransitionCounterCountsOnlyMatchingTransitions(t *testing.T) {
	c := NewTransitionCounter("S_to_I", status("S"), status("I"))
	a := sim.NewAgent(status("I"))

	c.Log(a, status("S")) // S -> I: counted
	if got := c.Report(); got != 1 {
		t.Fatalf("Report() = %v, want 1", got)
	}
	if got := c.Report(); got != 0 {
		t.Fatalf("Report() after reset = %v, want 0", got)
	}

	b := sim.NewAgent(status("R"))
	c.Log(b, status("S")) // S -> R: not counted (to pattern mismatch)
	if got := c.Report(); got != 0 {
		t.Fatalf("Report() = %v, want 0 for non-matching transition", got)
	}
}

func TestStateLoggerTracksLastNumericValue(t *testing.T) {
	l := NewStateLogger("age", "age", 0)
	a := sim.NewAgent(state.New(state.Int("age", 5)))

	l.Log(a, state.Empty())
	if got := l.Report(); got != 5 {
		t.Fatalf("Report() = %v, want 5", got)
	}

	a.Set(state.New(state.Int("age", 6)))
	l.Log(a, state.New(state.Int("age", 5)))
	if got := l.Report(); got != 6 {
		t.Fatalf("Report() = %v, want 6", got)
	}
}

func TestStateLoggerIgnoresOtherAgentsWhenPinned(t *testing.T) {
	a := sim.NewAgent(state.New(state.Int("age", 1)))
	s, err := sim.New(0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Population.AddAgent(a); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	pinnedID := a.ID()

	l := NewStateLogger("age", "age", pinnedID)
	other := sim.NewAgent(state.New(state.Int("age", 99)))
	l.Log(other, state.Empty())

	if got := l.Report(); got != 0 {
		t.Fatalf("pinned logger observed an unrelated agent, Report() = %v, want 0", got)
	}
}
