package sim_test

import (
	"testing"

	"github.com/signalsfoundry/abmsim/internal/fixtures"
	"github.com/signalsfoundry/abmsim/logger"
	"github.com/signalsfoundry/abmsim/sim"
	"github.com/signalsfoundry/abmsim/state"
	"github.com/signalsfoundry/abmsim/transition"
	"github.com/signalsfoundry/abmsim/waitingtime"
)

func statusState(status string) state.State { return state.New(state.Str("status", status)) }

// S1 — SIR with random mixing.
func TestScenarioSIRRandomMixing(t *testing.T) {
	s, err := sim.New(100, func(i int) state.State {
		if i == 0 {
			return statusState("I")
		}
		return statusState("S")
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mixing := &fixtures.RandomMixing{}
	s.Population.AddContact(mixing)

	contactRule := &transition.Contact{
		From:        statusState("I"),
		ContactFrom: statusState("S"),
		To:          statusState("I"),
		ContactTo:   statusState("I"),
		Pattern:     mixing,
		Waiter:      waitingtime.Exponential{Rate: 0.3},
	}
	recoveryRule := &transition.Spontaneous{
		From:   statusState("I"),
		To:     statusState("R"),
		Waiter: waitingtime.Exponential{Rate: 0.1},
	}
	s.AddTransition(contactRule)
	s.AddTransition(recoveryRule)

	cS := logger.NewPopulationCounter("S", statusState("S"))
	cI := logger.NewPopulationCounter("I", statusState("I"))
	cR := logger.NewPopulationCounter("R", statusState("R"))
	s.AddLogger(cS)
	s.AddLogger(cI)
	s.AddLogger(cR)

	times := make([]float64, 21)
	for i := range times {
		times[i] = float64(i)
	}
	result, err := s.Run(times)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Columns["S"][0] != 99 || result.Columns["I"][0] != 1 || result.Columns["R"][0] != 0 {
		t.Fatalf("t=0 counts = (%v,%v,%v), want (99,1,0)",
			result.Columns["S"][0], result.Columns["I"][0], result.Columns["R"][0])
	}

	for i := range times {
		sum := result.Columns["S"][i] + result.Columns["I"][i] + result.Columns["R"][i]
		if sum != 100 {
			t.Fatalf("t=%v sum = %v, want 100", times[i], sum)
		}
	}
	for i := 1; i < len(times); i++ {
		if result.Columns["S"][i] > result.Columns["S"][i-1] {
			t.Fatalf("S increased between t=%v and t=%v", times[i-1], times[i])
		}
		if result.Columns["R"][i] < result.Columns["R"][i-1] {
			t.Fatalf("R decreased between t=%v and t=%v", times[i-1], times[i])
		}
	}
}

// S2 — deterministic ordering: two spontaneous rules from the same source
// state, only the first-registered one should ever take effect on a given
// entry.
func TestScenarioDeterministicOrdering(t *testing.T) {
	s, err := sim.NewFromStates([]state.State{statusState("A")})
	if err != nil {
		t.Fatalf("NewFromStates: %v", err)
	}

	ruleAB := &transition.Spontaneous{From: statusState("A"), To: statusState("B"), Waiter: waitingtime.Custom{Fn: func(float64) float64 { return 1.0 }}}
	ruleAC := &transition.Spontaneous{From: statusState("A"), To: statusState("C"), Waiter: waitingtime.Custom{Fn: func(float64) float64 { return 1.0 }}}
	s.AddTransition(ruleAB)
	s.AddTransition(ruleAC)

	if _, err := s.Run([]float64{0, 1.0}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	agent := s.Population.Agents()[0]
	if !agent.Match(statusState("B")) {
		t.Fatalf("expected final state B, got %v", agent.State())
	}
	if agent.Match(statusState("C")) {
		t.Fatalf("agent should never have matched C")
	}
}

// S3 — leave(): a population counter must stop counting a departed agent
// at its death time.
func TestScenarioLeaveAtDeathTime(t *testing.T) {
	s, err := sim.NewFromStates([]state.State{statusState("S")})
	if err != nil {
		t.Fatalf("NewFromStates: %v", err)
	}
	s.Population.Agents()[0].SetDeathTime(5.0)

	counter := logger.NewPopulationCounter("S", statusState("S"))
	s.AddLogger(counter)

	result, err := s.Run([]float64{4.99, 5.01})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Columns["S"][0] != 1 {
		t.Fatalf("count at t=4.99 = %v, want 1", result.Columns["S"][0])
	}
	if result.Columns["S"][1] != 0 {
		t.Fatalf("count at t=5.01 = %v, want 0", result.Columns["S"][1])
	}
}

// S6 — contact transition re-arm: with a deterministic waiter the contact
// event fires at uniformly spaced times while the agent remains in its
// source state.
func TestScenarioContactRearm(t *testing.T) {
	s, err := sim.NewFromStates([]state.State{statusState("I"), statusState("S")})
	if err != nil {
		t.Fatalf("NewFromStates: %v", err)
	}
	agent := s.Population.Agents()[0]
	neighbor := s.Population.Agents()[1]

	mixing := &fixtures.RandomMixing{}
	s.Population.AddContact(mixing)

	rule := &transition.Contact{
		From:        statusState("I"),
		ContactFrom: statusState("S"),
		To:          statusState("I"),
		ContactTo:   statusState("I"),
		Pattern:     mixing,
		Waiter:      waitingtime.Sequence(1.0, 1.0, 1.0),
	}
	s.AddTransition(rule)

	if _, err := s.Run([]float64{0, 1.0}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !neighbor.Match(statusState("I")) {
		t.Fatalf("expected neighbor to transition to I by t=1.0, got %v", neighbor.State())
	}
	if got := agent.Contacts().Time(); got != 2.0 {
		t.Fatalf("expected the contact rule to re-arm for t=2.0, next contact event at %v", got)
	}
}

// Universal property: chronological dispatch. The sequence of times at
// which handlers execute must be non-decreasing.
func TestChronologicalDispatch(t *testing.T) {
	s, err := sim.New(5, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var observed []float64
	for _, a := range s.Population.Agents() {
		for _, delay := range []float64{3, 1, 4, 1, 5, 9, 2, 6} {
			a.Schedule(sim.NewEvent(delay, func(s *sim.Simulation, _ *sim.Agent) bool {
				observed = append(observed, s.CurrentTime())
				return false
			}))
		}
	}

	if _, err := s.Run([]float64{100}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 1; i < len(observed); i++ {
		if observed[i] < observed[i-1] {
			t.Fatalf("dispatch order not chronological: %v before %v", observed[i-1], observed[i])
		}
	}
	if len(observed) != 40 {
		t.Fatalf("observed %d events, want 40", len(observed))
	}
}

// Universal property: edge-trigger. A rule is scheduled exactly once per
// entry into its From pattern; re-entries require a prior exit.
type countingRule struct {
	from  state.State
	calls int
}

func (r *countingRule) FromPattern() state.State { return r.from }
func (r *countingRule) Schedule(float64, *sim.Agent) { r.calls++ }

func TestEdgeTriggerFiresOncePerEntry(t *testing.T) {
	s, err := sim.NewFromStates([]state.State{statusState("S")})
	if err != nil {
		t.Fatalf("NewFromStates: %v", err)
	}
	agent := s.Population.Agents()[0]

	rule := &countingRule{from: statusState("I")}
	s.AddTransition(rule)

	transitions := []string{"I", "I", "S", "I", "S", "S", "I"}
	entries := 0
	prevMatched := agent.Match(statusState("I"))
	for _, to := range transitions {
		agent.Set(statusState(to))
		matched := agent.Match(statusState("I"))
		if !prevMatched && matched {
			entries++
		}
		prevMatched = matched
	}

	if rule.calls != entries {
		t.Fatalf("rule scheduled %d times, want %d entries into I", rule.calls, entries)
	}
}

// Counter transition invariant: report() resets the transition counter to
// zero after reading it.
func TestTransitionCounterResetsAfterReport(t *testing.T) {
	s, err := sim.NewFromStates([]state.State{statusState("A")})
	if err != nil {
		t.Fatalf("NewFromStates: %v", err)
	}
	agent := s.Population.Agents()[0]

	counter := logger.NewTransitionCounter("A_to_B", statusState("A"), statusState("B"))
	s.AddLogger(counter)

	_, _ = s.Run([]float64{0})
	agent.Set(statusState("B"))
	if got := counter.Report(); got != 1 {
		t.Fatalf("Report() = %v, want 1", got)
	}
	if got := counter.Report(); got != 0 {
		t.Fatalf("second Report() = %v, want 0 (must reset)", got)
	}
}

