package sim

import (
	"testing"

	"github.com/signalsfoundry/abmsim/state"
)

func TestAgentContactSubCalendarIsPermanentChild(t *testing.T) {
	a := NewAgent(state.Empty())
	if a.Contacts().Owner() != &a.Calendar {
		t.Fatalf("contact sub-calendar must be a child of the agent (invariant A1)")
	}
}

func TestAgentIDAssignedOnceOnAttachment(t *testing.T) {
	a := NewAgent(state.Empty())
	if a.ID() != 0 {
		t.Fatalf("unattached agent must have id 0 (invariant A2)")
	}

	s, err := New(0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Population.AddAgent(a); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if a.ID() == 0 {
		t.Fatalf("attached agent must have a non-zero id")
	}

	first := a.ID()
	a.Attached(s) // idempotent: id must not change
	if a.ID() != first {
		t.Fatalf("id changed on second Attached call: %d -> %d", first, a.ID())
	}
}

func TestAgentSetMergesAndEmitsStateChange(t *testing.T) {
	a := NewAgent(state.New(state.Str("status", "S")))
	a.Set(state.New(state.Str("status", "I")))

	got, ok := a.State().Get("status")
	if !ok || got.Strings[0] != "I" {
		t.Fatalf("expected status == I after Set, got %v", got)
	}
}

func TestAgentLeaveRestoresStateAfterRemoval(t *testing.T) {
	s, err := New(0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := NewAgent(state.New(state.Str("status", "I")))
	if err := s.Population.AddAgent(a); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}

	departed := a.Leave()
	if departed.Population() != nil {
		t.Fatalf("departed agent must not have a population")
	}
	got, ok := departed.State().Get("status")
	if !ok || got.Strings[0] != "I" {
		t.Fatalf("Leave must restore the pre-exit state, got %v ok=%v", got, ok)
	}
}

func TestAgentSetDeathTimeSchedulesLeave(t *testing.T) {
	s, err := New(0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := NewAgent(state.New(state.Str("status", "S")))
	if err := s.Population.AddAgent(a); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	a.SetDeathTime(5.0)

	if _, err := s.Run([]float64{4.99}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Population() == nil {
		t.Fatalf("agent should still be a member before its death time")
	}

	if _, err := s.Resume([]float64{5.01}); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if a.Population() != nil {
		t.Fatalf("agent should have left the population after its death time")
	}
}

func TestSlotGetSetRelease(t *testing.T) {
	a := NewAgent(state.Empty())
	slot := NewSlot[int]("sim.test.slot")

	if _, ok := slot.Get(a); ok {
		t.Fatalf("expected no value before Set")
	}
	slot.Set(a, 42)
	v, ok := slot.Get(a)
	if !ok || v != 42 {
		t.Fatalf("Slot.Get() = %v, %v; want 42, true", v, ok)
	}
	slot.Release(a)
	if _, ok := slot.Get(a); ok {
		t.Fatalf("expected no value after Release")
	}
}

func TestRequestStorageIsStablePerName(t *testing.T) {
	h1 := RequestStorage("sim.test.stable")
	h2 := RequestStorage("sim.test.stable")
	if h1 != h2 {
		t.Fatalf("RequestStorage(same name) returned different handles: %d, %d", h1, h2)
	}
}
