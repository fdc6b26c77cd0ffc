package sim

import (
	"testing"

	"github.com/signalsfoundry/abmsim/state"
)

func checkIndexInvariant(t *testing.T, p *Population) {
	t.Helper()
	for i, a := range p.Agents() {
		if a.Index() != i {
			t.Fatalf("invariant P1 violated: agents[%d].Index() = %d", i, a.Index())
		}
	}
}

func TestPopulationAddAssignsIndex(t *testing.T) {
	p := &Population{}
	a0 := NewAgent(state.Empty())
	a1 := NewAgent(state.Empty())
	a2 := NewAgent(state.Empty())

	for _, a := range []*Agent{a0, a1, a2} {
		if err := p.AddAgent(a); err != nil {
			t.Fatalf("AddAgent: %v", err)
		}
	}
	checkIndexInvariant(t, p)
}

func TestPopulationRemoveSwapsWithLast(t *testing.T) {
	p := &Population{}
	agents := make([]*Agent, 5)
	for i := range agents {
		agents[i] = NewAgent(state.Empty())
		if err := p.AddAgent(agents[i]); err != nil {
			t.Fatalf("AddAgent: %v", err)
		}
	}

	if _, err := p.RemoveAgent(agents[1]); err != nil {
		t.Fatalf("RemoveAgent: %v", err)
	}
	checkIndexInvariant(t, p)
	if p.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", p.Len())
	}
	if agents[1].Population() != nil {
		t.Fatalf("removed agent must have nil population")
	}
}

func TestPopulationAddRejectsExistingMember(t *testing.T) {
	p := &Population{}
	a := NewAgent(state.Empty())
	if err := p.AddAgent(a); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if err := p.AddAgent(a); err == nil {
		t.Fatalf("expected error re-adding an existing member")
	}
}

func TestPopulationRemoveRejectsNonMember(t *testing.T) {
	p := &Population{}
	a := NewAgent(state.Empty())
	if _, err := p.RemoveAgent(a); err == nil {
		t.Fatalf("expected error removing a non-member")
	}
}

func TestPopulationScheduleConsistentAfterChurn(t *testing.T) {
	p := &Population{}
	agents := make([]*Agent, 10)
	for i := range agents {
		agents[i] = NewAgent(state.Empty())
		if err := p.AddAgent(agents[i]); err != nil {
			t.Fatalf("AddAgent: %v", err)
		}
		agents[i].Schedule(newLeaf(float64(10 - i)))
	}
	if _, err := p.RemoveAgent(agents[3]); err != nil {
		t.Fatalf("RemoveAgent: %v", err)
	}
	if _, err := p.RemoveAgent(agents[7]); err != nil {
		t.Fatalf("RemoveAgent: %v", err)
	}
	checkBijection(t, &p.Calendar)
	checkIndexInvariant(t, p)
}
