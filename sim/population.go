package sim

import (
	"fmt"

	"github.com/signalsfoundry/abmsim/state"
)

// Population is a Calendar whose children are its member agents. It holds
// an ordered vector of agents (position == Agent.Index, invariant P1) and
// an ordered list of contact patterns. Because Population embeds Calendar
// the same way Agent does, a Population is itself an Eventer and could in
// principle nest inside another Population; this repository exercises only
// the flat, single-level arrangement (the root Population is the
// Simulation).
type Population struct {
	Calendar
	sim      *Simulation
	agents   []*Agent
	contacts []Contact

	contactsAttached bool
}

// AddAgent adds agent to the population: assigns its index, schedules it
// onto the population's calendar, registers it with every contact pattern
// already attached, attaches it to the owning simulation if this is its
// first population, and emits an initial state-change so any logger
// present at this point counts the arrival.
func (p *Population) AddAgent(agent *Agent) error {
	if agent.population == p {
		return fmt.Errorf("%w: agent already a member of this population", ErrAlreadyMember)
	}
	if agent.population != nil {
		return fmt.Errorf("%w: agent already a member of another population", ErrAlreadyMember)
	}

	agent.index = len(p.agents)
	p.agents = append(p.agents, agent)
	p.Calendar.Schedule(agent)
	agent.population = p

	if p.sim != nil && agent.id == 0 {
		agent.Attached(p.sim)
	}
	agent.Report()

	for _, c := range p.contacts {
		c.Add(agent)
	}
	return nil
}

// RemoveAgent removes agent from the population: detaches it from every
// contact pattern, clears its contact sub-calendar, unschedules it from the
// population's calendar, and swaps it out of the agent vector (invariant
// P1 is restored by updating the displaced agent's index).
func (p *Population) RemoveAgent(agent *Agent) (*Agent, error) {
	if agent.population != p {
		return nil, fmt.Errorf("%w: agent not a member of this population", ErrNotMember)
	}

	for _, c := range p.contacts {
		c.Remove(agent)
	}
	agent.contacts.ClearEvents()

	last := len(p.agents) - 1
	idx := agent.index
	p.agents[idx] = p.agents[last]
	p.agents[idx].index = idx
	p.agents[last] = nil
	p.agents = p.agents[:last]

	p.Calendar.Unschedule(agent)
	agent.population = nil
	agent.index = -1
	return agent, nil
}

// AddContact appends pattern to the population's contact-pattern list and
// registers every current member with it.
func (p *Population) AddContact(pattern Contact) {
	p.contacts = append(p.contacts, pattern)
	for _, a := range p.agents {
		pattern.Add(a)
	}
}

// Agents returns the population's members in index order. The caller must
// not mutate the returned slice.
func (p *Population) Agents() []*Agent { return p.agents }

// Len reports the number of member agents.
func (p *Population) Len() int { return len(p.agents) }

// Report attaches every contact pattern (idempotently, only on the first
// call), then has every member agent rebroadcast its current state. A
// population's own state-change is a no-op: this design carries no
// separate State field on Population, only on Agent.
func (p *Population) Report() {
	if !p.contactsAttached {
		for _, c := range p.contacts {
			c.Attach(p)
		}
		p.contactsAttached = true
	}
	for _, a := range p.agents {
		a.Report()
	}
}

func (p *Population) stateChanged(agent *Agent, from state.State) {
	if p.sim != nil {
		p.sim.onStateChanged(agent, from)
	}
}
