// Package fixtures holds minimal, unexported-from-the-library-surface test
// doubles used only to exercise interfaces whose concrete implementations
// are explicitly out of scope for this repository (see sim.Contact).
package fixtures

import "github.com/signalsfoundry/abmsim/sim"

// RandomMixing is the simplest possible sim.Contact: every agent's
// neighbors are every other member of the population at the time Attach
// was called. It exists solely to drive the random-mixing SIR and contact
// re-arm scenario tests; callers needing an actual contact network should
// bring their own.
type RandomMixing struct {
	members []*sim.Agent
}

// Add implements sim.Contact. RandomMixing only needs the final membership
// at Attach time, so Add is a no-op; membership is captured in Attach.
func (r *RandomMixing) Add(*sim.Agent) {}

// Remove implements sim.Contact as a no-op for the same reason.
func (r *RandomMixing) Remove(*sim.Agent) {}

// Attach captures the population's current membership.
func (r *RandomMixing) Attach(p *sim.Population) {
	r.members = append([]*sim.Agent(nil), p.Agents()...)
}

// Neighbors returns every captured member except agent itself.
func (r *RandomMixing) Neighbors(_ float64, agent *sim.Agent) []*sim.Agent {
	out := make([]*sim.Agent, 0, len(r.members))
	for _, m := range r.members {
		if m != agent {
			out = append(out, m)
		}
	}
	return out
}
