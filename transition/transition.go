// Package transition implements the two transition rule shapes named in the
// component design: Spontaneous (fires from the agent's own main queue) and
// Contact (fires from the agent's contact sub-calendar and re-arms while the
// agent remains in its source state).
package transition

import (
	"math"

	"github.com/signalsfoundry/abmsim/sim"
	"github.com/signalsfoundry/abmsim/state"
	"github.com/signalsfoundry/abmsim/waitingtime"
)

// Predicate gates whether a transition actually takes effect once its timer
// fires.
type Predicate func(t float64, agent *sim.Agent) bool

// Notify is called after a spontaneous transition's state change has been
// applied.
type Notify func(t float64, agent *sim.Agent)

// Spontaneous is a transition rule whose event fires from the agent's own
// main queue: from, to, a waiting-time sampler, and two optional
// predicates (pre-change "should it happen", post-change "notify").
type Spontaneous struct {
	From      state.State
	To        state.State
	Waiter    waitingtime.WaitingTime
	Predicate Predicate
	Notify    Notify
}

// FromPattern implements sim.Rule.
func (r *Spontaneous) FromPattern() state.State { return r.From }

// Schedule implements sim.Rule: it samples a delay and inserts a one-shot
// TransitionEvent onto the agent's main queue.
func (r *Spontaneous) Schedule(currentTime float64, agent *sim.Agent) {
	delta := r.Waiter.Sample(currentTime)
	if math.IsInf(delta, 1) {
		return
	}
	agent.Schedule(sim.NewEvent(currentTime+delta, r.fire))
}

// fire is the TransitionEvent handler: re-checks membership in From (the
// agent may have moved on since Schedule ran) and applies To if so. It is
// always one-shot; it never asks to be reinserted.
func (r *Spontaneous) fire(t *sim.Simulation, agent *sim.Agent) bool {
	if !agent.Match(r.From) {
		return false
	}
	if r.Predicate != nil && !r.Predicate(t.CurrentTime(), agent) {
		return false
	}
	agent.Set(r.To)
	if r.Notify != nil {
		r.Notify(t.CurrentTime(), agent)
	}
	return false
}

// ContactNotify is called after a contact transition's state change has
// been applied.
type ContactNotify func(t float64, agent, contact *sim.Agent)

// ContactPredicate gates whether a contact transition takes effect.
type ContactPredicate func(t float64, agent, contact *sim.Agent) bool

// Contact is a contact-mediated transition rule: it draws a neighbor from
// a contact pattern, schedules against the agent's contact sub-calendar,
// and re-arms itself on every firing so long as the agent remains in From.
type Contact struct {
	From        state.State
	ContactFrom state.State
	To          state.State
	ContactTo   state.State
	Pattern     sim.Contact
	Waiter      waitingtime.WaitingTime
	Predicate   ContactPredicate
	Notify      ContactNotify
}

// FromPattern implements sim.Rule.
func (r *Contact) FromPattern() state.State { return r.From }

// Schedule implements sim.Rule: it queries the contact pattern for agent's
// neighbors, independently samples a delay for each, and schedules a
// ContactEvent against the soonest one onto the agent's contact
// sub-calendar.
func (r *Contact) Schedule(currentTime float64, agent *sim.Agent) {
	neighbors := r.Pattern.Neighbors(currentTime, agent)
	if len(neighbors) == 0 {
		return
	}

	var best *sim.Agent
	bestDelta := math.Inf(1)
	for _, c := range neighbors {
		delta := r.Waiter.Sample(currentTime)
		if delta < bestDelta {
			bestDelta = delta
			best = c
		}
	}
	if best == nil || math.IsInf(bestDelta, 1) {
		return
	}

	contact := best
	agent.Contacts().Schedule(sim.NewEvent(currentTime+bestDelta, func(t *sim.Simulation, a *sim.Agent) bool {
		return r.fire(t, a, contact)
	}))
}

// fire is the ContactEvent handler. If the agent and contact no longer
// share a population the event silently expires. Otherwise, if both sides
// still match their source patterns and the predicate (if any) accepts,
// both states are updated and Notify is called; the rule then re-arms
// itself as long as the agent is still in From, independent of whether
// this particular draw took effect.
func (r *Contact) fire(t *sim.Simulation, agent, contact *sim.Agent) bool {
	if agent.Population() == nil || agent.Population() != contact.Population() {
		return false
	}

	if agent.Match(r.From) && contact.Match(r.ContactFrom) {
		if r.Predicate == nil || r.Predicate(t.CurrentTime(), agent, contact) {
			if !agent.Match(r.To) {
				agent.Set(r.To)
			}
			if !contact.Match(r.ContactTo) {
				contact.Set(r.ContactTo)
			}
			if r.Notify != nil {
				r.Notify(t.CurrentTime(), agent, contact)
			}
		}
	}

	if agent.Match(r.From) {
		r.Schedule(t.CurrentTime(), agent)
	}
	return false
}
