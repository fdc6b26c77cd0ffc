package sim

import (
	"sync"

	"github.com/signalsfoundry/abmsim/state"
)

// Agent is a Calendar that additionally carries a State, a private
// sub-calendar of contact events, optional typed per-handle storage, an
// identity assigned on first attachment, and a within-population index.
type Agent struct {
	Calendar
	state    state.State
	contacts Calendar

	id         uint64
	index      int
	population *Population
	deathEvent *Event
	storage    []any
}

// NewAgent constructs a detached agent with the given initial state. Its
// contact sub-calendar is scheduled as a permanent child of the agent
// (invariant A1); it is never removed, only cleared, for the agent's
// lifetime.
func NewAgent(initial state.State) *Agent {
	a := &Agent{state: initial, index: -1}
	a.Calendar.Schedule(&a.contacts)
	return a
}

// Handle overrides Calendar.Handle: it always substitutes itself as the
// agent context for everything nested beneath it, and reports membership
// in a population rather than its own queue's emptiness — an agent with no
// pending direct events still has its (permanent) contact sub-calendar, and
// in any case stays scheduled on the population for as long as it is a
// member.
func (a *Agent) Handle(s *Simulation, _ *Agent) bool {
	a.Calendar.Handle(s, a)
	if a.contacts.Owner() == nil {
		// Calendar.Handle does not reinsert a child calendar left empty;
		// put the contact sub-calendar back so it stays a child (A1).
		a.Calendar.Schedule(&a.contacts)
	}
	return a.population != nil
}

// ID returns the agent's simulation-wide identity, zero until first
// attached to a simulation (invariant A2).
func (a *Agent) ID() uint64 { return a.id }

// Index returns the agent's position within its current population, or -1
// if unattached.
func (a *Agent) Index() int { return a.index }

// Population returns the population currently containing this agent, or
// nil.
func (a *Agent) Population() *Population { return a.population }

// State returns the agent's current state.
func (a *Agent) State() state.State { return a.state }

// Contacts returns the agent's private contact sub-calendar, the target for
// ContactEvents scheduled by contact-mediated transition rules.
func (a *Agent) Contacts() *Calendar { return &a.contacts }

// Match reports whether the agent's current state matches rule.
func (a *Agent) Match(rule state.State) bool { return a.state.Match(rule) }

// Set merges newState into the agent's current state and emits a
// state-change to the containing population (and, through it, the
// simulation's loggers and rules) carrying the pre-merge state as "from".
func (a *Agent) Set(newState state.State) {
	from := a.state.Clone()
	a.state = a.state.Merge(newState)
	a.stateChanged(from)
}

// Report rebroadcasts the agent's current state as a state-change from the
// empty state. It is used both when the agent first joins a population
// (before any loggers may exist) and once more from Population.Report at
// the start of a run, so loggers registered after construction still
// observe every agent's baseline state.
func (a *Agent) Report() {
	a.stateChanged(state.Empty())
}

// Leave removes the agent from its population, having first emitted a
// final state-change to empty so loggers observe the departure, then
// restores the agent's pre-exit state on the returned (now detached)
// object.
func (a *Agent) Leave() *Agent {
	if a.population == nil {
		return a
	}
	pop := a.population
	saved := a.state.Clone()
	a.state = state.Empty()
	a.stateChanged(saved)
	pop.RemoveAgent(a)
	a.state = saved
	return a
}

// SetDeathTime schedules a one-shot event at t whose handler calls Leave.
// A prior death event, if any, is unscheduled first.
func (a *Agent) SetDeathTime(t float64) {
	if a.deathEvent != nil {
		a.Unschedule(a.deathEvent)
	}
	a.deathEvent = NewEvent(t, func(_ *Simulation, agent *Agent) bool {
		agent.Leave()
		return false
	})
	a.Schedule(a.deathEvent)
}

// Attached is called by a Population the first time the agent joins a
// simulation; it assigns id from the simulation's id generator if the
// agent has never been attached before.
func (a *Agent) Attached(s *Simulation) {
	if a.id == 0 {
		a.id = s.nextID()
	}
}

func (a *Agent) stateChanged(from state.State) {
	if a.population != nil {
		a.population.stateChanged(a, from)
	}
}

// storageRegistry maps per-agent storage slot names to stable, process-wide
// small integer handles, the generalization of the original's
// name -> AgentInfo<T> handle assignment.
var (
	storageRegistryMu  sync.Mutex
	storageRegistry    = map[string]int{}
	storageNextHandle  int
)

// RequestStorage returns the stable handle assigned to name, allocating one
// on first use. Handles are process-wide and never released; the number of
// distinct storage names a program uses is expected to be small and fixed.
func RequestStorage(name string) int {
	storageRegistryMu.Lock()
	defer storageRegistryMu.Unlock()
	if h, ok := storageRegistry[name]; ok {
		return h
	}
	h := storageNextHandle
	storageNextHandle++
	storageRegistry[name] = h
	return h
}

// Slot is a typed view onto one of an agent's opaque storage handles,
// replacing the original's Storage<T> template. Each agent carries its own
// values; Set releases whatever was previously stored at the handle simply
// by dropping Go's last reference to it.
type Slot[T any] struct {
	handle int
}

// NewSlot allocates (or reuses) the storage handle named name, typed as T.
func NewSlot[T any](name string) Slot[T] {
	return Slot[T]{handle: RequestStorage(name)}
}

// Get returns the value stored in the slot for a, and whether one was set.
func (s Slot[T]) Get(a *Agent) (T, bool) {
	var zero T
	if s.handle >= len(a.storage) || a.storage[s.handle] == nil {
		return zero, false
	}
	v, ok := a.storage[s.handle].(T)
	return v, ok
}

// Set stores v in the slot for a.
func (s Slot[T]) Set(a *Agent, v T) {
	for len(a.storage) <= s.handle {
		a.storage = append(a.storage, nil)
	}
	a.storage[s.handle] = v
}

// Release clears the slot for a.
func (s Slot[T]) Release(a *Agent) {
	if s.handle < len(a.storage) {
		a.storage[s.handle] = nil
	}
}
