// Package sim implements the hierarchical event calendar: Event, Calendar,
// Agent, Population, and Simulation form a chain of embeddings (Calendar IS
// an Event, Agent and Population and Simulation ARE Calendars) so that an
// agent is itself an event over its own sub-events, a population is an event
// over its member agents, and a simulation is the outermost calendar.
package sim

// EventHandler is the callback a leaf Event runs when it is dispatched. It
// receives the simulation and the agent the event is semantically
// associated with (threaded down from the topmost Handle call, substituted
// by the nearest enclosing Agent). Returning true asks the owning Calendar
// to reinsert the event immediately after the call returns.
type EventHandler func(s *Simulation, agent *Agent) bool

// Eventer is satisfied by anything that can sit in a Calendar's queue: a
// leaf Event, or any Calendar (including Agent, Population, Simulation,
// since each embeds Calendar). The unexported methods close the interface
// to this package; external callers build leaf events with NewEvent rather
// than implementing Eventer directly.
type Eventer interface {
	Time() float64
	Handle(s *Simulation, agent *Agent) bool
	Owner() *Calendar

	setOwner(c *Calendar)
	setSeq(n uint64)
	getSeq() uint64
	setHeapIndex(i int)
	getHeapIndex() int
}

// Event is a scheduled unit of work: a time, an owner back-reference, and a
// handler. Calendar embeds Event and overrides Time and Handle; Event's own
// Time and Handle implementations are used only by leaf events built with
// NewEvent.
type Event struct {
	time    float64
	handler EventHandler
	owner   *Calendar
	seq     uint64
	heapIdx int
}

// NewEvent builds a detached leaf event scheduled to fire at t, running
// handler when dispatched.
func NewEvent(t float64, handler EventHandler) *Event {
	return &Event{time: t, handler: handler, heapIdx: -1}
}

// Time reports the event's scheduled time.
func (e *Event) Time() float64 { return e.time }

// Handle runs the event's handler. A leaf event with a nil handler never
// reschedules itself.
func (e *Event) Handle(s *Simulation, agent *Agent) bool {
	if e.handler == nil {
		return false
	}
	return e.handler(s, agent)
}

// Owner returns the Calendar currently holding this event, or nil if
// detached.
func (e *Event) Owner() *Calendar { return e.owner }

func (e *Event) setOwner(c *Calendar)   { e.owner = c }
func (e *Event) setSeq(n uint64)        { e.seq = n }
func (e *Event) getSeq() uint64         { return e.seq }
func (e *Event) setHeapIndex(i int)     { e.heapIdx = i }
func (e *Event) getHeapIndex() int      { return e.heapIdx }
