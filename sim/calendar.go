package sim

import (
	"container/heap"
	"math"
)

// eventHeap is a container/heap.Interface over Eventer, ordered by time and
// then by insertion sequence within the owning calendar (the tie-break
// contract in the component design: "insertion order within a single
// calendar"). This is the idiomatic event-queue shape used throughout the
// corpus's scheduler code, generalized here to a heap of heterogeneous
// Eventer values rather than a single concrete event struct.
type eventHeap []Eventer

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].Time(), h[j].Time()
	if ti != tj {
		return ti < tj
	}
	return h[i].getSeq() < h[j].getSeq()
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].setHeapIndex(i)
	h[j].setHeapIndex(j)
}

func (h *eventHeap) Push(x any) {
	e := x.(Eventer)
	e.setHeapIndex(len(*h))
	*h = append(*h, e)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.setHeapIndex(-1)
	return e
}

// Calendar is a sub-type of Event that owns a priority queue of child
// events. Its own Time is the minimum time among its children, or +Inf when
// empty (invariant C1). Scheduling and unscheduling re-key the calendar
// inside its own parent whenever the minimum changes, recursively, so that
// invariant C2 holds all the way to the root.
type Calendar struct {
	Event
	queue      eventHeap
	seqCounter uint64
}

// Time overrides Event.Time: a calendar's time is always derived from its
// queue, never stored directly.
func (c *Calendar) Time() float64 {
	if len(c.queue) == 0 {
		return math.Inf(1)
	}
	return c.queue[0].Time()
}

// Len reports the number of direct children currently scheduled.
func (c *Calendar) Len() int { return len(c.queue) }

// Schedule detaches e from its current owner (if any) and inserts it into
// c's queue, re-keying c inside its own parent if the insertion lowered c's
// minimum. Schedule is O(log n) locally and O(depth * log n) overall.
func (c *Calendar) Schedule(e Eventer) {
	if owner := e.Owner(); owner != nil {
		owner.Unschedule(e)
	}
	before := c.Time()
	e.setSeq(c.nextSeq())
	e.setOwner(c)
	heap.Push(&c.queue, e)
	if after := c.Time(); after != before {
		c.rekeyUpward()
	}
}

// Unschedule removes e from c if c currently owns it; otherwise it is a
// silent no-op (an event can only ever be removed by its actual owner).
func (c *Calendar) Unschedule(e Eventer) {
	if e.Owner() != c {
		return
	}
	before := c.Time()
	heap.Remove(&c.queue, e.getHeapIndex())
	e.setOwner(nil)
	if after := c.Time(); after != before {
		c.rekeyUpward()
	}
}

// ClearEvents detaches every direct child, leaving c empty, and re-keys
// upward if that changed c's minimum.
func (c *Calendar) ClearEvents() {
	before := c.Time()
	for _, e := range c.queue {
		e.setOwner(nil)
		e.setHeapIndex(-1)
	}
	c.queue = nil
	if after := c.Time(); after != before {
		c.rekeyUpward()
	}
}

// Handle overrides Event.Handle: it pops the minimum child, dispatches it
// with (s, agent) unchanged, reinserts it only if its handler asked to be
// rescheduled, and reports whether c is still non-empty so its own owner
// knows whether to keep scheduling c.
func (c *Calendar) Handle(s *Simulation, agent *Agent) bool {
	if len(c.queue) == 0 {
		return false
	}
	e := heap.Pop(&c.queue).(Eventer)
	e.setOwner(nil)
	if e.Handle(s, agent) {
		c.Schedule(e)
	}
	return len(c.queue) > 0
}

// rekeyUpward fixes c's position inside its parent after c's own minimum
// changed, propagating further up only while the parent's minimum itself
// keeps changing. The root calendar (owner == nil) stops the recursion.
func (c *Calendar) rekeyUpward() {
	parent := c.Owner()
	if parent == nil {
		return
	}
	before := parent.Time()
	heap.Fix(&parent.queue, c.getHeapIndex())
	if after := parent.Time(); after != before {
		parent.rekeyUpward()
	}
}

func (c *Calendar) nextSeq() uint64 {
	c.seqCounter++
	return c.seqCounter
}
