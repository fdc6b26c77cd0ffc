package sim

import "github.com/signalsfoundry/abmsim/state"

// Rule is the interface a transition rule exposes to the simulation's
// edge-trigger dispatch. On every state change the simulation checks, for
// each registered rule, whether the agent just entered FromPattern (it did
// not match before the change and does now); if so it calls Schedule.
type Rule interface {
	FromPattern() state.State
	Schedule(currentTime float64, agent *Agent)
}
