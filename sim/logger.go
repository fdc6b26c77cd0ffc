package sim

import "github.com/signalsfoundry/abmsim/state"

// Logger observes every state change in the simulation and produces a
// scalar time series via Report. Name identifies the logger's column in a
// Result; AddLogger ignores duplicates by identity, not by Name.
type Logger interface {
	Name() string
	Log(agent *Agent, from state.State)
	Report() float64
}
