package sim

// Contact is the minimal interface a contact-network implementation must
// satisfy. Concrete networks (random mixing, configuration model, spatial
// proximity) are external collaborators; this package only depends on the
// interface.
type Contact interface {
	// Add is called whenever an agent joins the population the pattern is
	// attached to.
	Add(agent *Agent)
	// Remove is called whenever an agent leaves the population.
	Remove(agent *Agent)
	// Attach finalizes network construction; it is called once, before the
	// first simulation step, after every agent present at attach time has
	// already been added.
	Attach(p *Population)
	// Neighbors returns agent's neighbors at time t. The returned slice is
	// borrowed: it need only remain valid until the next call into the
	// pattern.
	Neighbors(t float64, agent *Agent) []*Agent
}
