// Package agent defines an agent interface
package agent

import (
	"github.com/AdrienBolling/bsuite-tsobs/environment"
	"github.com/AdrienBolling/bsuite-tsobs/timestep"
)

// Agent determines the implementation details of an agent or
// algorithm.
//
// An Agent has two entry points. SelectAction chooses an action for
// the current timestep; it never changes what the agent has learned.
// Update records that an action led from one timestep to the next and
// gives the agent the chance to learn from the transition. The driver
// calls Update after every environment step; the agent decides for
// itself when a learning step actually happens.
type Agent interface {
	SelectAction(t timestep.TimeStep) int
	Update(prev timestep.TimeStep, action int, next timestep.TimeStep) error
}

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}
