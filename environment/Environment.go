// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/AdrienBolling/bsuite-tsobs/timestep"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action or an observation.
type SpecType int

const (
	Action SpecType = iota
	Observation
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action or observation in an environment.
// Observations are flat vectors; Shape gives their length. Actions are
// discrete indices in [0, NumActions).
type Spec struct {
	Type       SpecType
	Shape      int
	NumActions int
	LowerBound mat.Vector
	UpperBound mat.Vector
}

// NewObservationSpec returns the specification of a flat observation
// vector of the given length with the given bounds.
func NewObservationSpec(length int, lowerBound, upperBound mat.Vector) Spec {
	return Spec{
		Type:       Observation,
		Shape:      length,
		LowerBound: lowerBound,
		UpperBound: upperBound,
	}
}

// NewActionSpec returns the specification of a discrete action set
// with numActions actions.
func NewActionSpec(numActions int) Spec {
	return Spec{
		Type:       Action,
		NumActions: numActions,
	}
}

// Environment implements a simulated environment with discrete
// actions. Environments start ready to use; Reset begins a new episode
// and returns its First timestep.
type Environment interface {
	Reset() timestep.TimeStep
	Step(action int) (timestep.TimeStep, error)
	ObservationSpec() Spec
	ActionSpec() Spec

	// NumEpisodes returns the number of episodes an experiment on
	// this environment runs for by default.
	NumEpisodes() int
}
