package actorcritic

import (
	"fmt"

	"github.com/AdrienBolling/bsuite-tsobs/agent"
	"github.com/AdrienBolling/bsuite-tsobs/environment"
	"github.com/AdrienBolling/bsuite-tsobs/initwfn"
	"github.com/AdrienBolling/bsuite-tsobs/network"
	"github.com/AdrienBolling/bsuite-tsobs/solver"
)

// Default hyperparameters
const (
	DefaultStepSize       float64 = 3e-3
	DefaultSequenceLength int     = 32
	DefaultDiscount       float64 = 0.99
	DefaultLambda         float64 = 0.9
)

// Config represents a configuration for creating an ActorCritic agent.
// Config is JSON serializable.
type Config struct {
	// Torso architecture of the policy/value network
	HiddenSizes []int
	Biases      []bool
	Activations []*network.Activation

	InitWFn *initwfn.InitWFn
	Solver  *solver.Solver

	// SequenceLength is the number of transitions accumulated before
	// a learning step is forced
	SequenceLength int

	// Discount is the agent-level discount factor γ, composed
	// multiplicatively with the environment-reported discounts
	Discount float64

	// Lambda is the mixing constant of the TD(λ) return estimate
	Lambda float64
}

// DefaultConfig returns the default ActorCritic configuration: a
// [128, 64] ReLU torso, Adam with a step size of 3e-3, and weights
// drawn from a Glorot Uniform initializer seeded with seed.
func DefaultConfig(seed uint64) (Config, error) {
	init, err := initwfn.NewGlorotU(1.0, seed)
	if err != nil {
		return Config{}, fmt.Errorf("defaultconfig: %v", err)
	}

	sol, err := solver.NewDefaultAdam(DefaultStepSize, 1)
	if err != nil {
		return Config{}, fmt.Errorf("defaultconfig: %v", err)
	}

	return Config{
		HiddenSizes:    []int{128, 64},
		Biases:         []bool{true, true},
		Activations:    []*network.Activation{network.ReLU(), network.ReLU()},
		InitWFn:        init,
		Solver:         sol,
		SequenceLength: DefaultSequenceLength,
		Discount:       DefaultDiscount,
		Lambda:         DefaultLambda,
	}, nil
}

// Validate returns an error describing whether or not the
// configuration is valid.
func (c Config) Validate() error {
	if len(c.HiddenSizes) == 0 {
		return fmt.Errorf("validate: at least one hidden layer required")
	}
	if len(c.HiddenSizes) != len(c.Biases) ||
		len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("validate: illegal architecture description"+
			"\n\twant(%v sizes, biases, and activations)"+
			"\n\thave(%v, %v, %v)", len(c.HiddenSizes), len(c.HiddenSizes),
			len(c.Biases), len(c.Activations))
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: no weight initializer given")
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: no solver given")
	}
	if c.SequenceLength <= 0 {
		return fmt.Errorf("validate: illegal sequence length %v",
			c.SequenceLength)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: illegal discount %v", c.Discount)
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("validate: illegal lambda %v", c.Lambda)
	}
	return nil
}

// CreateAgent creates the ActorCritic agent that the Config describes
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(env.ObservationSpec(), env.ActionSpec(), c, seed)
}

// Default creates an ActorCritic agent with default hyperparameters on
// an environment.
func Default(env environment.Environment, seed uint64) (*ActorCritic,
	error) {
	config, err := DefaultConfig(seed)
	if err != nil {
		return nil, fmt.Errorf("default: %v", err)
	}
	return New(env.ObservationSpec(), env.ActionSpec(), config, seed)
}
