// Package bandit implements a simple deterministic multi-armed bandit.
// Episodes last a single step: the agent pulls one of NumArms arms and
// receives a reward from an evenly spaced ladder in [0, 1] whose
// assignment to arms is shuffled by the environment seed. The
// observation is a constant vector of length one.
package bandit

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/AdrienBolling/bsuite-tsobs/environment"
	ts "github.com/AdrienBolling/bsuite-tsobs/timestep"
)

const (
	// NumArms is the number of arms of the bandit
	NumArms int = 11

	// DefaultNumEpisodes is the number of episodes an experiment on
	// the bandit runs for when no episode count is given.
	DefaultNumEpisodes int = 10_000
)

// Bandit implements the deterministic multi-armed bandit environment
type Bandit struct {
	rewards []float64
	done    bool
}

// New returns a new Bandit whose arm rewards are shuffled by seed
func New(seed uint64) *Bandit {
	rewards := make([]float64, NumArms)
	for i := range rewards {
		rewards[i] = float64(i) / float64(NumArms-1)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(NumArms, func(i, j int) {
		rewards[i], rewards[j] = rewards[j], rewards[i]
	})

	return &Bandit{rewards: rewards}
}

// Reset resets the environment and returns the first timestep of the
// new episode.
func (b *Bandit) Reset() ts.TimeStep {
	b.done = false
	return ts.NewFirst(b.observation())
}

// Step pulls the argument arm, ending the episode.
func (b *Bandit) Step(action int) (ts.TimeStep, error) {
	if b.done {
		return ts.TimeStep{}, fmt.Errorf("step: episode has ended, " +
			"environment requires reset")
	}
	if action < 0 || action >= NumArms {
		return ts.TimeStep{}, fmt.Errorf("step: illegal action %v "+
			"\n\twant(∈ [0, %v))", action, NumArms)
	}

	b.done = true
	return ts.New(ts.Last, b.rewards[action], 0.0, b.observation(), 1), nil
}

// ObservationSpec returns the observation specification of the
// environment
func (b *Bandit) ObservationSpec() environment.Spec {
	lowerBound := mat.NewVecDense(1, []float64{1.0})
	upperBound := mat.NewVecDense(1, []float64{1.0})

	return environment.NewObservationSpec(1, lowerBound, upperBound)
}

// ActionSpec returns the action specification of the environment
func (b *Bandit) ActionSpec() environment.Spec {
	return environment.NewActionSpec(NumArms)
}

// NumEpisodes returns the default number of episodes to run an
// experiment on the bandit for.
func (b *Bandit) NumEpisodes() int {
	return DefaultNumEpisodes
}

func (b *Bandit) observation() mat.Vector {
	return mat.NewVecDense(1, []float64{1.0})
}
