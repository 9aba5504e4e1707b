// Package catch implements the Catch environment, a grid of falling
// balls. The agent moves a paddle along the bottom row of the grid and
// must catch a ball dropped from a random column of the top row. An
// episode ends when the ball reaches the bottom row, with a reward of
// +1 if the paddle is under the ball and -1 otherwise. All other steps
// have a reward of 0.
package catch

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/AdrienBolling/bsuite-tsobs/environment"
	ts "github.com/AdrienBolling/bsuite-tsobs/timestep"
)

const (
	// Rows and Columns give the size of the grid of falling balls
	Rows    int = 10
	Columns int = 5

	// Actions available in the environment
	MoveLeft  int = 0
	Stay      int = 1
	MoveRight int = 2

	// DefaultNumEpisodes is the number of episodes an experiment on
	// Catch runs for when no episode count is given.
	DefaultNumEpisodes int = 10_000
)

// Catch implements the falling-ball grid environment. Observations are
// the grid flattened row-major into a vector, with 1.0 at the ball and
// paddle positions and 0.0 elsewhere.
type Catch struct {
	rng *rand.Rand

	ballRow   int
	ballCol   int
	paddleCol int

	stepNum int
	done    bool
}

// New returns a new Catch environment with ball columns drawn from a
// random number generator seeded with seed.
func New(seed uint64) *Catch {
	c := &Catch{rng: rand.New(rand.NewSource(seed))}
	c.Reset()
	return c
}

// Reset resets the environment, dropping a new ball from a random
// column, and returns the first timestep of the new episode.
func (c *Catch) Reset() ts.TimeStep {
	c.ballRow = 0
	c.ballCol = c.rng.Intn(Columns)
	c.paddleCol = Columns / 2
	c.stepNum = 0
	c.done = false

	return ts.NewFirst(c.observation())
}

// Step takes one environmental step given the argument action and
// returns the next timestep.
func (c *Catch) Step(action int) (ts.TimeStep, error) {
	if c.done {
		return ts.TimeStep{}, fmt.Errorf("step: episode has ended, " +
			"environment requires reset")
	}
	if action < MoveLeft || action > MoveRight {
		return ts.TimeStep{}, fmt.Errorf("step: illegal action %v "+
			"\n\twant(∈ [0, %v))", action, 1+MoveRight-MoveLeft)
	}

	// Move the paddle, keeping it on the grid
	c.paddleCol += action - Stay
	if c.paddleCol < 0 {
		c.paddleCol = 0
	} else if c.paddleCol >= Columns {
		c.paddleCol = Columns - 1
	}

	// Drop the ball one row
	c.ballRow++
	c.stepNum++

	if c.ballRow == Rows-1 {
		c.done = true
		reward := -1.0
		if c.ballCol == c.paddleCol {
			reward = 1.0
		}
		return ts.New(ts.Last, reward, 0.0, c.observation(), c.stepNum), nil
	}

	return ts.New(ts.Mid, 0.0, 1.0, c.observation(), c.stepNum), nil
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Catch) ObservationSpec() environment.Spec {
	length := Rows * Columns
	lowerBound := mat.NewVecDense(length, nil)

	ones := make([]float64, length)
	for i := range ones {
		ones[i] = 1.0
	}
	upperBound := mat.NewVecDense(length, ones)

	return environment.NewObservationSpec(length, lowerBound, upperBound)
}

// ActionSpec returns the action specification of the environment
func (c *Catch) ActionSpec() environment.Spec {
	return environment.NewActionSpec(1 + MoveRight - MoveLeft)
}

// NumEpisodes returns the default number of episodes to run an
// experiment on Catch for.
func (c *Catch) NumEpisodes() int {
	return DefaultNumEpisodes
}

// observation constructs the flattened grid observation for the
// current state.
func (c *Catch) observation() mat.Vector {
	board := make([]float64, Rows*Columns)
	board[c.ballRow*Columns+c.ballCol] = 1.0
	board[(Rows-1)*Columns+c.paddleCol] = 1.0

	return mat.NewVecDense(len(board), board)
}
