// Package sequence implements a buffer that accumulates trajectories
// of fixed length. The buffer stores up to sequenceLength transitions
// before it must be drained, regardless of episode boundaries, and may
// be drained early to flush a partial trajectory when an episode ends.
package sequence

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	ts "github.com/AdrienBolling/bsuite-tsobs/timestep"
)

// Trajectory holds the transitions of one drained segment collapsed
// into parallel arrays. Observations is flattened row-major with
// Len()+1 rows of ObsDim columns each: the temporal-difference
// bootstrap target needs the observation at t+1, so there is always
// exactly one more observation than there are actions, rewards, or
// discounts.
type Trajectory struct {
	ObsDim       int
	Observations []float64
	Actions      []int
	Rewards      []float64
	Discounts    []float64
}

// Len returns the number of transitions in the Trajectory
func (t Trajectory) Len() int {
	return len(t.Actions)
}

// Buffer accumulates transitions into fixed-size preallocated arrays.
// Callers must check Full() or episode ends and drain before the next
// append; appending to a full Buffer is a contract violation and
// returns an error.
type Buffer struct {
	obsSize    int // Size of state observations
	maxSize    int // Max number of transitions held
	currentPos int // Current write position in the buffer

	obsBuffer  []float64 // (maxSize+1) rows of obsSize
	actBuffer  []int
	rewBuffer  []float64
	discBuffer []float64
}

// New creates and returns a new sequence Buffer holding up to
// sequenceLength transitions of observations with obsDim features.
func New(obsDim, sequenceLength int) (*Buffer, error) {
	if obsDim <= 0 {
		return nil, fmt.Errorf("new: illegal observation size %v", obsDim)
	}
	if sequenceLength <= 0 {
		return nil, fmt.Errorf("new: illegal sequence length %v",
			sequenceLength)
	}

	return &Buffer{
		obsSize:    obsDim,
		maxSize:    sequenceLength,
		currentPos: 0,
		obsBuffer:  make([]float64, (sequenceLength+1)*obsDim),
		actBuffer:  make([]int, sequenceLength),
		rewBuffer:  make([]float64, sequenceLength),
		discBuffer: make([]float64, sequenceLength),
	}, nil
}

// Append records a single transition at the current write position.
// The reward and discount are those reported on the next timestep.
func (b *Buffer) Append(prev ts.TimeStep, action int, next ts.TimeStep) error {
	if b.Full() {
		return fmt.Errorf("append: cannot add new transition, buffer at " +
			"maximum capacity")
	}
	if prev.Observation.Len() != b.obsSize ||
		next.Observation.Len() != b.obsSize {
		return fmt.Errorf("append: illegal observation length "+
			"\n\twant(%v)\n\thave(%v, %v)", b.obsSize,
			prev.Observation.Len(), next.Observation.Len())
	}

	// A fresh segment starts from the observation preceding this
	// transition
	if b.currentPos == 0 {
		b.setObs(0, prev.Observation)
	}
	b.setObs(b.currentPos+1, next.Observation)

	b.actBuffer[b.currentPos] = action
	b.rewBuffer[b.currentPos] = next.Reward
	b.discBuffer[b.currentPos] = next.Discount
	b.currentPos++
	return nil
}

// Full returns whether the Buffer has reached its declared capacity
func (b *Buffer) Full() bool {
	return b.currentPos == b.maxSize
}

// Drain returns the accumulated Trajectory and resets the Buffer. The
// most recent observation is carried forward as the first observation
// of the next segment. Drain need not wait for the Buffer to fill; it
// is also used to flush a partial segment when an episode ends, and is
// well-defined on an empty Buffer, returning a length-0 Trajectory.
func (b *Buffer) Drain() Trajectory {
	n := b.currentPos

	trajectory := Trajectory{
		ObsDim:       b.obsSize,
		Observations: make([]float64, (n+1)*b.obsSize),
		Actions:      make([]int, n),
		Rewards:      make([]float64, n),
		Discounts:    make([]float64, n),
	}
	copy(trajectory.Observations, b.obsBuffer[:(n+1)*b.obsSize])
	copy(trajectory.Actions, b.actBuffer[:n])
	copy(trajectory.Rewards, b.rewBuffer[:n])
	copy(trajectory.Discounts, b.discBuffer[:n])

	// Carry the newest observation forward and reset the cursor
	copy(b.obsBuffer[:b.obsSize], b.obsBuffer[n*b.obsSize:(n+1)*b.obsSize])
	b.currentPos = 0

	return trajectory
}

// setObs copies an observation vector into row i of the observation
// buffer
func (b *Buffer) setObs(i int, obs mat.Vector) {
	start := i * b.obsSize
	for j := 0; j < b.obsSize; j++ {
		b.obsBuffer[start+j] = obs.AtVec(j)
	}
}
