// Package actorcritic implements a feed-forward actor-critic agent.
//
// The agent accumulates transitions in a sequence buffer and performs
// one synchronous learning step whenever the buffer fills or an
// episode ends: the drained trajectory is pushed through an
// actor-critic loss (mean squared TD(λ) error for the critic, a
// policy-gradient loss weighted by the TD(λ) advantages for the
// actor), the gradient is taken with respect to the current network
// parameters, and one solver update produces the next training state.
package actorcritic

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/AdrienBolling/bsuite-tsobs/buffer/sequence"
	"github.com/AdrienBolling/bsuite-tsobs/environment"
	"github.com/AdrienBolling/bsuite-tsobs/network"
	"github.com/AdrienBolling/bsuite-tsobs/solver"
	ts "github.com/AdrienBolling/bsuite-tsobs/timestep"
	"github.com/AdrienBolling/bsuite-tsobs/utils/floatutils"
)

// TrainingState is the paired (parameters, optimizer state) snapshot
// that fully determines agent behaviour at a point in time. Params
// holds deep copies of the network weights in Learnables() order; Opt
// wraps the Gorgonia solver whose internal caches are the optimizer
// state. The two advance together: a learning step replaces the whole
// snapshot, never a single field.
type TrainingState struct {
	Params []*tensor.Dense
	Opt    *solver.Solver
	Steps  int
}

// ActorCritic is a feed-forward actor-critic agent over discrete
// actions. It is not safe for concurrent use; each experiment run owns
// exactly one instance.
type ActorCritic struct {
	behaviour   network.PolicyValueNet // batch-1 net for action selection
	behaviourVM G.VM

	// One training graph per trajectory length, built lazily. All
	// graphs share the one solver; Gorgonia solvers track their
	// moments by position in the model slice, and Learnables() order
	// is fixed across clones, so the moments line up.
	trainers map[int]*trainer

	buffer *sequence.Buffer
	state  TrainingState

	src rand.Source // Random sequence consumed by action sampling

	seqLen   int
	discount float64
	lambda   float64

	features   int
	numActions int

	lastLoss float64
}

// New creates and returns a new ActorCritic agent on an environment
// with the given observation and action specifications. The network
// weights and the action-sampling sequence are both derived from seed.
func New(obsSpec, actionSpec environment.Spec, c Config,
	seed uint64) (*ActorCritic, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	features := obsSpec.Shape
	numActions := actionSpec.NumActions

	// The batch-1 graph plays the role of the initializing forward
	// pass on a dummy observation: constructing it draws the initial
	// weights from the seeded initializer with a zero input bound.
	behaviour, err := network.NewPolicyValueMLP(features, 1, numActions,
		G.NewGraph(), c.HiddenSizes, c.Biases, c.Activations,
		c.InitWFn.InitWFn())
	if err != nil {
		return nil, fmt.Errorf("new: could not create policy/value "+
			"network: %v", err)
	}

	buf, err := sequence.New(features, c.SequenceLength)
	if err != nil {
		return nil, fmt.Errorf("new: could not create sequence buffer: %v",
			err)
	}

	return &ActorCritic{
		behaviour:   behaviour,
		behaviourVM: G.NewTapeMachine(behaviour.Graph()),
		trainers:    make(map[int]*trainer),
		buffer:      buf,
		state: TrainingState{
			Params: network.Params(behaviour),
			Opt:    c.Solver,
			Steps:  0,
		},
		src:        rand.NewSource(seed),
		seqLen:     c.SequenceLength,
		discount:   c.Discount,
		lambda:     c.Lambda,
		features:   features,
		numActions: numActions,
	}, nil
}

// SelectAction selects an action according to a softmax policy over
// the network's logits at the argument timestep. Action selection
// never changes the training state; its only side effect is advancing
// the agent's random sequence by one draw.
func (a *ActorCritic) SelectAction(t ts.TimeStep) int {
	if err := a.behaviour.SetInput(rawObs(t.Observation)); err != nil {
		panic(fmt.Sprintf("selectaction: could not set input: %v", err))
	}
	if err := a.behaviourVM.RunAll(); err != nil {
		panic(fmt.Sprintf("selectaction: could not run forward pass: %v",
			err))
	}
	logits := a.behaviour.LogitsVal().Data().([]float64)
	a.behaviourVM.Reset()

	dist := distuv.NewCategorical(floatutils.Softmax(logits), a.src)
	return int(dist.Rand())
}

// Update adds a transition to the trajectory buffer and, when the
// buffer is full or the episode has ended, performs one learning step
// on the drained trajectory. Exactly one learning step occurs per
// buffer-full-or-episode-end event and none otherwise.
func (a *ActorCritic) Update(prev ts.TimeStep, action int,
	next ts.TimeStep) error {
	if err := a.buffer.Append(prev, action, next); err != nil {
		return fmt.Errorf("update: %v", err)
	}

	if !a.buffer.Full() && !next.Last() {
		return nil
	}

	state, err := a.sgdStep(a.state, a.buffer.Drain())
	if err != nil {
		return fmt.Errorf("update: %v", err)
	}
	a.state = state

	// The behaviour network reads the new snapshot from here on
	if err := network.SetParams(a.behaviour, a.state.Params); err != nil {
		return fmt.Errorf("update: could not install new parameters: %v",
			err)
	}
	return nil
}

// State returns the agent's current training state
func (a *ActorCritic) State() TrainingState {
	return a.state
}

// LastLoss returns the total loss of the most recent learning step
func (a *ActorCritic) LastLoss() float64 {
	return a.lastLoss
}

// sgdStep performs one step of SGD over a trajectory, returning the
// next training state. The argument state is not modified. Length-0
// trajectories, which an episode ending directly after a drain can
// produce, are returned unlearned-from: there is no transition to fit.
func (a *ActorCritic) sgdStep(state TrainingState,
	trajectory sequence.Trajectory) (TrainingState, error) {
	n := trajectory.Len()
	if n == 0 {
		return state, nil
	}

	tr, err := a.trainerFor(n)
	if err != nil {
		return state, err
	}

	if err := network.SetParams(tr.net, state.Params); err != nil {
		return state, fmt.Errorf("sgdstep: %v", err)
	}
	if err := tr.setTrajectory(trajectory); err != nil {
		return state, fmt.Errorf("sgdstep: %v", err)
	}

	// First pass: state values under the current parameters. The
	// targets still hold stale data, which the value output does not
	// depend on.
	values, err := tr.values()
	if err != nil {
		return state, fmt.Errorf("sgdstep: %v", err)
	}

	// TD(λ) targets and advantages enter the loss as constants, so no
	// gradient flows through them
	returns, tds := tdErrors(trajectory, values, a.discount, a.lambda)
	if err := tr.setTargets(returns, tds); err != nil {
		return state, fmt.Errorf("sgdstep: %v", err)
	}

	loss, err := tr.step(state.Opt)
	if err != nil {
		return state, fmt.Errorf("sgdstep: %v", err)
	}
	a.lastLoss = loss

	return TrainingState{
		Params: network.Params(tr.net),
		Opt:    state.Opt,
		Steps:  state.Steps + 1,
	}, nil
}

// trainerFor returns the training graph for trajectories of length n,
// building it on first use.
func (a *ActorCritic) trainerFor(n int) (*trainer, error) {
	if tr, ok := a.trainers[n]; ok {
		return tr, nil
	}

	tr, err := newTrainer(a.behaviour, n)
	if err != nil {
		return nil, fmt.Errorf("trainerfor: %v", err)
	}
	a.trainers[n] = tr
	return tr, nil
}

// rawObs copies an observation vector into a flat slice
func rawObs(obs mat.Vector) []float64 {
	raw := make([]float64, obs.Len())
	for i := range raw {
		raw[i] = obs.AtVec(i)
	}
	return raw
}
