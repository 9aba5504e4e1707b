package actorcritic

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/AdrienBolling/bsuite-tsobs/buffer/sequence"
	"github.com/AdrienBolling/bsuite-tsobs/network"
	"github.com/AdrienBolling/bsuite-tsobs/solver"
)

// trainer holds the actor-critic loss graph for trajectories of one
// fixed length n. The graph takes the n+1 trajectory observations as
// the network input and the λ-return targets, advantages, and realized
// actions as constant inputs:
//
//	critic loss = mean((returns - value[:n])²)
//	actor loss  = -mean(logπ(action) ⊙ advantages)
//	loss        = actor loss + critic loss
//
// which matches a mean squared TD(λ) error critic and a
// policy-gradient actor with unit per-step weights, since the targets
// and advantages are computed from the same parameters immediately
// before the gradient step.
type trainer struct {
	net network.PolicyValueNet // batch = n+1
	vm  G.VM

	returns    *G.Node // [n] λ-return targets
	advantages *G.Node // [n] TD(λ) errors
	actions    *G.Node // [n, numActions] one-hot realized actions

	lossVal G.Value
	n       int
}

// newTrainer builds the loss graph for trajectories of length n by
// cloning the prototype network onto a fresh graph with batch n+1.
func newTrainer(prototype network.PolicyValueNet, n int) (*trainer, error) {
	net, err := prototype.CloneWithBatch(n + 1)
	if err != nil {
		return nil, fmt.Errorf("newtrainer: could not clone network: %v",
			err)
	}
	g := net.Graph()

	returns := G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(n),
		G.WithName("Lambda Return Targets"),
		G.WithInit(G.Zeroes()),
	)
	advantages := G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(n),
		G.WithName("Advantages"),
		G.WithInit(G.Zeroes()),
	)
	actions := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(n, net.NumActions()),
		G.WithName("Action Indices"),
		G.WithInit(G.Zeroes()),
	)

	// Critic: mean squared TD(λ) error over the trajectory. Values at
	// the all-but-last timesteps carry the gradient; the targets are
	// constants.
	vtm1 := G.Must(G.Slice(net.Value(), G.S(0, n)))
	criticLoss := G.Must(G.Sub(returns, vtm1))
	criticLoss = G.Must(G.Square(criticLoss))
	criticLoss = G.Must(G.Mean(criticLoss))

	// Actor: policy-gradient loss from the logits at the all-but-last
	// timesteps, the realized actions, and the TD(λ) advantages, with
	// a constant weight of 1 per step
	logits := G.Must(G.Slice(net.Logits(), G.S(0, n)))
	logPi := G.Must(G.BroadcastSub(logits, logSumExp(logits, 1), nil,
		[]byte{1}))
	logPiA := G.Must(G.Sum(G.Must(G.HadamardProd(actions, logPi)), 1))
	actorLoss := G.Must(G.Mean(G.Must(G.HadamardProd(logPiA, advantages))))
	actorLoss = G.Must(G.Neg(actorLoss))

	loss := G.Must(G.Add(actorLoss, criticLoss))

	tr := &trainer{
		net:        net,
		returns:    returns,
		advantages: advantages,
		actions:    actions,
		n:          n,
	}
	G.Read(loss, &tr.lossVal)

	if _, err := G.Grad(loss, net.Learnables()...); err != nil {
		return nil, fmt.Errorf("newtrainer: could not construct "+
			"gradient: %v", err)
	}
	tr.vm = G.NewTapeMachine(g, G.BindDualValues(net.Learnables()...))

	return tr, nil
}

// setTrajectory binds a trajectory's observations and realized actions
// to the graph inputs.
func (t *trainer) setTrajectory(trajectory sequence.Trajectory) error {
	if trajectory.Len() != t.n {
		return fmt.Errorf("settrajectory: illegal trajectory length"+
			"\n\twant(%v)\n\thave(%v)", t.n, trajectory.Len())
	}

	if err := t.net.SetInput(trajectory.Observations); err != nil {
		return fmt.Errorf("settrajectory: %v", err)
	}

	numActions := t.net.NumActions()
	oneHot := make([]float64, t.n*numActions)
	for i, action := range trajectory.Actions {
		if action < 0 || action >= numActions {
			return fmt.Errorf("settrajectory: illegal action %v"+
				"\n\twant(∈ [0, %v))", action, numActions)
		}
		oneHot[i*numActions+action] = 1.0
	}

	actions := tensor.New(
		tensor.WithShape(t.n, numActions),
		tensor.WithBacking(oneHot),
	)
	return G.Let(t.actions, actions)
}

// values runs the graph once and returns a copy of the n+1 state
// values under the network's current parameters. The targets bound to
// the graph do not matter for this pass; the value output does not
// depend on them.
func (t *trainer) values() ([]float64, error) {
	if err := t.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("values: could not run forward pass: %v",
			err)
	}

	out := t.net.ValueVal().Data().([]float64)
	values := make([]float64, len(out))
	copy(values, out)
	t.vm.Reset()

	return values, nil
}

// setTargets binds the λ-return targets and advantages for the next
// gradient step.
func (t *trainer) setTargets(returns, advantages []float64) error {
	if len(returns) != t.n || len(advantages) != t.n {
		return fmt.Errorf("settargets: illegal target lengths"+
			"\n\twant(%v)\n\thave(%v, %v)", t.n, len(returns),
			len(advantages))
	}

	returnsTensor := tensor.New(
		tensor.WithShape(t.n),
		tensor.WithBacking(returns),
	)
	if err := G.Let(t.returns, returnsTensor); err != nil {
		return fmt.Errorf("settargets: %v", err)
	}

	advantagesTensor := tensor.New(
		tensor.WithShape(t.n),
		tensor.WithBacking(advantages),
	)
	return G.Let(t.advantages, advantagesTensor)
}

// step computes the gradient of the loss at the bound inputs and
// applies one solver update to the network in place, returning the
// loss value.
func (t *trainer) step(sol *solver.Solver) (float64, error) {
	if err := t.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("step: could not run training pass: %v", err)
	}
	if err := sol.Step(t.net.Model()); err != nil {
		return 0, fmt.Errorf("step: could not apply solver update: %v", err)
	}
	t.vm.Reset()

	return t.lossVal.Data().(float64), nil
}

// logSumExp computes log(Σ exp(logits)) along an axis in a numerically
// stable way.
func logSumExp(logits *G.Node, along int) *G.Node {
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
	exponent = G.Must(G.Exp(exponent))

	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}

// tdErrors computes the TD(λ) targets and errors of a trajectory given
// the state values at each of its n+1 observations. The per-step
// discount is the environment-reported discount times the agent-level
// discount factor.
func tdErrors(trajectory sequence.Trajectory, values []float64,
	discount, lambda float64) (returns, tds []float64) {
	n := trajectory.Len()

	discounts := make([]float64, n)
	for i, d := range trajectory.Discounts {
		discounts[i] = d * discount
	}

	returns = lambdaReturns(trajectory.Rewards, discounts, values, lambda)

	tds = make([]float64, n)
	for i := range tds {
		tds[i] = returns[i] - values[i]
	}
	return returns, tds
}

// lambdaReturns computes the λ-returns of a reward sequence: the
// mixed multi-step bootstrapped return targets
//
//	G_t = r_t + γ_t((1-λ)v_{t+1} + λG_{t+1}),  G_n = v_n
//
// where γ_t is the composed per-step discount.
func lambdaReturns(rewards, discounts, values []float64,
	lambda float64) []float64 {
	n := len(rewards)

	returns := make([]float64, n)
	g := values[n]
	for t := n - 1; t >= 0; t-- {
		g = rewards[t] + discounts[t]*((1-lambda)*values[t+1]+lambda*g)
		returns[t] = g
	}
	return returns
}
