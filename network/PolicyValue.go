// Package network implements policy/value networks as Gorgonia
// computational graphs
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// PolicyValueNet is a network mapping a batch of observations to a
// pair (action logits, state value). The network owns no update logic:
// its parameters are read and replaced from outside through Params and
// SetParams, and differentiating some loss of Logits() and Value()
// with respect to Learnables() is the caller's business.
type PolicyValueNet interface {
	Graph() *G.ExprGraph

	// CloneWithBatch returns a network of the same architecture on a
	// fresh graph accepting a different batch size. The clone's
	// weights are freshly initialized; copy them with Set or
	// SetParams.
	CloneWithBatch(int) (PolicyValueNet, error)

	BatchSize() int
	Features() int
	NumActions() int

	// SetInput sets the batch of observations for the next forward
	// pass, given in row major order.
	SetInput([]float64) error

	// Logits returns the [batch, numActions] action-logit node and
	// Value the [batch] state-value node.
	Logits() *G.Node
	Value() *G.Node

	// LogitsVal and ValueVal return the values of the logit and value
	// nodes recorded on the most recent run of a VM over the graph.
	LogitsVal() G.Value
	ValueVal() G.Value

	Learnables() G.Nodes
	Model() []G.ValueGrad
}

// policyValueMLP implements PolicyValueNet as a fully connected torso
// shared by a linear policy head and a linear value head.
type policyValueMLP struct {
	g     *G.ExprGraph
	input *G.Node

	torso      []*fcLayer
	policyHead *fcLayer
	valueHead  *fcLayer

	logits    *G.Node
	value     *G.Node
	logitsVal G.Value
	valueVal  G.Value

	learnables G.Nodes
	model      []G.ValueGrad

	batchSize  int
	features   int
	numActions int

	// Architecture, kept for CloneWithBatch
	hiddenSizes []int
	biases      []bool
	activations []*Activation
	init        G.InitWFn
}

// NewPolicyValueMLP returns a new PolicyValueNet for observations of
// features inputs and numActions discrete actions. The torso is a
// fully connected network described by hiddenSizes, biases, and
// activations; both heads are linear with bias units.
func NewPolicyValueMLP(features, batch, numActions int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, activations []*Activation,
	init G.InitWFn) (PolicyValueNet, error) {
	if features <= 0 || batch <= 0 {
		return nil, fmt.Errorf("newpolicyvaluemlp: illegal input shape "+
			"(%v, %v)", batch, features)
	}
	if numActions <= 1 {
		return nil, fmt.Errorf("newpolicyvaluemlp: illegal number of "+
			"actions %v", numActions)
	}
	if len(hiddenSizes) == 0 {
		return nil, fmt.Errorf("newpolicyvaluemlp: at least one hidden " +
			"layer required")
	}

	input := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, features),
		G.WithName("observations"),
		G.WithInit(G.Zeroes()),
	)

	torso, err := addFCLayers(g, features, hiddenSizes, biases, activations,
		init, "Torso")
	if err != nil {
		return nil, fmt.Errorf("newpolicyvaluemlp: could not create torso: %v",
			err)
	}

	torsoOut := hiddenSizes[len(hiddenSizes)-1]
	policyHead := newFCLayer(g, torsoOut, numActions, true, Identity(), init,
		"PolicyHead")
	valueHead := newFCLayer(g, torsoOut, 1, true, Identity(), init,
		"ValueHead")

	net := &policyValueMLP{
		g:           g,
		input:       input,
		torso:       torso,
		policyHead:  policyHead,
		valueHead:   valueHead,
		batchSize:   batch,
		features:    features,
		numActions:  numActions,
		hiddenSizes: hiddenSizes,
		biases:      biases,
		activations: activations,
		init:        init,
	}

	if err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newpolicyvaluemlp: could not compute "+
			"forward pass: %v", err)
	}

	for _, layer := range torso {
		net.learnables = append(net.learnables, layer.learnables()...)
	}
	net.learnables = append(net.learnables, policyHead.learnables()...)
	net.learnables = append(net.learnables, valueHead.learnables()...)
	net.model = G.NodesToValueGrads(net.learnables)

	G.Read(net.logits, &net.logitsVal)
	G.Read(net.value, &net.valueVal)

	return net, nil
}

// fwd adds the forward pass of the network to its graph
func (p *policyValueMLP) fwd(x *G.Node) error {
	var err error
	for _, layer := range p.torso {
		if x, err = layer.fwd(x); err != nil {
			return err
		}
	}

	logits, err := p.policyHead.fwd(x)
	if err != nil {
		return err
	}

	value, err := p.valueHead.fwd(x)
	if err != nil {
		return err
	}
	// Collapse the [batch, 1] value head output to a vector
	value, err = G.Reshape(value, tensor.Shape{p.batchSize})
	if err != nil {
		return err
	}

	p.logits = logits
	p.value = value
	return nil
}

// Graph returns the computational graph of the network
func (p *policyValueMLP) Graph() *G.ExprGraph {
	return p.g
}

// CloneWithBatch clones the network architecture onto a fresh graph
// with a new batch size. Weights are freshly initialized.
func (p *policyValueMLP) CloneWithBatch(batch int) (PolicyValueNet, error) {
	return NewPolicyValueMLP(p.features, batch, p.numActions, G.NewGraph(),
		p.hiddenSizes, p.biases, p.activations, p.init)
}

func (p *policyValueMLP) BatchSize() int {
	return p.batchSize
}

func (p *policyValueMLP) Features() int {
	return p.features
}

func (p *policyValueMLP) NumActions() int {
	return p.numActions
}

// SetInput sets the observation batch for the next forward pass
func (p *policyValueMLP) SetInput(data []float64) error {
	if len(data) != p.batchSize*p.features {
		return fmt.Errorf("setinput: illegal input length "+
			"\n\twant(%v)\n\thave(%v)", p.batchSize*p.features, len(data))
	}

	observations := tensor.New(
		tensor.WithShape(p.batchSize, p.features),
		tensor.WithBacking(data),
	)
	return G.Let(p.input, observations)
}

func (p *policyValueMLP) Logits() *G.Node {
	return p.logits
}

func (p *policyValueMLP) Value() *G.Node {
	return p.value
}

func (p *policyValueMLP) LogitsVal() G.Value {
	return p.logitsVal
}

func (p *policyValueMLP) ValueVal() G.Value {
	return p.valueVal
}

func (p *policyValueMLP) Learnables() G.Nodes {
	return p.learnables
}

func (p *policyValueMLP) Model() []G.ValueGrad {
	return p.model
}

// Params returns a deep copy of a network's current weights, in
// Learnables() order.
func Params(net PolicyValueNet) []*tensor.Dense {
	learnables := net.Learnables()
	params := make([]*tensor.Dense, len(learnables))
	for i, learnable := range learnables {
		params[i] = learnable.Value().(*tensor.Dense).Clone().(*tensor.Dense)
	}
	return params
}

// SetParams replaces a network's weights with copies of params, which
// must be in Learnables() order. All weights are replaced together;
// an error on any weight leaves the network unusable.
func SetParams(net PolicyValueNet, params []*tensor.Dense) error {
	learnables := net.Learnables()
	if len(params) != len(learnables) {
		return fmt.Errorf("setparams: illegal number of parameter tensors"+
			"\n\twant(%v)\n\thave(%v)", len(learnables), len(params))
	}

	for i, learnable := range learnables {
		if !learnable.Shape().Eq(params[i].Shape()) {
			return fmt.Errorf("setparams: illegal shape for %v"+
				"\n\twant(%v)\n\thave(%v)", learnable.Name(),
				learnable.Shape(), params[i].Shape())
		}
		err := G.Let(learnable, params[i].Clone().(*tensor.Dense))
		if err != nil {
			return fmt.Errorf("setparams: could not set %v: %v",
				learnable.Name(), err)
		}
	}
	return nil
}

// Set replaces dst's weights with a copy of src's weights
func Set(dst, src PolicyValueNet) error {
	return SetParams(dst, Params(src))
}
