package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayer adds a fully connected layer with the given fan-in and
// fan-out to a computational graph. Weights are drawn from init;
// biases, when present, start at zero.
func newFCLayer(g *G.ExprGraph, in, out int, bias bool, act *Activation,
	init G.InitWFn, name string) *fcLayer {
	weights := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(in, out),
		G.WithInit(init),
		G.WithName(name+"W"),
	)

	var biases *G.Node
	if bias {
		biases = G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(1, out),
			G.WithInit(G.Zeroes()),
			G.WithName(name+"B"),
		)
	}

	return &fcLayer{
		weights: weights,
		bias:    biases,
		act:     act,
	}
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x = G.Must(G.Mul(x, f.weights))
	if f.bias != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		x = G.Must(G.BroadcastAdd(x, f.bias, nil, []byte{0}))
	}
	if f.act == nil || f.act.IsIdentity() {
		return x, nil
	}
	return f.act.fwd(x)
}

// learnables returns the learnable weights of the fcLayer
func (f *fcLayer) learnables() G.Nodes {
	if f.bias == nil {
		return G.Nodes{f.weights}
	}
	return G.Nodes{f.weights, f.bias}
}

// addFCLayers adds a stack of fully connected layers to a graph,
// returning the layers. For index i, hiddenSizes[i] is the fan-out of
// layer i, biases[i] determines whether it has a bias unit, and
// activations[i] is its activation.
func addFCLayers(g *G.ExprGraph, features int, hiddenSizes []int,
	biases []bool, activations []*Activation, init G.InitWFn,
	prefix string) ([]*fcLayer, error) {
	if len(hiddenSizes) != len(activations) {
		return nil, fmt.Errorf("addfclayers: invalid number of activations"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(activations))
	}
	if len(hiddenSizes) != len(biases) {
		return nil, fmt.Errorf("addfclayers: invalid number of biases"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(biases))
	}

	layers := make([]*fcLayer, len(hiddenSizes))
	in := features
	for i, out := range hiddenSizes {
		name := fmt.Sprintf("%sL%d", prefix, i)
		layers[i] = newFCLayer(g, in, out, biases[i], activations[i], init,
			name)
		in = out
	}

	return layers, nil
}
