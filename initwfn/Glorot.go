package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm with an explicit seed. Weights are drawn
// uniformly from ±(gain * √(6 / (fanIn + fanOut))). Successive calls
// to the created InitWFn consume the same random stream, so the full
// set of weights a network gets is determined by the seed and the
// order in which its layers are created.
type GlorotUConfig struct {
	Gain float64
	Seed uint64
}

// NewGlorotU returns a new seeded Glorot Uniform weight initializer
func NewGlorotU(gain float64, seed uint64) (*InitWFn, error) {
	config := GlorotUConfig{
		Gain: gain,
		Seed: seed,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotUConfig) Create() G.InitWFn {
	rng := rand.New(rand.NewSource(g.Seed))

	return func(dt tensor.Dtype, s ...int) interface{} {
		if dt != tensor.Float64 {
			panic("glorotU: only float64 tensors are supported")
		}

		fanIn, fanOut := fans(s)
		bound := g.Gain * math.Sqrt(6.0/float64(fanIn+fanOut))

		size := 1
		for _, dim := range s {
			size *= dim
		}

		weights := make([]float64, size)
		for i := range weights {
			weights[i] = bound * (2.0*rng.Float64() - 1.0)
		}
		return weights
	}
}

// fans returns the fan-in and fan-out of a weight tensor shape
func fans(shape []int) (fanIn, fanOut int) {
	switch len(shape) {
	case 0:
		return 1, 1
	case 1:
		return shape[0], shape[0]
	default:
		return shape[0], shape[1]
	}
}
