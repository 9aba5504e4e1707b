package initwfn

import G "gorgonia.org/gorgonia"

// ZeroesConfig implements a configuration of all-zero weight
// initialization.
type ZeroesConfig struct{}

// NewZeroes returns a new all-zero weight initializer
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

func (z ZeroesConfig) Type() Type {
	return Zeroes
}

func (z ZeroesConfig) Create() G.InitWFn {
	return G.Zeroes()
}
