// Package sweep implements the registry of experiment identifiers. An
// identifier names one configuration of one environment, for example
// "catch/2". The registry maps each identifier to a constructor for a
// fully seeded environment, so that two runs of the same identifier
// see identical environment randomness.
package sweep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdrienBolling/bsuite-tsobs/environment"
	"github.com/AdrienBolling/bsuite-tsobs/environment/bandit"
	"github.com/AdrienBolling/bsuite-tsobs/environment/catch"
)

// Separator separates the environment name from the configuration
// index in an experiment identifier.
const Separator = "/"

// Number of seeded configurations registered per environment
const numConfigs = 5

// Environment names available in the registry
const (
	CatchName  = "catch"
	BanditName = "bandit"
)

// Catch and Bandit list the registered identifiers for each
// environment. SWEEP lists every registered identifier.
var (
	Catch  []string
	Bandit []string
	SWEEP  []string
)

func init() {
	for i := 0; i < numConfigs; i++ {
		Catch = append(Catch, CatchName+Separator+strconv.Itoa(i))
		Bandit = append(Bandit, BanditName+Separator+strconv.Itoa(i))
	}
	SWEEP = append(SWEEP, Catch...)
	SWEEP = append(SWEEP, Bandit...)
}

// Registered returns whether id names a registered experiment
func Registered(id string) bool {
	_, _, err := parse(id)
	return err == nil
}

// Group returns the list of identifiers named by a group name, for
// example "catch" or "SWEEP". The second return value reports whether
// the name is a known group.
func Group(name string) ([]string, bool) {
	switch name {
	case "SWEEP":
		return SWEEP, true
	case CatchName:
		return Catch, true
	case BanditName:
		return Bandit, true
	}
	return nil, false
}

// Load returns the environment named by an experiment identifier. The
// environment seed is derived from the configuration index, so loading
// the same identifier twice gives identically behaving environments.
func Load(id string) (environment.Environment, error) {
	name, config, err := parse(id)
	if err != nil {
		return nil, err
	}

	seed := uint64(config)
	switch name {
	case CatchName:
		return catch.New(seed), nil
	case BanditName:
		return bandit.New(seed), nil
	}

	// parse already vetted the name
	panic(fmt.Sprintf("load: no constructor for environment %v", name))
}

// parse splits and validates an experiment identifier
func parse(id string) (name string, config int, err error) {
	parts := strings.Split(id, Separator)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("parse: invalid experiment identifier "+
			"%q \n\twant(name%vindex)", id, Separator)
	}

	config, err = strconv.Atoi(parts[1])
	if err != nil || config < 0 || config >= numConfigs {
		return "", 0, fmt.Errorf("parse: invalid configuration index in "+
			"identifier %q \n\twant(∈ [0, %v))", id, numConfigs)
	}

	switch parts[0] {
	case CatchName, BanditName:
		return parts[0], config, nil
	}
	return "", 0, fmt.Errorf("parse: unknown environment %q in "+
		"identifier %q", parts[0], id)
}
