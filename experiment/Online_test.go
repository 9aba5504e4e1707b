package experiment

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/AdrienBolling/bsuite-tsobs/agent/actorcritic"
	"github.com/AdrienBolling/bsuite-tsobs/environment"
	"github.com/AdrienBolling/bsuite-tsobs/initwfn"
	"github.com/AdrienBolling/bsuite-tsobs/network"
	"github.com/AdrienBolling/bsuite-tsobs/solver"
	ts "github.com/AdrienBolling/bsuite-tsobs/timestep"
)

// fakeEnv runs fixed-length episodes with a constant observation
type fakeEnv struct {
	episodeLen int
	stepNum    int
}

func (f *fakeEnv) Reset() ts.TimeStep {
	f.stepNum = 0
	return ts.NewFirst(mat.NewVecDense(1, []float64{1.0}))
}

func (f *fakeEnv) Step(action int) (ts.TimeStep, error) {
	f.stepNum++

	stepType, discount := ts.Mid, 1.0
	if f.stepNum >= f.episodeLen {
		stepType, discount = ts.Last, 0.0
	}
	obs := mat.NewVecDense(1, []float64{1.0})
	return ts.New(stepType, 1.0, discount, obs, f.stepNum), nil
}

func (f *fakeEnv) ObservationSpec() environment.Spec {
	bound := mat.NewVecDense(1, []float64{1.0})
	return environment.NewObservationSpec(1, bound, bound)
}

func (f *fakeEnv) ActionSpec() environment.Spec {
	return environment.NewActionSpec(2)
}

func (f *fakeEnv) NumEpisodes() int { return 100 }

// fakeAgent counts the transitions it observes and remembers the most
// recent one
type fakeAgent struct {
	selections int
	updates    int
	lastNext   ts.TimeStep
}

func (f *fakeAgent) SelectAction(t ts.TimeStep) int {
	f.selections++
	return 0
}

func (f *fakeAgent) Update(prev ts.TimeStep, action int,
	next ts.TimeStep) error {
	f.updates++
	f.lastNext = next
	return nil
}

func (f *fakeAgent) LastLoss() float64 { return 0.25 }

// memLogger collects every written record
type memLogger struct {
	records []map[string]interface{}
	closed  bool
}

func (m *memLogger) Write(data map[string]interface{}) error {
	m.records = append(m.records, data)
	return nil
}

func (m *memLogger) Close() error {
	m.closed = true
	return nil
}

func TestRunWritesOneRecordPerEpisode(t *testing.T) {
	const numEpisodes, episodeLen = 4, 3

	env := &fakeEnv{episodeLen: episodeLen}
	a := &fakeAgent{}
	logger := &memLogger{}

	online := NewOnline(env, a, logger, 0, false)
	if err := online.Run(numEpisodes); err != nil {
		t.Fatal(err)
	}

	if len(logger.records) != numEpisodes {
		t.Fatalf("wrong number of records\n\twant(%v)\n\thave(%v)",
			numEpisodes, len(logger.records))
	}
	if a.updates != numEpisodes*episodeLen {
		t.Errorf("agent should be updated once per environment step"+
			"\n\twant(%v)\n\thave(%v)", numEpisodes*episodeLen, a.updates)
	}
	if a.selections != a.updates {
		t.Errorf("one action per update\n\twant(%v)\n\thave(%v)",
			a.updates, a.selections)
	}

	last := logger.records[numEpisodes-1]
	if last["episode"] != numEpisodes-1 {
		t.Errorf("wrong episode index\n\twant(%v)\n\thave(%v)",
			numEpisodes-1, last["episode"])
	}
	if last["episode_len"] != episodeLen {
		t.Errorf("wrong episode length\n\twant(%v)\n\thave(%v)",
			episodeLen, last["episode_len"])
	}
	if last["episode_return"] != float64(episodeLen) {
		t.Errorf("wrong episode return\n\twant(%v)\n\thave(%v)",
			float64(episodeLen), last["episode_return"])
	}
	if last["total_return"] != float64(numEpisodes*episodeLen) {
		t.Errorf("wrong total return\n\twant(%v)\n\thave(%v)",
			float64(numEpisodes*episodeLen), last["total_return"])
	}
	if last["steps"] != numEpisodes*episodeLen {
		t.Errorf("wrong total steps\n\twant(%v)\n\thave(%v)",
			numEpisodes*episodeLen, last["steps"])
	}
	if last["loss"] != 0.25 {
		t.Errorf("loss-reporting agents should log their loss"+
			"\n\twant(0.25)\n\thave(%v)", last["loss"])
	}
}

func TestRunEpisodeTruncatesAtMaxLength(t *testing.T) {
	const maxLen = 5

	env := &fakeEnv{episodeLen: 1000}
	a := &fakeAgent{}
	logger := &memLogger{}

	online := NewOnline(env, a, logger, maxLen, false)
	if err := online.RunEpisode(0); err != nil {
		t.Fatal(err)
	}

	if a.updates != maxLen {
		t.Errorf("episode not truncated\n\twant(%v)\n\thave(%v)",
			maxLen, a.updates)
	}
	if logger.records[0]["episode_len"] != maxLen {
		t.Errorf("wrong logged episode length\n\twant(%v)\n\thave(%v)",
			maxLen, logger.records[0]["episode_len"])
	}

	// The agent must see the truncation as a Last step so that it
	// flushes its trajectory before the next episode, but the discount
	// is kept: truncation is not termination
	if !a.lastNext.Last() {
		t.Error("final update of a truncated episode should carry a " +
			"Last timestep")
	}
	if a.lastNext.Discount != 1.0 {
		t.Errorf("truncation should keep the environment discount"+
			"\n\twant(1)\n\thave(%v)", a.lastNext.Discount)
	}
}

func TestRunTruncationFlushesTrajectoryBuffer(t *testing.T) {
	const maxLen, numEpisodes = 5, 2

	env := &fakeEnv{episodeLen: 1000}

	init, err := initwfn.NewGlorotU(1.0, 19)
	if err != nil {
		t.Fatal(err)
	}
	sol, err := solver.NewDefaultAdam(1e-2, 1)
	if err != nil {
		t.Fatal(err)
	}
	a, err := actorcritic.New(env.ObservationSpec(), env.ActionSpec(),
		actorcritic.Config{
			HiddenSizes: []int{4},
			Biases:      []bool{true},
			Activations: []*network.Activation{network.TanH()},
			InitWFn:     init,
			Solver:      sol,
			// Longer than the episode cap, so the only learning steps
			// come from truncation flushes
			SequenceLength: 8,
			Discount:       0.99,
			Lambda:         0.9,
		}, 19)
	if err != nil {
		t.Fatal(err)
	}

	online := NewOnline(env, a, &memLogger{}, maxLen, false)
	if err := online.Run(numEpisodes); err != nil {
		t.Fatal(err)
	}

	// One flush per truncated episode. Were transitions carried across
	// the reset, the buffer would instead fill mid-episode and the
	// counts would drift.
	if a.State().Steps != numEpisodes {
		t.Errorf("wrong learning step count over truncated episodes"+
			"\n\twant(%v)\n\thave(%v)", numEpisodes, a.State().Steps)
	}
}
