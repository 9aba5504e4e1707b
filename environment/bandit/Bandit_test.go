package bandit

import (
	"testing"
)

func TestEpisodesLastOneStep(t *testing.T) {
	env := New(17)

	step := env.Reset()
	if !step.First() {
		t.Error("reset should return a First timestep")
	}

	step, err := env.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	if !step.Last() {
		t.Error("pulling an arm should end the episode")
	}
	if step.Discount != 0.0 {
		t.Errorf("wrong terminal discount\n\twant(0)\n\thave(%v)",
			step.Discount)
	}

	if _, err := env.Step(0); err == nil {
		t.Error("expected error when stepping a finished episode")
	}
}

func TestArmRewardsAreAShuffledLadder(t *testing.T) {
	env := New(23)

	seen := make(map[float64]bool)
	for arm := 0; arm < NumArms; arm++ {
		env.Reset()
		step, err := env.Step(arm)
		if err != nil {
			t.Fatal(err)
		}
		if step.Reward < 0.0 || step.Reward > 1.0 {
			t.Errorf("arm %v reward out of range: %v", arm, step.Reward)
		}
		if seen[step.Reward] {
			t.Errorf("arm %v repeats the reward %v", arm, step.Reward)
		}
		seen[step.Reward] = true
	}

	// The ladder includes both endpoints
	if !seen[0.0] || !seen[1.0] {
		t.Error("rewards should include 0 and 1")
	}
}

func TestSameSeedSameArms(t *testing.T) {
	a, b := New(31), New(31)
	for arm := 0; arm < NumArms; arm++ {
		a.Reset()
		b.Reset()
		stepA, err := a.Step(arm)
		if err != nil {
			t.Fatal(err)
		}
		stepB, err := b.Step(arm)
		if err != nil {
			t.Fatal(err)
		}
		if stepA.Reward != stepB.Reward {
			t.Errorf("arm %v rewards diverged under the same seed: "+
				"%v != %v", arm, stepA.Reward, stepB.Reward)
		}
	}
}

func TestStepRejectsIllegalActions(t *testing.T) {
	env := New(0)

	env.Reset()
	if _, err := env.Step(NumArms); err == nil {
		t.Error("expected error for out-of-range arm")
	}
	if _, err := env.Step(-1); err == nil {
		t.Error("expected error for negative arm")
	}
}
