package timestep

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewFirst(t *testing.T) {
	obs := mat.NewVecDense(2, []float64{1.0, 2.0})
	step := NewFirst(obs)

	if !step.First() || step.Mid() || step.Last() {
		t.Error("NewFirst should return a First timestep")
	}
	if step.Reward != 0.0 {
		t.Errorf("first steps carry no reward, have %v", step.Reward)
	}
	if step.Discount != 1.0 {
		t.Errorf("first steps carry a unit discount, have %v",
			step.Discount)
	}
	if step.Number != 0 {
		t.Errorf("first steps are step 0, have %v", step.Number)
	}
}

func TestTruncationKeepsRewardAndDiscount(t *testing.T) {
	obs := mat.NewVecDense(1, []float64{0.5})
	mid := New(Mid, 0.25, 1.0, obs, 7)

	cut := Truncation(mid)
	if !cut.Last() {
		t.Error("truncated steps should be Last steps")
	}
	if cut.Reward != mid.Reward || cut.Discount != mid.Discount ||
		cut.Number != mid.Number {
		t.Error("truncation should only change the step type")
	}

	// The original step is unchanged
	if !mid.Mid() {
		t.Error("truncation should not modify its argument")
	}
}

func TestStepTypePredicates(t *testing.T) {
	obs := mat.NewVecDense(1, []float64{0.0})

	mid := New(Mid, 1.0, 0.9, obs, 3)
	if mid.First() || !mid.Mid() || mid.Last() {
		t.Error("wrong predicates for a Mid timestep")
	}

	last := New(Last, -1.0, 0.0, obs, 9)
	if last.First() || last.Mid() || !last.Last() {
		t.Error("wrong predicates for a Last timestep")
	}
}
