package floatutils

import (
	"math"
	"testing"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	tests := [][]float64{
		{0.0, 0.0, 0.0},
		{1.0, 2.0, 3.0},
		{-5.0, 0.0, 5.0},
		{1000.0, 1000.1, 999.9},
	}

	for _, logits := range tests {
		probs := Softmax(logits)

		var sum float64
		for _, p := range probs {
			if p < 0.0 || p > 1.0 || math.IsNaN(p) {
				t.Errorf("illegal probability %v for logits %v", p, logits)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("probabilities for %v sum to %v", logits, sum)
		}
	}
}

func TestSoftmaxPreservesOrder(t *testing.T) {
	probs := Softmax([]float64{1.0, 3.0, 2.0})
	if !(probs[1] > probs[2] && probs[2] > probs[0]) {
		t.Errorf("softmax broke the logit ordering: %v", probs)
	}
}

func TestMax(t *testing.T) {
	if max := Max(-1.0, 4.5, 0.0, 4.4); max != 4.5 {
		t.Errorf("wrong maximum\n\twant(4.5)\n\thave(%v)", max)
	}
	if max := Max(-3.0); max != -3.0 {
		t.Errorf("wrong single-element maximum\n\twant(-3)\n\thave(%v)", max)
	}
}

func TestOnes(t *testing.T) {
	ones := Ones(4)
	if len(ones) != 4 {
		t.Fatalf("wrong length\n\twant(4)\n\thave(%v)", len(ones))
	}
	for i, one := range ones {
		if one != 1.0 {
			t.Errorf("element %v is %v", i, one)
		}
	}
}
