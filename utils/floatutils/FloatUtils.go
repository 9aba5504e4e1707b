// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"
)

// Max calculates and returns the maximum float64 in a list
func Max(floats ...float64) float64 {
	max := floats[0]
	for _, val := range floats {
		if val > max {
			max = val
		}
	}
	return max
}

// Softmax returns the softmax-normalized probabilities defined by a
// slice of logits. The maximum logit is subtracted before
// exponentiation for numerical stability.
func Softmax(logits []float64) []float64 {
	max := Max(logits...)

	probs := make([]float64, len(logits))
	var sum float64
	for i, logit := range logits {
		probs[i] = math.Exp(logit - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Ones returns a slice of n ones
func Ones(n int) []float64 {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1.0
	}
	return ones
}
