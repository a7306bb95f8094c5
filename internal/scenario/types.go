package scenario

import (
	"fmt"
	"math"
)

// #region signal-name

// SignalName identifies one of the five reliability sub-signals.
type SignalName string

const (
	SignalGrounding SignalName = "grounding"
	SignalNumeric   SignalName = "numeric"
	SignalTemporal  SignalName = "temporal"
	SignalCitation  SignalName = "citation"
	SignalEntropy   SignalName = "entropy"
)

// AllSignals lists the sub-signals in composition order.
var AllSignals = []SignalName{
	SignalGrounding,
	SignalNumeric,
	SignalTemporal,
	SignalCitation,
	SignalEntropy,
}

// #endregion signal-name

// #region profile

// WeightSumTolerance is the allowed deviation from 1.0 for a weight vector.
const WeightSumTolerance = 1e-6

// Profile is one scenario category with its fixed signal weight vector
// and the review threshold the risk evaluator applies to it.
type Profile struct {
	ID          string
	DisplayName string
	Weights     map[SignalName]float64
	Threshold   float64
}

// CloneWeights returns a copy of the profile's weight vector so callers
// can mutate it without touching the shared table.
func (p Profile) CloneWeights() map[SignalName]float64 {
	out := make(map[SignalName]float64, len(p.Weights))
	for k, v := range p.Weights {
		out[k] = v
	}
	return out
}

// #endregion profile

// #region weight-helpers

// WeightSum returns the total mass of a weight vector.
func WeightSum(weights map[SignalName]float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	return sum
}

// ValidateWeights checks that a weight vector sums to 1.0 within tolerance
// and contains no negative entries.
func ValidateWeights(weights map[SignalName]float64) error {
	sum := WeightSum(weights)
	if math.Abs(sum-1.0) > WeightSumTolerance {
		return fmt.Errorf("weights sum to %.6f, must sum to 1.0", sum)
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("negative weight for %s: %f", name, w)
		}
	}
	return nil
}

// NormalizeWeights rescales a weight vector in place to sum to 1.0.
// A zero-mass vector is reset to uniform weights over its own keys, so
// callers carrying extra channels beyond the base signals keep them.
func NormalizeWeights(weights map[SignalName]float64) {
	if len(weights) == 0 {
		return
	}
	sum := WeightSum(weights)
	if sum <= 0 {
		uniform := 1.0 / float64(len(weights))
		for name := range weights {
			weights[name] = uniform
		}
		return
	}
	for name, w := range weights {
		weights[name] = w / sum
	}
}

// #endregion weight-helpers
