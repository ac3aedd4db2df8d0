// Package timemodel provides closed-form models that estimate the time of
// transfers without simulating the links.
package timemodel

import (
	"fmt"

	"github.com/syifan/commsim/topology"
)

// A TimeEstimatorInput represents the input of a time estimator.
type TimeEstimatorInput struct {
	Src, Dst topology.DeviceID
	Bytes    uint64
}

// A TimeEstimatorOutput represents the output of a time estimator.
type TimeEstimatorOutput struct {
	// The estimated transfer time in seconds.
	TimeInSec float64
}

// TimeEstimator estimates the time of a transfer.
type TimeEstimator interface {
	// Estimate estimates the time of a transfer.
	Estimate(input TimeEstimatorInput) (TimeEstimatorOutput, error)
}

// A FixedTimeEstimator returns the same time for every transfer.
type FixedTimeEstimator struct {
	TimeInSec float64
}

// Estimate always returns the fixed time.
func (e *FixedTimeEstimator) Estimate(
	input TimeEstimatorInput,
) (TimeEstimatorOutput, error) {
	return TimeEstimatorOutput{
		TimeInSec: e.TimeInSec,
	}, nil
}

// A ClosedFormEstimator estimates the transfer time with a closed-form model.
type ClosedFormEstimator struct {
	Model Model
}

// Estimate converts the latency of the model into seconds.
func (e *ClosedFormEstimator) Estimate(
	input TimeEstimatorInput,
) (TimeEstimatorOutput, error) {
	n := e.Model.NumEndpoints()
	if input.Src < 0 || int(input.Src) >= n ||
		input.Dst < 0 || int(input.Dst) >= n {
		return TimeEstimatorOutput{}, fmt.Errorf(
			"transfer from device %d to device %d is outside of %d endpoints",
			input.Src, input.Dst, n)
	}

	if input.Src == input.Dst {
		return TimeEstimatorOutput{}, fmt.Errorf(
			"transfer from device %d to itself", input.Src)
	}

	latency := e.Model.Send(input.Src, input.Dst, input.Bytes)

	return TimeEstimatorOutput{
		TimeInSec: float64(latency) / 1e9,
	}, nil
}
