package timemodel

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

// MultiDim is the closed-form model of a multi-dimensional topology.
//
// Unlike the congestion-aware MultiDim, a transfer is charged to the first
// dimension where the two addresses differ only. The other mismatched
// dimensions are ignored, so the model assumes transfers stay within one
// dimension.
type MultiDim struct {
	shape  []int
	models []basicModel
}

// NewMultiDim creates a multi-dimensional model.
func NewMultiDim(dims []topology.Dimension) (*MultiDim, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: no dimension declared",
			topology.ErrInvalidConfig)
	}

	m := &MultiDim{shape: topology.Shape(dims)}
	for i, d := range dims {
		bm, err := newBasicModel(d)
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}

		m.models = append(m.models, bm)
	}

	return m, nil
}

// Shape returns the number of endpoints in each dimension.
func (m *MultiDim) Shape() []int {
	return m.shape
}

// Send returns the latency of the first mismatched dimension.
func (m *MultiDim) Send(
	src, dest topology.DeviceID,
	size uint64,
) eventqueue.EventTime {
	srcAddr := topology.AddressOf(src, m.shape)
	destAddr := topology.AddressOf(dest, m.shape)

	dim := topology.FirstMismatch(srcAddr, destAddr)
	if dim < 0 {
		panic(fmt.Sprintf("cannot send from device %d to itself", src))
	}

	return m.models[dim].Send(
		topology.DeviceID(srcAddr[dim]),
		topology.DeviceID(destAddr[dim]),
		size)
}

// NumEndpoints returns the number of endpoints.
func (m *MultiDim) NumEndpoints() int {
	return topology.NumDevices(m.shape)
}

// Build creates the model described by a network config.
func Build(cfg topology.Config) (Model, error) {
	dims, err := cfg.Dimensions()
	if err != nil {
		return nil, err
	}

	logrus.WithField("dimensions", len(dims)).
		Debug("closed-form model built")

	if len(dims) == 1 {
		return newSingle(dims[0])
	}

	return NewMultiDim(dims)
}
