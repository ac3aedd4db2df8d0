package timemodel

import (
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

// A Model computes the latency of a transfer without modeling contention.
// Every call is independent of the others.
type Model interface {
	// Send returns how long it takes to send size bytes from src to dest.
	Send(src, dest topology.DeviceID, size uint64) eventqueue.EventTime

	// NumEndpoints returns the number of devices that can send and receive.
	NumEndpoints() int
}

// basicModel is the closed-form model of one single-dimension topology.
type basicModel struct {
	dim topology.Dimension
}

func newBasicModel(dim topology.Dimension) (basicModel, error) {
	err := dim.Validate()
	if err != nil {
		return basicModel{}, err
	}

	return basicModel{dim: dim}, nil
}

// Dimension returns the dimension the model is built from.
func (m basicModel) Dimension() topology.Dimension {
	return m.dim
}

// Hops returns the number of hops between two endpoints.
func (m basicModel) Hops(src, dest topology.DeviceID) int {
	return m.dim.Hops(int(src), int(dest))
}

// Route returns the devices a transfer from src to dest visits.
func (m basicModel) Route(src, dest topology.DeviceID) topology.Route {
	return m.dim.Route(int(src), int(dest))
}

// Send returns hops*latency + size/bandwidth.
func (m basicModel) Send(
	src, dest topology.DeviceID,
	size uint64,
) eventqueue.EventTime {
	hops := float64(m.Hops(src, dest))
	return eventqueue.EventTime(
		hops*m.dim.LatencyNs + float64(size)/m.dim.BytesPerNs())
}

// NumEndpoints returns the number of endpoints.
func (m basicModel) NumEndpoints() int {
	return m.dim.Size
}

// Ring is the closed-form model of a ring.
type Ring struct {
	basicModel
}

// NewRing creates a ring model. The bandwidth is in GB/s and the latency in
// ns.
func NewRing(
	size int,
	bandwidthGBps, latencyNs float64,
	bidirectional bool,
) (*Ring, error) {
	m, err := newBasicModel(topology.Dimension{
		Kind:          topology.Ring,
		Size:          size,
		BandwidthGBps: bandwidthGBps,
		LatencyNs:     latencyNs,
		Bidirectional: bidirectional,
	})
	if err != nil {
		return nil, err
	}

	return &Ring{m}, nil
}

// FullyConnected is the closed-form model of a fully-connected topology.
type FullyConnected struct {
	basicModel
}

// NewFullyConnected creates a fully-connected model.
func NewFullyConnected(
	size int,
	bandwidthGBps, latencyNs float64,
) (*FullyConnected, error) {
	m, err := newBasicModel(topology.Dimension{
		Kind:          topology.FullyConnected,
		Size:          size,
		BandwidthGBps: bandwidthGBps,
		LatencyNs:     latencyNs,
		Bidirectional: true,
	})
	if err != nil {
		return nil, err
	}

	return &FullyConnected{m}, nil
}

// Switch is the closed-form model of a switch topology.
type Switch struct {
	basicModel
}

// NewSwitch creates a switch model.
func NewSwitch(
	size int,
	bandwidthGBps, latencyNs float64,
) (*Switch, error) {
	m, err := newBasicModel(topology.Dimension{
		Kind:          topology.Switch,
		Size:          size,
		BandwidthGBps: bandwidthGBps,
		LatencyNs:     latencyNs,
		Bidirectional: true,
	})
	if err != nil {
		return nil, err
	}

	return &Switch{m}, nil
}

func newSingle(dim topology.Dimension) (Model, error) {
	m, err := newBasicModel(dim)
	if err != nil {
		return nil, err
	}

	switch dim.Kind {
	case topology.Ring:
		return &Ring{m}, nil
	case topology.FullyConnected:
		return &FullyConnected{m}, nil
	default:
		return &Switch{m}, nil
	}
}
