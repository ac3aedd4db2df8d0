// Package sendrecv pairs independently issued sends and receives on top of a
// network model.
package sendrecv

import (
	"github.com/syifan/commsim/congestionaware"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/timemodel"
	"github.com/syifan/commsim/topology"
)

// A Network moves bytes between endpoints and reports when they arrive.
type Network interface {
	// Transfer sends size bytes from src to dst. The done callback runs in
	// the event queue once the data arrives.
	Transfer(src, dst topology.DeviceID, size uint64, done func())

	// NumEndpoints returns the number of devices that can send and receive.
	NumEndpoints() int
}

// A CongestionAwareNetwork sends every transfer as one chunk through a
// congestion-aware topology.
type CongestionAwareNetwork struct {
	topology congestionaware.Topology
}

// NewCongestionAwareNetwork creates a network on top of the topology.
func NewCongestionAwareNetwork(
	t congestionaware.Topology,
) *CongestionAwareNetwork {
	return &CongestionAwareNetwork{topology: t}
}

// Transfer sends a chunk from src to dst.
func (n *CongestionAwareNetwork) Transfer(
	src, dst topology.DeviceID,
	size uint64,
	done func(),
) {
	congestionaware.SendTransfer(n.topology, src, dst, size,
		func(*congestionaware.Chunk) {
			if done != nil {
				done()
			}
		})
}

// NumEndpoints returns the number of endpoints of the topology.
func (n *CongestionAwareNetwork) NumEndpoints() int {
	return n.topology.NumEndpoints()
}

// An AnalyticalNetwork schedules the arrival of every transfer at the time
// computed by a closed-form model.
type AnalyticalNetwork struct {
	q     *eventqueue.EventQueue
	model timemodel.Model
}

// NewAnalyticalNetwork creates a network that uses the closed-form model.
func NewAnalyticalNetwork(
	q *eventqueue.EventQueue,
	model timemodel.Model,
) *AnalyticalNetwork {
	return &AnalyticalNetwork{
		q:     q,
		model: model,
	}
}

// Transfer schedules the arrival after the closed-form latency.
func (n *AnalyticalNetwork) Transfer(
	src, dst topology.DeviceID,
	size uint64,
	done func(),
) {
	latency := n.model.Send(src, dst, size)

	if done == nil {
		done = func() {}
	}

	n.q.Schedule(n.q.CurrentTime()+latency, done)
}

// NumEndpoints returns the number of endpoints of the model.
func (n *AnalyticalNetwork) NumEndpoints() int {
	return n.model.NumEndpoints()
}
