// Package congestionaware models the interconnect with devices and links and
// uses the event queue to capture link occupancy and queueing.
package congestionaware

import (
	"fmt"

	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

// A Topology is a network of devices that chunks can be sent through.
type Topology interface {
	// Route returns the devices a transfer from src to dest visits.
	Route(src, dest topology.DeviceID) Route

	// Send injects a chunk at its current device.
	Send(chunk *Chunk)

	// Device returns the device with the given id.
	Device(id topology.DeviceID) *Device

	// NumDevices returns the number of devices, including switches.
	NumDevices() int

	// NumEndpoints returns the number of devices that can send and receive.
	NumEndpoints() int
}

// SendTransfer creates a chunk that goes from src to dest and sends it.
func SendTransfer(
	t Topology,
	src, dest topology.DeviceID,
	size uint64,
	callback ChunkCallback,
) *Chunk {
	chunk := NewChunk(size, t.Route(src, dest), callback)
	t.Send(chunk)

	return chunk
}

// basicTopology is a single-dimension topology built on a list of devices.
// The position of a device in the list is its local index.
type basicTopology struct {
	dim     topology.Dimension
	devices []*Device
}

// newBasicTopology wires the devices according to the dimension. If devices
// is nil, new devices with ids 0 to NumDevices()-1 are created.
func newBasicTopology(
	q *eventqueue.EventQueue,
	dim topology.Dimension,
	devices []*Device,
) (*basicTopology, error) {
	err := dim.Validate()
	if err != nil {
		return nil, err
	}

	if devices == nil {
		devices = make([]*Device, dim.NumDevices())
		for i := range devices {
			devices[i] = NewDevice(q, topology.DeviceID(i))
		}
	}

	if len(devices) != dim.NumDevices() {
		panic(fmt.Sprintf("%s of size %d needs %d devices, got %d",
			dim.Kind, dim.Size, dim.NumDevices(), len(devices)))
	}

	t := &basicTopology{
		dim:     dim,
		devices: devices,
	}

	switch dim.Kind {
	case topology.Ring:
		t.connectRing()
	case topology.FullyConnected:
		t.connectFullyConnected()
	case topology.Switch:
		t.connectSwitch()
	}

	return t, nil
}

func (t *basicTopology) connectRing() {
	n := t.dim.Size
	bw, lat := t.dim.BandwidthGBps, t.dim.LatencyNs

	// A bidirectional pair already covers both directions of a 2-device ring.
	if n == 2 && t.dim.Bidirectional {
		t.devices[0].Connect(t.devices[1], bw, lat, true)
		return
	}

	for i := 0; i < n; i++ {
		t.devices[i].Connect(t.devices[(i+1)%n], bw, lat, t.dim.Bidirectional)
	}
}

func (t *basicTopology) connectFullyConnected() {
	n := t.dim.Size
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			t.devices[i].Connect(t.devices[j],
				t.dim.BandwidthGBps, t.dim.LatencyNs, true)
		}
	}
}

func (t *basicTopology) connectSwitch() {
	n := t.dim.Size
	sw := t.devices[n]
	for i := 0; i < n; i++ {
		t.devices[i].Connect(sw, t.dim.BandwidthGBps, t.dim.LatencyNs, true)
	}
}

// routeLocal routes between two local indices.
func (t *basicTopology) routeLocal(src, dest int) Route {
	ids := t.dim.Route(src, dest)

	route := make(Route, len(ids))
	for i, id := range ids {
		route[i] = t.devices[id]
	}

	return route
}

// Dimension returns the dimension the topology is built from.
func (t *basicTopology) Dimension() topology.Dimension {
	return t.dim
}

// Route returns the route between two endpoints.
func (t *basicTopology) Route(src, dest topology.DeviceID) Route {
	return t.routeLocal(int(src), int(dest))
}

// Send injects a chunk at its current device.
func (t *basicTopology) Send(chunk *Chunk) {
	chunk.CurrentDevice().Send(chunk)
}

// Device returns the device with the given id.
func (t *basicTopology) Device(id topology.DeviceID) *Device {
	if id < 0 || int(id) >= len(t.devices) {
		panic(fmt.Sprintf("device %d out of range [0, %d)", id, len(t.devices)))
	}

	return t.devices[id]
}

// NumDevices returns the number of devices, including the switch.
func (t *basicTopology) NumDevices() int {
	return len(t.devices)
}

// NumEndpoints returns the number of endpoints.
func (t *basicTopology) NumEndpoints() int {
	return t.dim.Size
}

// A Ring connects device i to device i+1, wrapping around.
type Ring struct {
	*basicTopology
}

// NewRing creates a ring of the given size. The bandwidth is in GB/s and the
// latency in ns.
func NewRing(
	q *eventqueue.EventQueue,
	size int,
	bandwidthGBps, latencyNs float64,
	bidirectional bool,
) (*Ring, error) {
	t, err := newBasicTopology(q, topology.Dimension{
		Kind:          topology.Ring,
		Size:          size,
		BandwidthGBps: bandwidthGBps,
		LatencyNs:     latencyNs,
		Bidirectional: bidirectional,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &Ring{t}, nil
}

// A FullyConnected topology links every pair of devices directly.
type FullyConnected struct {
	*basicTopology
}

// NewFullyConnected creates a fully-connected topology of the given size.
func NewFullyConnected(
	q *eventqueue.EventQueue,
	size int,
	bandwidthGBps, latencyNs float64,
) (*FullyConnected, error) {
	t, err := newBasicTopology(q, topology.Dimension{
		Kind:          topology.FullyConnected,
		Size:          size,
		BandwidthGBps: bandwidthGBps,
		LatencyNs:     latencyNs,
		Bidirectional: true,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &FullyConnected{t}, nil
}

// A Switch connects every endpoint to one switch device, whose id equals the
// number of endpoints.
type Switch struct {
	*basicTopology
}

// NewSwitch creates a switch topology with the given number of endpoints.
func NewSwitch(
	q *eventqueue.EventQueue,
	size int,
	bandwidthGBps, latencyNs float64,
) (*Switch, error) {
	t, err := newBasicTopology(q, topology.Dimension{
		Kind:          topology.Switch,
		Size:          size,
		BandwidthGBps: bandwidthGBps,
		LatencyNs:     latencyNs,
		Bidirectional: true,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &Switch{t}, nil
}

// SwitchDevice returns the switch.
func (s *Switch) SwitchDevice() *Device {
	return s.devices[s.dim.Size]
}
