package congestionaware

import (
	"fmt"
	"sort"

	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

// A Device is an endpoint or a switch. It owns the links to its neighbors.
type Device struct {
	id    topology.DeviceID
	q     *eventqueue.EventQueue
	links map[topology.DeviceID]*Link
}

// NewDevice creates a device without any link.
func NewDevice(q *eventqueue.EventQueue, id topology.DeviceID) *Device {
	return &Device{
		id:    id,
		q:     q,
		links: make(map[topology.DeviceID]*Link),
	}
}

// ID returns the identity of the device.
func (d *Device) ID() topology.DeviceID {
	return d.id
}

// Connected returns true if the device has a link to the other device.
func (d *Device) Connected(id topology.DeviceID) bool {
	_, ok := d.links[id]
	return ok
}

// Link returns the link toward the given neighbor, or nil.
func (d *Device) Link(id topology.DeviceID) *Link {
	return d.links[id]
}

// Neighbors returns the ids of the devices this device has links to, in
// ascending order.
func (d *Device) Neighbors() []topology.DeviceID {
	ids := make([]topology.DeviceID, 0, len(d.links))
	for id := range d.links {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Connect creates a link to the other device. The bandwidth is in GB/s and the
// latency in ns. A bidirectional connection also creates the reverse link; the
// two directions never contend with each other.
func (d *Device) Connect(
	other *Device,
	bandwidthGBps float64,
	latencyNs float64,
	bidirectional bool,
) {
	d.connectOneWay(other, bandwidthGBps, latencyNs)

	if bidirectional {
		other.connectOneWay(d, bandwidthGBps, latencyNs)
	}
}

func (d *Device) connectOneWay(
	other *Device,
	bandwidthGBps float64,
	latencyNs float64,
) {
	if other == d {
		panic(fmt.Sprintf("device %d cannot connect to itself", d.id))
	}

	if d.Connected(other.id) {
		panic(fmt.Sprintf("device %d is already connected to device %d",
			d.id, other.id))
	}

	d.links[other.id] = NewLink(d.q, d, other,
		topology.BytesPerNs(bandwidthGBps), latencyNs)
}

// Send forwards the chunk over the link toward its next hop.
func (d *Device) Send(chunk *Chunk) {
	if chunk.CurrentDevice() != d {
		panic(fmt.Sprintf("chunk at device %d sent from device %d",
			chunk.CurrentDevice().ID(), d.id))
	}

	if chunk.Arrived() {
		panic(fmt.Sprintf("chunk already arrived at device %d", d.id))
	}

	next := chunk.NextDevice().ID()
	link, ok := d.links[next]
	if !ok {
		panic(fmt.Sprintf("device %d is not connected to device %d",
			d.id, next))
	}

	link.Send(chunk)
}
