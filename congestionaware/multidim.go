package congestionaware

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

// A MultiDim topology composes one single-dimension topology per dimension.
// The endpoints are shared by all dimensions. Along each dimension, the
// endpoints that agree on all the other coordinates form a line, and every
// line is wired as an instance of that dimension's topology. Switch devices
// get ids after all the endpoints.
type MultiDim struct {
	dims    []topology.Dimension
	shape   []int
	devices []*Device

	// lines[dim] maps the id of the line's first endpoint to the line.
	lines []map[topology.DeviceID]*basicTopology
}

// NewMultiDim builds a multi-dimensional topology.
func NewMultiDim(
	q *eventqueue.EventQueue,
	dims []topology.Dimension,
) (*MultiDim, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: no dimension declared",
			topology.ErrInvalidConfig)
	}

	for i, d := range dims {
		err := d.Validate()
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
	}

	t := &MultiDim{
		dims:  dims,
		shape: topology.Shape(dims),
		lines: make([]map[topology.DeviceID]*basicTopology, len(dims)),
	}

	numEndpoints := topology.NumDevices(t.shape)
	for i := 0; i < numEndpoints; i++ {
		t.devices = append(t.devices, NewDevice(q, topology.DeviceID(i)))
	}

	for dim := range dims {
		err := t.buildDimension(q, dim)
		if err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"shape":     t.shape,
		"endpoints": numEndpoints,
		"devices":   len(t.devices),
	}).Debug("multi-dimensional topology built")

	return t, nil
}

func (t *MultiDim) buildDimension(q *eventqueue.EventQueue, dim int) error {
	d := t.dims[dim]
	t.lines[dim] = make(map[topology.DeviceID]*basicTopology)

	for id := 0; id < t.NumEndpoints(); id++ {
		addr := topology.AddressOf(topology.DeviceID(id), t.shape)
		if addr[dim] != 0 {
			continue
		}

		members := make([]*Device, 0, d.NumDevices())
		for i := 0; i < d.Size; i++ {
			addr[dim] = i
			members = append(members, t.devices[topology.IDOf(addr, t.shape)])
		}

		if d.Kind == topology.Switch {
			sw := NewDevice(q, topology.DeviceID(len(t.devices)))
			t.devices = append(t.devices, sw)
			members = append(members, sw)
		}

		line, err := newBasicTopology(q, d, members)
		if err != nil {
			return fmt.Errorf("dimension %d: %w", dim, err)
		}

		t.lines[dim][topology.DeviceID(id)] = line
	}

	return nil
}

// Shape returns the number of endpoints in each dimension.
func (t *MultiDim) Shape() []int {
	return t.shape
}

// Dimensions returns the dimensions of the topology.
func (t *MultiDim) Dimensions() []topology.Dimension {
	return t.dims
}

func (t *MultiDim) lineOf(dim int, addr topology.Address) *basicTopology {
	base := make(topology.Address, len(addr))
	copy(base, addr)
	base[dim] = 0

	return t.lines[dim][topology.IDOf(base, t.shape)]
}

// Route walks the mismatched dimensions in ascending order. Each dimension
// contributes the route of its own topology between the two coordinates.
func (t *MultiDim) Route(src, dest topology.DeviceID) Route {
	if src == dest {
		panic(fmt.Sprintf("cannot route device %d to itself", src))
	}

	cur := topology.AddressOf(src, t.shape)
	destAddr := topology.AddressOf(dest, t.shape)

	route := Route{t.devices[src]}
	for dim := range t.dims {
		if cur[dim] == destAddr[dim] {
			continue
		}

		sub := t.lineOf(dim, cur).routeLocal(cur[dim], destAddr[dim])
		route = append(route, sub[1:]...)
		cur[dim] = destAddr[dim]
	}

	return route
}

// Send injects a chunk at its current device.
func (t *MultiDim) Send(chunk *Chunk) {
	chunk.CurrentDevice().Send(chunk)
}

// Device returns the device with the given id.
func (t *MultiDim) Device(id topology.DeviceID) *Device {
	if id < 0 || int(id) >= len(t.devices) {
		panic(fmt.Sprintf("device %d out of range [0, %d)", id, len(t.devices)))
	}

	return t.devices[id]
}

// NumDevices returns the number of devices, including all the switches.
func (t *MultiDim) NumDevices() int {
	return len(t.devices)
}

// NumEndpoints returns the number of endpoints.
func (t *MultiDim) NumEndpoints() int {
	return topology.NumDevices(t.shape)
}
