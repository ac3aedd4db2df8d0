package congestionaware

import (
	"fmt"

	"github.com/syifan/commsim/topology"
)

// A Route is the list of devices a chunk still has to visit, the current
// device first.
type Route []*Device

// IDs returns the device ids along the route.
func (r Route) IDs() topology.Route {
	ids := make(topology.Route, len(r))
	for i, d := range r {
		ids[i] = d.ID()
	}

	return ids
}

// A ChunkCallback is invoked when a chunk reaches its destination.
type ChunkCallback func(c *Chunk)

// A Chunk is the unit of data that moves through the network hop by hop.
type Chunk struct {
	size     uint64
	route    Route
	callback ChunkCallback
}

// NewChunk creates a chunk that travels along the given route. The callback
// may be nil.
func NewChunk(size uint64, route Route, callback ChunkCallback) *Chunk {
	if len(route) == 0 {
		panic("chunk route must not be empty")
	}

	r := make(Route, len(route))
	copy(r, route)

	return &Chunk{
		size:     size,
		route:    r,
		callback: callback,
	}
}

// Size returns the payload size in bytes.
func (c *Chunk) Size() uint64 {
	return c.size
}

// CurrentDevice returns the device the chunk is at.
func (c *Chunk) CurrentDevice() *Device {
	return c.route[0]
}

// NextDevice returns the device of the next hop.
func (c *Chunk) NextDevice() *Device {
	if c.Arrived() {
		panic(fmt.Sprintf("chunk already arrived at device %d",
			c.CurrentDevice().ID()))
	}

	return c.route[1]
}

// Arrived returns true if the chunk is at its destination.
func (c *Chunk) Arrived() bool {
	return len(c.route) == 1
}

// RemainingHops returns the number of hops left.
func (c *Chunk) RemainingHops() int {
	return len(c.route) - 1
}

// Route returns the remaining route including the current device.
func (c *Chunk) Route() Route {
	return c.route
}

func (c *Chunk) markArrivedNextDevice() {
	if c.Arrived() {
		panic("chunk cannot move past its destination")
	}

	c.route = c.route[1:]
}

func (c *Chunk) invokeCallback() {
	if c.callback != nil {
		c.callback(c)
	}
}
