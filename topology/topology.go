// Package topology describes the shape of an interconnect and computes the
// routes through it. The routing rules are shared by the congestion-aware and
// the congestion-unaware network models.
package topology

import (
	"fmt"
	"strings"
)

// DeviceID identifies a device in a topology.
type DeviceID int

// A Route is the ordered list of devices a transfer visits, the current
// position first and the destination last.
type Route []DeviceID

// Hops returns the number of links the route traverses.
func (r Route) Hops() int {
	if len(r) == 0 {
		return 0
	}

	return len(r) - 1
}

// Kind is the kind of a single-dimension topology.
type Kind int

// Kind constants
const (
	Ring Kind = iota
	FullyConnected
	Switch
)

// String returns the name of the kind as used in network files.
func (k Kind) String() string {
	switch k {
	case Ring:
		return "Ring"
	case FullyConnected:
		return "FullyConnected"
	case Switch:
		return "Switch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a kind name into a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ring":
		return Ring, nil
	case "fullyconnected", "fully_connected", "fc":
		return FullyConnected, nil
	case "switch":
		return Switch, nil
	default:
		return 0, fmt.Errorf("%w: unknown topology kind %q",
			ErrInvalidConfig, name)
	}
}

// A Dimension describes one routing dimension of a topology.
type Dimension struct {
	Kind          Kind
	Size          int
	BandwidthGBps float64
	LatencyNs     float64
	Bidirectional bool
}

// NumDevices returns the number of devices the dimension needs, including the
// switch device of a Switch dimension.
func (d Dimension) NumDevices() int {
	if d.Kind == Switch {
		return d.Size + 1
	}

	return d.Size
}

// Validate checks if the dimension can be built.
func (d Dimension) Validate() error {
	if d.Kind != Ring && d.Kind != FullyConnected && d.Kind != Switch {
		return fmt.Errorf("%w: unknown topology kind %s",
			ErrInvalidConfig, d.Kind)
	}

	if d.Size < 2 {
		return fmt.Errorf("%w: %s needs at least 2 devices, got %d",
			ErrInvalidConfig, d.Kind, d.Size)
	}

	if !(d.BandwidthGBps > 0) {
		return fmt.Errorf("%w: bandwidth must be positive, got %v",
			ErrInvalidConfig, d.BandwidthGBps)
	}

	if !(d.LatencyNs >= 0) {
		return fmt.Errorf("%w: latency must not be negative, got %v",
			ErrInvalidConfig, d.LatencyNs)
	}

	return nil
}

// BytesPerNs returns the link bandwidth in bytes per nanosecond.
func (d Dimension) BytesPerNs() float64 {
	return BytesPerNs(d.BandwidthGBps)
}

// BytesPerNs converts a bandwidth in GB/s into bytes per nanosecond.
func BytesPerNs(gbps float64) float64 {
	return gbps * (1 << 30) / 1e9
}

// Hops returns the number of hops between two local indices of the dimension.
func (d Dimension) Hops(src, dest int) int {
	switch d.Kind {
	case Ring:
		return RingHops(d.Size, d.Bidirectional, src, dest)
	case FullyConnected:
		checkPair(d.Size, src, dest)
		return 1
	case Switch:
		checkPair(d.Size, src, dest)
		return 2
	default:
		panic(fmt.Sprintf("unknown topology kind %s", d.Kind))
	}
}

// Route returns the route between two local indices of the dimension. The
// switch of a Switch dimension has the local index Size.
func (d Dimension) Route(src, dest int) Route {
	switch d.Kind {
	case Ring:
		return RingRoute(d.Size, d.Bidirectional, src, dest)
	case FullyConnected:
		return FullyConnectedRoute(d.Size, src, dest)
	case Switch:
		return SwitchRoute(d.Size, src, dest)
	default:
		panic(fmt.Sprintf("unknown topology kind %s", d.Kind))
	}
}

// Shape returns the number of endpoints in each dimension.
func Shape(dims []Dimension) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = d.Size
	}

	return shape
}
