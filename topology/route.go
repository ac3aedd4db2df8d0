package topology

import "fmt"

func checkPair(size int, src, dest int) {
	if src < 0 || src >= size || dest < 0 || dest >= size {
		panic(fmt.Sprintf("device pair (%d, %d) out of range [0, %d)",
			src, dest, size))
	}

	if src == dest {
		panic(fmt.Sprintf("cannot route device %d to itself", src))
	}
}

// ringGoesForward decides the walking direction on a ring. Ties go forward.
func ringGoesForward(size int, bidirectional bool, src, dest int) bool {
	if !bidirectional {
		return true
	}

	forward := ((dest-src)%size + size) % size

	return forward <= size-forward
}

// RingHops returns the number of hops between two devices of a ring.
func RingHops(size int, bidirectional bool, src, dest int) int {
	checkPair(size, src, dest)

	forward := ((dest-src)%size + size) % size
	if ringGoesForward(size, bidirectional, src, dest) {
		return forward
	}

	return size - forward
}

// RingRoute walks a ring from src to dest. A unidirectional ring is always
// walked forward; a bidirectional ring takes the shorter direction.
func RingRoute(size int, bidirectional bool, src, dest int) Route {
	checkPair(size, src, dest)

	step := 1
	if !ringGoesForward(size, bidirectional, src, dest) {
		step = size - 1
	}

	route := Route{DeviceID(src)}
	for cur := src; cur != dest; {
		cur = (cur + step) % size
		route = append(route, DeviceID(cur))
	}

	return route
}

// FullyConnectedRoute returns the single-hop route between two devices.
func FullyConnectedRoute(size int, src, dest int) Route {
	checkPair(size, src, dest)

	return Route{DeviceID(src), DeviceID(dest)}
}

// SwitchRoute returns the route through the switch, whose id is size.
func SwitchRoute(size int, src, dest int) Route {
	checkPair(size, src, dest)

	return Route{DeviceID(src), DeviceID(size), DeviceID(dest)}
}
