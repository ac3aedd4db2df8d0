package topology

import "fmt"

// An Address locates a device in a multi-dimensional topology, one index per
// dimension. Dimension 0 varies the fastest.
type Address []int

// Equal returns true if both addresses point to the same device.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// NumDevices returns the number of endpoints a shape holds.
func NumDevices(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}

	return n
}

// AddressOf translates a flat device id into an address.
func AddressOf(id DeviceID, shape []int) Address {
	if id < 0 || int(id) >= NumDevices(shape) {
		panic(fmt.Sprintf("device %d out of range for shape %v", id, shape))
	}

	addr := make(Address, len(shape))
	stride := 1
	for dim, size := range shape {
		addr[dim] = (int(id) % (stride * size)) / stride
		stride *= size
	}

	return addr
}

// IDOf translates an address back into a flat device id.
func IDOf(addr Address, shape []int) DeviceID {
	if len(addr) != len(shape) {
		panic(fmt.Sprintf("address %v does not match shape %v", addr, shape))
	}

	id := 0
	stride := 1
	for dim, size := range shape {
		if addr[dim] < 0 || addr[dim] >= size {
			panic(fmt.Sprintf("address %v out of range for shape %v",
				addr, shape))
		}

		id += addr[dim] * stride
		stride *= size
	}

	return DeviceID(id)
}

// FirstMismatch returns the lowest dimension where the two addresses differ,
// or -1 if they are equal.
func FirstMismatch(a, b Address) int {
	for dim := range a {
		if a[dim] != b[dim] {
			return dim
		}
	}

	return -1
}
