package topology

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func mod(a, n int) int {
	return ((a % n) + n) % n
}

var _ = Describe("Routing", func() {
	Context("on a ring", func() {
		It("should take the shorter direction when bidirectional", func() {
			for n := 2; n <= 9; n++ {
				for src := 0; src < n; src++ {
					for dest := 0; dest < n; dest++ {
						if src == dest {
							continue
						}

						route := RingRoute(n, true, src, dest)
						forward := mod(dest-src, n)
						backward := mod(src-dest, n)
						expected := forward
						if backward < forward {
							expected = backward
						}

						Expect(route.Hops()).To(Equal(expected))
						Expect(RingHops(n, true, src, dest)).To(Equal(expected))
						Expect(route[0]).To(Equal(DeviceID(src)))
						Expect(route[len(route)-1]).To(Equal(DeviceID(dest)))
					}
				}
			}
		})

		It("should always walk forward when unidirectional", func() {
			for n := 2; n <= 9; n++ {
				for src := 0; src < n; src++ {
					for dest := 0; dest < n; dest++ {
						if src == dest {
							continue
						}

						route := RingRoute(n, false, src, dest)
						Expect(route.Hops()).To(Equal(mod(dest-src, n)))

						for i := 1; i < len(route); i++ {
							Expect(int(route[i])).To(
								Equal(mod(int(route[i-1])+1, n)))
						}
					}
				}
			}
		})

		It("should break ties toward the forward direction", func() {
			Expect(RingRoute(4, true, 0, 2)).To(Equal(Route{0, 1, 2}))
			Expect(RingRoute(4, true, 3, 1)).To(Equal(Route{3, 0, 1}))
		})

		It("should walk backward across the wrap point", func() {
			Expect(RingRoute(5, true, 1, 4)).To(Equal(Route{1, 0, 4}))
		})
	})

	It("should route fully connected devices in one hop", func() {
		for src := 0; src < 6; src++ {
			for dest := 0; dest < 6; dest++ {
				if src == dest {
					continue
				}

				route := FullyConnectedRoute(6, src, dest)
				Expect(route).To(HaveLen(2))
			}
		}
	})

	It("should route switch endpoints through the switch", func() {
		for src := 0; src < 5; src++ {
			for dest := 0; dest < 5; dest++ {
				if src == dest {
					continue
				}

				route := SwitchRoute(5, src, dest)
				Expect(route).To(HaveLen(3))
				Expect(route[1]).To(Equal(DeviceID(5)))
			}
		}
	})

	It("should panic on out-of-range devices", func() {
		Expect(func() { RingRoute(4, true, 0, 4) }).To(Panic())
		Expect(func() { FullyConnectedRoute(4, -1, 2) }).To(Panic())
		Expect(func() { SwitchRoute(4, 0, 7) }).To(Panic())
	})

	It("should panic when routing a device to itself", func() {
		Expect(func() { RingRoute(4, true, 2, 2) }).To(Panic())
	})

	It("should dispatch by dimension kind", func() {
		ring := Dimension{Kind: Ring, Size: 8, Bidirectional: true}
		fc := Dimension{Kind: FullyConnected, Size: 8}
		sw := Dimension{Kind: Switch, Size: 8}

		Expect(ring.Hops(0, 5)).To(Equal(3))
		Expect(fc.Hops(0, 5)).To(Equal(1))
		Expect(sw.Hops(0, 5)).To(Equal(2))
		Expect(sw.Route(0, 5)).To(Equal(Route{0, 8, 5}))
		Expect(sw.NumDevices()).To(Equal(9))
		Expect(ring.NumDevices()).To(Equal(8))
	})
})
