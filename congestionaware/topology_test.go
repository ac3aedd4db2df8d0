package congestionaware

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

const mib = 1 << 20

// expectConnectedRoute checks that every hop of the route has a link.
func expectConnectedRoute(route Route) {
	for i := 0; i+1 < len(route); i++ {
		ExpectWithOffset(1, route[i].Connected(route[i+1].ID())).To(BeTrue(),
			"device %d is not connected to device %d",
			route[i].ID(), route[i+1].ID())
	}
}

func finishTime(
	q *eventqueue.EventQueue,
	t Topology,
	src, dest topology.DeviceID,
	size uint64,
) eventqueue.EventTime {
	var finished eventqueue.EventTime
	SendTransfer(t, src, dest, size, func(*Chunk) {
		finished = q.CurrentTime()
	})
	q.Run()

	return finished
}

var _ = Describe("Ring", func() {
	var q *eventqueue.EventQueue

	BeforeEach(func() {
		q = eventqueue.NewEventQueue()
	})

	It("should route the shorter way around", func() {
		ring, err := NewRing(q, 5, 50, 500, true)
		Expect(err).ToNot(HaveOccurred())

		Expect(ring.Route(1, 4).IDs()).To(Equal(topology.Route{1, 0, 4}))
		Expect(ring.Route(1, 3).IDs()).To(Equal(topology.Route{1, 2, 3}))
	})

	It("should only go forward when unidirectional", func() {
		ring, err := NewRing(q, 5, 50, 500, false)
		Expect(err).ToNot(HaveOccurred())

		Expect(ring.Route(1, 0).IDs()).To(Equal(topology.Route{1, 2, 3, 4, 0}))
		Expect(ring.Device(1).Neighbors()).To(Equal([]topology.DeviceID{2}))
	})

	It("should connect a ring of two once", func() {
		ring, err := NewRing(q, 2, 50, 500, true)
		Expect(err).ToNot(HaveOccurred())

		Expect(ring.Device(0).Neighbors()).To(Equal([]topology.DeviceID{1}))
		Expect(ring.Device(1).Neighbors()).To(Equal([]topology.DeviceID{0}))
	})

	It("should take two hops to send 1 MiB from 1 to 4", func() {
		ring, err := NewRing(q, 5, 50, 500, true)
		Expect(err).ToNot(HaveOccurred())

		Expect(finishTime(q, ring, 1, 4, mib)).
			To(Equal(eventqueue.EventTime(40062)))
	})

	It("should reject a ring of one", func() {
		_, err := NewRing(q, 1, 50, 500, true)

		Expect(err).To(MatchError(topology.ErrInvalidConfig))
	})

	It("should panic when routing to itself", func() {
		ring, err := NewRing(q, 4, 50, 500, true)
		Expect(err).ToNot(HaveOccurred())

		Expect(func() { ring.Route(2, 2) }).To(Panic())
	})
})

var _ = Describe("FullyConnected", func() {
	var q *eventqueue.EventQueue

	BeforeEach(func() {
		q = eventqueue.NewEventQueue()
	})

	It("should link every pair", func() {
		fc, err := NewFullyConnected(q, 4, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		for i := 0; i < 4; i++ {
			Expect(fc.Device(topology.DeviceID(i)).Neighbors()).To(HaveLen(3))
		}
		Expect(fc.Route(3, 0).IDs()).To(Equal(topology.Route{3, 0}))
	})

	It("should take one hop to send 1 MiB from 1 to 4", func() {
		fc, err := NewFullyConnected(q, 5, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		Expect(finishTime(q, fc, 1, 4, mib)).
			To(Equal(eventqueue.EventTime(20031)))
	})

	It("should queue transfers that share a link", func() {
		fc, err := NewFullyConnected(q, 3, oneBytePerNs, 10)
		Expect(err).ToNot(HaveOccurred())

		var times []eventqueue.EventTime
		for i := 0; i < 3; i++ {
			SendTransfer(fc, 0, 1, 100, func(*Chunk) {
				times = append(times, q.CurrentTime())
			})
		}
		SendTransfer(fc, 0, 2, 100, func(*Chunk) {
			times = append(times, q.CurrentTime())
		})
		q.Run()

		Expect(times).To(Equal([]eventqueue.EventTime{110, 110, 210, 310}))
	})
})

var _ = Describe("Switch", func() {
	var q *eventqueue.EventQueue

	BeforeEach(func() {
		q = eventqueue.NewEventQueue()
	})

	It("should route through the switch", func() {
		sw, err := NewSwitch(q, 5, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		Expect(sw.NumEndpoints()).To(Equal(5))
		Expect(sw.NumDevices()).To(Equal(6))
		Expect(sw.SwitchDevice().ID()).To(Equal(topology.DeviceID(5)))
		Expect(sw.Route(1, 4).IDs()).To(Equal(topology.Route{1, 5, 4}))
	})

	It("should take two hops to send 1 MiB from 1 to 4", func() {
		sw, err := NewSwitch(q, 5, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		Expect(finishTime(q, sw, 1, 4, mib)).
			To(Equal(eventqueue.EventTime(40062)))
	})

	It("should panic on a device out of range", func() {
		sw, err := NewSwitch(q, 3, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		Expect(func() { sw.Device(4) }).To(Panic())
	})
})
