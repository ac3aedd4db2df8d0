package timemodel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/syifan/commsim/congestionaware"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

const mib = 1 << 20

var _ = Describe("Closed-form models", func() {
	It("should charge every ring hop latency once", func() {
		ring, err := NewRing(5, 50, 500, true)
		Expect(err).ToNot(HaveOccurred())

		Expect(ring.Hops(1, 4)).To(Equal(2))
		Expect(ring.Route(1, 4)).To(Equal(topology.Route{1, 0, 4}))
		Expect(ring.Send(1, 4, mib)).To(Equal(eventqueue.EventTime(20531)))
	})

	It("should go the long way on a unidirectional ring", func() {
		ring, err := NewRing(5, 50, 500, false)
		Expect(err).ToNot(HaveOccurred())

		Expect(ring.Hops(1, 0)).To(Equal(4))
		Expect(ring.Send(1, 0, mib)).To(Equal(eventqueue.EventTime(21531)))
	})

	It("should take one hop on a fully-connected topology", func() {
		fc, err := NewFullyConnected(5, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		Expect(fc.Hops(1, 4)).To(Equal(1))
		Expect(fc.Send(1, 4, mib)).To(Equal(eventqueue.EventTime(20031)))
	})

	It("should take two hops through a switch", func() {
		sw, err := NewSwitch(5, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		Expect(sw.Route(1, 4)).To(Equal(topology.Route{1, 5, 4}))
		Expect(sw.Send(1, 4, mib)).To(Equal(eventqueue.EventTime(20531)))
	})

	It("should reject invalid parameters", func() {
		_, err := NewSwitch(5, 0, 500)
		Expect(err).To(MatchError(topology.ErrInvalidConfig))

		_, err = NewFullyConnected(5, 50, -1)
		Expect(err).To(MatchError(topology.ErrInvalidConfig))
	})

	It("should report identical latencies for concurrent sends", func() {
		fc, err := NewFullyConnected(4, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		single := fc.Send(0, 1, mib)
		for i := 0; i < 8; i++ {
			Expect(fc.Send(0, 1, mib)).To(Equal(single))
		}
	})

	It("should match an uncontended congestion-aware single hop", func() {
		fc, err := NewFullyConnected(5, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		q := eventqueue.NewEventQueue()
		aware, err := congestionaware.NewFullyConnected(q, 5, 50, 500)
		Expect(err).ToNot(HaveOccurred())

		var finished eventqueue.EventTime
		congestionaware.SendTransfer(aware, 2, 3, 4096,
			func(*congestionaware.Chunk) { finished = q.CurrentTime() })
		q.Run()

		Expect(fc.Send(2, 3, 4096)).To(Equal(finished))
	})
})

var _ = Describe("MultiDim", func() {
	var m *MultiDim

	BeforeEach(func() {
		var err error
		m, err = NewMultiDim([]topology.Dimension{
			{
				Kind: topology.Ring, Size: 4,
				BandwidthGBps: 50, LatencyNs: 500, Bidirectional: true,
			},
			{
				Kind: topology.Switch, Size: 2,
				BandwidthGBps: 50, LatencyNs: 700, Bidirectional: true,
			},
		})
		Expect(err).ToNot(HaveOccurred())
	})

	It("should count the endpoints", func() {
		Expect(m.Shape()).To(Equal([]int{4, 2}))
		Expect(m.NumEndpoints()).To(Equal(8))
	})

	It("should use the dimension that differs", func() {
		// (0, 0) to (0, 1) only differs in the switch dimension.
		Expect(m.Send(0, 4, mib)).To(Equal(eventqueue.EventTime(20931)))
	})

	It("should only charge the first mismatched dimension", func() {
		// (1, 0) to (3, 1) differs in both dimensions; the ring takes 2 hops.
		Expect(m.Send(1, 7, mib)).To(Equal(eventqueue.EventTime(20531)))
	})

	It("should panic when sending to itself", func() {
		Expect(func() { m.Send(3, 3, mib) }).To(Panic())
	})
})

var _ = Describe("Build", func() {
	It("should build a single-dimension model", func() {
		model, err := Build(topology.Config{
			Topology:  []string{"FullyConnected"},
			NPUsCount: []int{8},
			Bandwidth: []float64{50},
			Latency:   []float64{500},
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(model).To(BeAssignableToTypeOf(&FullyConnected{}))
		Expect(model.NumEndpoints()).To(Equal(8))
	})

	It("should build a multi-dimensional model", func() {
		model, err := Build(topology.Config{
			Topology:  []string{"Ring", "Switch"},
			NPUsCount: []int{4, 2},
			Bandwidth: []float64{50, 50},
			Latency:   []float64{500, 700},
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(model).To(BeAssignableToTypeOf(&MultiDim{}))
	})

	It("should reject mismatched arrays", func() {
		_, err := Build(topology.Config{
			Topology:  []string{"Ring", "Switch"},
			NPUsCount: []int{4},
			Bandwidth: []float64{50, 50},
			Latency:   []float64{500, 700},
		})

		Expect(err).To(MatchError(topology.ErrInvalidConfig))
	})
})
