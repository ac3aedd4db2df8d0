package sendrecv

import (
	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

var _ = Describe("Matcher", func() {
	var (
		mockCtrl *gomock.Controller
		network  *MockNetwork
		q        *eventqueue.EventQueue
		m        *Matcher
		arrive   []func()
		key      Key
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		network = NewMockNetwork(mockCtrl)
		q = eventqueue.NewEventQueue()
		m = NewMatcher(q, network)
		arrive = nil
		key = Key{Tag: 7, Src: 0, Dst: 1, Size: 64}

		network.EXPECT().
			Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Do(func(src, dst topology.DeviceID, size uint64, done func()) {
				arrive = append(arrive, done)
			}).
			AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	// deliver makes the network report the arrival of the i-th transfer at
	// the given time.
	deliver := func(i int, t eventqueue.EventTime) {
		q.Schedule(t, arrive[i])
	}

	It("should start a transfer with the key's endpoints and size", func() {
		other := NewMockNetwork(mockCtrl)
		other.EXPECT().Transfer(topology.DeviceID(2), topology.DeviceID(3),
			uint64(128), gomock.Any())

		NewMatcher(q, other).Send(Key{Src: 2, Dst: 3, Size: 128}, nil)
	})

	It("should complete a receive posted before the send arrives", func() {
		var sentAt, recvAt eventqueue.EventTime
		m.Recv(key, func() { recvAt = q.CurrentTime() })
		m.Send(key, func() { sentAt = q.CurrentTime() })

		sends, recvs := m.Outstanding()
		Expect(sends).To(Equal(1))
		Expect(recvs).To(Equal(1))

		deliver(0, 300)
		q.Run()

		Expect(sentAt).To(Equal(eventqueue.EventTime(300)))
		Expect(recvAt).To(Equal(eventqueue.EventTime(300)))
		sends, recvs = m.Outstanding()
		Expect(sends).To(Equal(0))
		Expect(recvs).To(Equal(0))
	})

	It("should complete a receive posted after the send arrived", func() {
		var recvAt eventqueue.EventTime
		m.Send(key, nil)
		deliver(0, 300)
		q.Run()

		sends, _ := m.Outstanding()
		Expect(sends).To(Equal(1))

		q.Schedule(1000, func() {
			m.Recv(key, func() { recvAt = q.CurrentTime() })
		})
		q.Run()

		Expect(recvAt).To(Equal(eventqueue.EventTime(1000)))
		sends, recvs := m.Outstanding()
		Expect(sends).To(Equal(0))
		Expect(recvs).To(Equal(0))
	})

	It("should not match different keys", func() {
		received := false
		m.Recv(Key{Tag: 8, Src: 0, Dst: 1, Size: 64}, func() { received = true })
		m.Send(key, nil)
		deliver(0, 10)
		q.Run()

		Expect(received).To(BeFalse())
		sends, recvs := m.Outstanding()
		Expect(sends).To(Equal(1))
		Expect(recvs).To(Equal(1))
	})

	It("should match receives in FIFO order", func() {
		var order []int
		for i := 0; i < 3; i++ {
			i := i
			m.Recv(key, func() { order = append(order, i) })
		}
		for i := 0; i < 3; i++ {
			m.Send(key, nil)
		}

		deliver(2, 30)
		deliver(0, 10)
		deliver(1, 20)
		q.Run()

		Expect(order).To(Equal([]int{0, 1, 2}))
	})

	It("should panic on a send to itself", func() {
		Expect(func() { m.Send(Key{Src: 1, Dst: 1}, nil) }).To(Panic())
	})
})
