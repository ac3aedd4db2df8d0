package sendrecv

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

// A Key identifies matching sends and receives.
type Key struct {
	Tag  int
	Src  topology.DeviceID
	Dst  topology.DeviceID
	Size uint64
}

func (k Key) String() string {
	return fmt.Sprintf("tag %d, %d->%d, %d bytes", k.Tag, k.Src, k.Dst, k.Size)
}

// A Matcher pairs sends with receives that share the same key. Whichever side
// comes second consumes the record left by the first. Records with the same
// key are consumed in FIFO order.
type Matcher struct {
	q       *eventqueue.EventQueue
	network Network

	inflight  map[Key]int
	completed map[Key][]eventqueue.EventTime
	waiting   map[Key][]func()
}

// NewMatcher creates a matcher that sends data over the network.
func NewMatcher(q *eventqueue.EventQueue, network Network) *Matcher {
	return &Matcher{
		q:         q,
		network:   network,
		inflight:  make(map[Key]int),
		completed: make(map[Key][]eventqueue.EventTime),
		waiting:   make(map[Key][]func()),
	}
}

// Send starts a transfer. The onSent callback, which may be nil, runs when the
// data arrives at the destination.
func (m *Matcher) Send(key Key, onSent func()) {
	if key.Src == key.Dst {
		panic(fmt.Sprintf("cannot send to itself (%s)", key))
	}

	m.inflight[key]++
	m.network.Transfer(key.Src, key.Dst, key.Size, func() {
		m.sendArrived(key, onSent)
	})
}

func (m *Matcher) sendArrived(key Key, onSent func()) {
	m.inflight[key]--
	if m.inflight[key] == 0 {
		delete(m.inflight, key)
	}

	if onSent != nil {
		onSent()
	}

	waiting := m.waiting[key]
	if len(waiting) == 0 {
		m.completed[key] = append(m.completed[key], m.q.CurrentTime())
		return
	}

	onRecv := waiting[0]
	m.popWaiting(key)

	logrus.WithFields(logrus.Fields{
		"time": m.q.CurrentTime(),
		"key":  key.String(),
	}).Trace("send matched a waiting receive")

	m.q.Schedule(m.q.CurrentTime(), onRecv)
}

// Recv waits for a matching send. The onRecv callback runs as soon as a send
// with the same key has arrived.
func (m *Matcher) Recv(key Key, onRecv func()) {
	if onRecv == nil {
		onRecv = func() {}
	}

	completed := m.completed[key]
	if len(completed) == 0 {
		m.waiting[key] = append(m.waiting[key], onRecv)
		return
	}

	if len(completed) == 1 {
		delete(m.completed, key)
	} else {
		m.completed[key] = completed[1:]
	}

	logrus.WithFields(logrus.Fields{
		"time":    m.q.CurrentTime(),
		"key":     key.String(),
		"arrival": completed[0],
	}).Trace("receive matched an arrived send")

	m.q.Schedule(m.q.CurrentTime(), onRecv)
}

func (m *Matcher) popWaiting(key Key) {
	waiting := m.waiting[key]
	if len(waiting) == 1 {
		delete(m.waiting, key)
		return
	}

	waiting[0] = nil
	m.waiting[key] = waiting[1:]
}

// Outstanding returns the number of sends that have not been received yet,
// including the ones still in flight, and the number of receives still
// waiting for a send.
func (m *Matcher) Outstanding() (sends, recvs int) {
	for _, n := range m.inflight {
		sends += n
	}

	for _, c := range m.completed {
		sends += len(c)
	}

	for _, w := range m.waiting {
		recvs += len(w)
	}

	return sends, recvs
}
