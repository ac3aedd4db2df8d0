package congestionaware

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syifan/commsim/eventqueue"
)

// A Link is a directed channel between two devices. A link serializes one
// chunk at a time and queues the others in FIFO order.
type Link struct {
	q        *eventqueue.EventQueue
	src, dst *Device

	bandwidth float64 // bytes per ns
	latency   float64 // ns

	busy    bool
	pending []*Chunk
}

// NewLink creates a link from src to dst. The bandwidth is in bytes per ns and
// the latency in ns.
func NewLink(
	q *eventqueue.EventQueue,
	src, dst *Device,
	bandwidth float64,
	latency float64,
) *Link {
	if !(bandwidth > 0) {
		panic(fmt.Sprintf("link bandwidth must be positive, got %v", bandwidth))
	}

	if !(latency >= 0) {
		panic(fmt.Sprintf("link latency must not be negative, got %v", latency))
	}

	return &Link{
		q:         q,
		src:       src,
		dst:       dst,
		bandwidth: bandwidth,
		latency:   latency,
	}
}

// Src returns the device that sends over the link.
func (l *Link) Src() *Device {
	return l.src
}

// Dst returns the device that receives from the link.
func (l *Link) Dst() *Device {
	return l.dst
}

// Busy returns true while a chunk is being serialized onto the link.
func (l *Link) Busy() bool {
	return l.busy
}

// PendingLen returns the number of chunks waiting for the link.
func (l *Link) PendingLen() int {
	return len(l.pending)
}

// SerializationDelay returns how long the link is occupied by a chunk.
func (l *Link) SerializationDelay(size uint64) eventqueue.EventTime {
	return eventqueue.EventTime(float64(size) / l.bandwidth)
}

// CommunicationDelay returns how long it takes until a chunk is fully received
// by the next device.
func (l *Link) CommunicationDelay(size uint64) eventqueue.EventTime {
	return eventqueue.EventTime(l.latency + float64(size)/l.bandwidth)
}

// Send transmits the chunk right away if the link is free, or queues it.
func (l *Link) Send(chunk *Chunk) {
	if chunk.CurrentDevice() != l.src {
		panic(fmt.Sprintf(
			"chunk at device %d cannot use the link from device %d",
			chunk.CurrentDevice().ID(), l.src.ID()))
	}

	if chunk.NextDevice() != l.dst {
		panic(fmt.Sprintf(
			"chunk heading to device %d cannot use the link to device %d",
			chunk.NextDevice().ID(), l.dst.ID()))
	}

	if l.busy {
		l.pending = append(l.pending, chunk)
		return
	}

	l.startTransmission(chunk)
}

func (l *Link) startTransmission(chunk *Chunk) {
	l.busy = true

	now := l.q.CurrentTime()
	serialization := l.SerializationDelay(chunk.Size())
	communication := l.CommunicationDelay(chunk.Size())

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithFields(logrus.Fields{
			"time":    now,
			"src":     l.src.ID(),
			"dst":     l.dst.ID(),
			"bytes":   chunk.Size(),
			"arrival": now + communication,
		}).Trace("chunk transmission started")
	}

	l.q.Schedule(now+communication, func() {
		l.chunkArrived(chunk)
	})
	l.q.Schedule(now+serialization, l.becomeFree)
}

func (l *Link) becomeFree() {
	l.busy = false

	if len(l.pending) == 0 {
		return
	}

	chunk := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]

	l.startTransmission(chunk)
}

func (l *Link) chunkArrived(chunk *Chunk) {
	chunk.markArrivedNextDevice()

	if chunk.CurrentDevice() != l.dst {
		panic(fmt.Sprintf("chunk arrived at device %d through a link to %d",
			chunk.CurrentDevice().ID(), l.dst.ID()))
	}

	if chunk.Arrived() {
		chunk.invokeCallback()
		return
	}

	l.dst.Send(chunk)
}
