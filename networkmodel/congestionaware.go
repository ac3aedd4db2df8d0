package networkmodel

import (
	"github.com/sirupsen/logrus"
	"github.com/syifan/commsim"
	"github.com/syifan/commsim/congestionaware"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
	"gitlab.com/akita/akita/v3/sim"
)

// A queueWakeupEvent makes the akita engine advance the event queue.
type queueWakeupEvent struct {
	time    sim.VTimeInSec
	handler sim.Handler
}

func (e queueWakeupEvent) Time() sim.VTimeInSec {
	return e.time
}

func (e queueWakeupEvent) Handler() sim.Handler {
	return e.handler
}

func (e queueWakeupEvent) IsSecondary() bool {
	return false
}

// A CongestionAwareNetworkModel sends every message as a chunk through a
// congestion-aware topology. The topology runs on its own event queue, which
// the model advances in step with the akita engine. Whenever the queue holds
// events, a wakeup event is scheduled on the engine at the time of the
// earliest one.
type CongestionAwareNetworkModel struct {
	sim.HookableBase
	sim.EventScheduler
	sim.TimeTeller

	deliveryBuffer
	endpoints

	queue          *eventqueue.EventQueue
	topology       congestionaware.Topology
	pendingWakeups map[eventqueue.EventTime]bool
	numInflight    int
}

// NewCongestionAwareNetworkModel creates a new CongestionAwareNetworkModel.
// The topology must be built on the given event queue.
func NewCongestionAwareNetworkModel(
	es sim.EventScheduler,
	tt sim.TimeTeller,
	q *eventqueue.EventQueue,
	t congestionaware.Topology,
) *CongestionAwareNetworkModel {
	return &CongestionAwareNetworkModel{
		EventScheduler: es,
		TimeTeller:     tt,
		deliveryBuffer: newDeliveryBuffer(),
		endpoints:      newEndpoints(),
		queue:          q,
		topology:       t,
		pendingWakeups: make(map[eventqueue.EventTime]bool),
	}
}

// PlugIn plugs a port into the network as the next device.
func (m *CongestionAwareNetworkModel) PlugIn(port sim.Port, bufSize int) {
	m.PlugInDevice(port, m.nextID)
}

// PlugInDevice plugs a port into the network as the given endpoint.
func (m *CongestionAwareNetworkModel) PlugInDevice(
	port sim.Port,
	id topology.DeviceID,
) {
	if id < 0 || int(id) >= m.topology.NumEndpoints() {
		panic("device is not an endpoint of the topology")
	}

	m.plugIn(port, id)
	port.SetConnection(m)
}

// Unplug removes a port from the network.
func (m *CongestionAwareNetworkModel) Unplug(port sim.Port) {
	m.unplug(port)
}

// NotifyAvailable delivers the messages that were waiting for the port.
func (m *CongestionAwareNetworkModel) NotifyAvailable(
	now sim.VTimeInSec,
	port sim.Port,
) {
	m.notifyAvailable(now, port)
}

// CanSend checks if the network can send a message.
func (m *CongestionAwareNetworkModel) CanSend(src sim.Port) bool {
	return true
}

// NumInflight returns the number of messages still traveling in the
// topology.
func (m *CongestionAwareNetworkModel) NumInflight() int {
	return m.numInflight
}

// Send injects the message into the topology at the current time.
func (m *CongestionAwareNetworkModel) Send(msg sim.Msg) *sim.SendError {
	now := commsim.ToNs(m.CurrentTime())
	src := m.deviceOf(msg.Meta().Src)
	dst := m.deviceOf(msg.Meta().Dst)
	size := uint64(msg.Meta().TrafficBytes)

	m.advance(now)

	m.numInflight++
	m.queue.Schedule(now, func() {
		congestionaware.SendTransfer(m.topology, src, dst, size,
			func(*congestionaware.Chunk) { m.chunkArrived(msg) })
	})

	m.advance(now)
	m.scheduleWakeup()

	return nil
}

// Handle advances the event queue to the current time.
func (m *CongestionAwareNetworkModel) Handle(e sim.Event) error {
	switch e := e.(type) {
	case queueWakeupEvent:
		now := commsim.ToNs(e.time)
		delete(m.pendingWakeups, now)
		m.advance(now)
		m.scheduleWakeup()
		return nil
	default:
		panic("unknown event type")
	}
}

// advance runs all the queued events up to the given time.
func (m *CongestionAwareNetworkModel) advance(now eventqueue.EventTime) {
	for {
		next, ok := m.queue.NextTime()
		if !ok || next > now {
			return
		}

		m.queue.Proceed()
	}
}

func (m *CongestionAwareNetworkModel) scheduleWakeup() {
	next, ok := m.queue.NextTime()
	if !ok || m.pendingWakeups[next] {
		return
	}

	m.pendingWakeups[next] = true
	m.Schedule(queueWakeupEvent{
		time:    commsim.ToSec(next),
		handler: m,
	})
}

func (m *CongestionAwareNetworkModel) chunkArrived(msg sim.Msg) {
	m.numInflight--

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithFields(logrus.Fields{
			"time": m.queue.CurrentTime(),
			"msg":  msg.Meta().ID,
		}).Trace("message arrived")
	}

	m.deliver(commsim.ToSec(m.queue.CurrentTime()), msg)
}
