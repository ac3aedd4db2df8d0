package networkmodel

import (
	"github.com/syifan/commsim/timemodel"
	"github.com/syifan/commsim/topology"
	"gitlab.com/akita/akita/v3/sim"
)

// An AnalyticalNetworkModel delivers every message after the time estimated
// by a closed-form model. Transfers never contend with each other.
type AnalyticalNetworkModel struct {
	sim.HookableBase
	sim.EventScheduler
	sim.TimeTeller

	deliveryBuffer
	endpoints

	estimator timemodel.TimeEstimator
}

// NewAnalyticalNetworkModel creates a new AnalyticalNetworkModel.
func NewAnalyticalNetworkModel(
	es sim.EventScheduler,
	tt sim.TimeTeller,
	estimator timemodel.TimeEstimator,
) *AnalyticalNetworkModel {
	return &AnalyticalNetworkModel{
		EventScheduler: es,
		TimeTeller:     tt,
		deliveryBuffer: newDeliveryBuffer(),
		endpoints:      newEndpoints(),
		estimator:      estimator,
	}
}

// PlugIn plugs a port into the network as the next device.
func (m *AnalyticalNetworkModel) PlugIn(port sim.Port, bufSize int) {
	m.PlugInDevice(port, m.nextID)
}

// PlugInDevice plugs a port into the network as the given device.
func (m *AnalyticalNetworkModel) PlugInDevice(
	port sim.Port,
	id topology.DeviceID,
) {
	m.plugIn(port, id)
	port.SetConnection(m)
}

// Unplug removes a port from the network.
func (m *AnalyticalNetworkModel) Unplug(port sim.Port) {
	m.unplug(port)
}

// NotifyAvailable delivers the messages that were waiting for the port.
func (m *AnalyticalNetworkModel) NotifyAvailable(
	now sim.VTimeInSec,
	port sim.Port,
) {
	m.notifyAvailable(now, port)
}

// CanSend checks if the network can send a message.
func (m *AnalyticalNetworkModel) CanSend(src sim.Port) bool {
	return true
}

// Send schedules the delivery of the message.
func (m *AnalyticalNetworkModel) Send(msg sim.Msg) *sim.SendError {
	now := m.CurrentTime()

	out, err := m.estimator.Estimate(timemodel.TimeEstimatorInput{
		Src:   m.deviceOf(msg.Meta().Src),
		Dst:   m.deviceOf(msg.Meta().Dst),
		Bytes: uint64(msg.Meta().TrafficBytes),
	})
	if err != nil {
		panic(err)
	}

	m.Schedule(transferUpdateEvent{
		time:    now + sim.VTimeInSec(out.TimeInSec),
		handler: m,
		msg:     msg,
	})

	return nil
}

// Handle delivers the messages whose transfers are completed.
func (m *AnalyticalNetworkModel) Handle(e sim.Event) error {
	switch e := e.(type) {
	case transferUpdateEvent:
		m.deliver(m.CurrentTime(), e.msg)
		return nil
	default:
		panic("unknown event type")
	}
}
