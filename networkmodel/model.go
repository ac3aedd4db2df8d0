// Package networkmodel connects akita ports through the interconnect models.
// Every port plugged into a network model stands for one endpoint of the
// topology.
package networkmodel

import (
	"fmt"

	"github.com/syifan/commsim/topology"
	"gitlab.com/akita/akita/v3/sim"
)

// A transferUpdateEvent is scheduled when a transfer is completed.
type transferUpdateEvent struct {
	time    sim.VTimeInSec
	handler sim.Handler
	msg     sim.Msg
}

func (e transferUpdateEvent) Time() sim.VTimeInSec {
	return e.time
}

func (e transferUpdateEvent) Handler() sim.Handler {
	return e.handler
}

func (e transferUpdateEvent) IsSecondary() bool {
	return false
}

// endpoints maps the plugged-in ports to device ids.
type endpoints struct {
	ports  map[string]sim.Port
	ids    map[string]topology.DeviceID
	nextID topology.DeviceID
}

func newEndpoints() endpoints {
	return endpoints{
		ports: make(map[string]sim.Port),
		ids:   make(map[string]topology.DeviceID),
	}
}

func (e *endpoints) plugIn(port sim.Port, id topology.DeviceID) {
	if _, ok := e.ports[port.Name()]; ok {
		panic(fmt.Sprintf("port %s is already plugged in", port.Name()))
	}

	e.ports[port.Name()] = port
	e.ids[port.Name()] = id

	if id >= e.nextID {
		e.nextID = id + 1
	}
}

func (e *endpoints) unplug(port sim.Port) {
	delete(e.ports, port.Name())
	delete(e.ids, port.Name())
}

func (e *endpoints) deviceOf(port sim.Port) topology.DeviceID {
	id, ok := e.ids[port.Name()]
	if !ok {
		panic(fmt.Sprintf("port %s is not plugged in", port.Name()))
	}

	return id
}

// deliveryBuffer delivers messages to the destination ports and holds the ones
// that cannot be received yet.
type deliveryBuffer struct {
	busyNodes       map[string]bool
	pendingDelivery map[string][]sim.Msg
}

func newDeliveryBuffer() deliveryBuffer {
	return deliveryBuffer{
		busyNodes:       make(map[string]bool),
		pendingDelivery: make(map[string][]sim.Msg),
	}
}

func (b *deliveryBuffer) deliver(now sim.VTimeInSec, msg sim.Msg) {
	dst := msg.Meta().Dst.Name()

	if _, busy := b.busyNodes[dst]; busy {
		b.pendingDelivery[dst] = append(b.pendingDelivery[dst], msg)
		return
	}

	msg.Meta().RecvTime = now
	err := msg.Meta().Dst.Recv(msg)
	if err != nil {
		b.busyNodes[dst] = true
		b.pendingDelivery[dst] = append(b.pendingDelivery[dst], msg)
	}
}

func (b *deliveryBuffer) notifyAvailable(now sim.VTimeInSec, port sim.Port) {
	pendingDelivery := b.pendingDelivery[port.Name()]

	for len(pendingDelivery) > 0 {
		msg := pendingDelivery[0]
		msg.Meta().RecvTime = now
		err := port.Recv(msg)
		if err != nil {
			break
		}

		pendingDelivery = pendingDelivery[1:]
	}

	if len(pendingDelivery) == 0 {
		delete(b.pendingDelivery, port.Name())
		delete(b.busyNodes, port.Name())
		return
	}

	b.pendingDelivery[port.Name()] = pendingDelivery
}
