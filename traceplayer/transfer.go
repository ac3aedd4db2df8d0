// Package traceplayer provides a trace player that replays a transfer trace
// through an akita network model.
package traceplayer

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
	"github.com/syifan/commsim"
	"github.com/syifan/commsim/topology"
	"gitlab.com/akita/akita/v3/sim"
)

// A playNextEvent triggers the player to issue the transfers that are due.
type playNextEvent struct {
	time    sim.VTimeInSec
	handler *TransferTracePlayer
}

// Time returns the time of the event.
func (e playNextEvent) Time() sim.VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e playNextEvent) Handler() sim.Handler {
	return e.handler
}

// IsSecondary always returns false.
func (e playNextEvent) IsSecondary() bool {
	return false
}

// A TransferTracePlayer owns one port per endpoint. It sends every transfer
// of the trace from the port of its source to the port of its destination at
// the issue time and records when it arrives.
type TransferTracePlayer struct {
	*sim.ComponentBase

	sim.TimeTeller
	sim.EventScheduler

	ports   []sim.Port
	portIDs map[string]topology.DeviceID

	trace     commsim.Trace
	nextIndex int

	blocked  map[string][]*commsim.TransferMsg
	inflight map[string]*commsim.TransferMsg
	results  []commsim.Result
}

// NewTransferTracePlayer creates a new TransferTracePlayer.
func NewTransferTracePlayer(
	name string,
	tt sim.TimeTeller,
	es sim.EventScheduler,
) *TransferTracePlayer {
	p := &TransferTracePlayer{
		TimeTeller:     tt,
		EventScheduler: es,
		portIDs:        make(map[string]topology.DeviceID),
		blocked:        make(map[string][]*commsim.TransferMsg),
		inflight:       make(map[string]*commsim.TransferMsg),
	}

	p.ComponentBase = sim.NewComponentBase(name)

	return p
}

// AddEndpoint adds the port of the next endpoint and returns its device id.
func (p *TransferTracePlayer) AddEndpoint(port sim.Port) topology.DeviceID {
	id := topology.DeviceID(len(p.ports))

	p.ports = append(p.ports, port)
	p.portIDs[port.Name()] = id
	p.AddPort(port.Name(), port)

	return id
}

// SetTrace sets the trace to replay.
func (p *TransferTracePlayer) SetTrace(trace commsim.Trace) error {
	err := trace.Validate(len(p.ports))
	if err != nil {
		return err
	}

	sorted := make(commsim.Trace, len(trace))
	copy(sorted, trace)
	sorted.Sort()

	p.trace = sorted
	p.nextIndex = 0

	return nil
}

// KickStart schedules the first transfer. The main program should still call
// engine.Run() to run the simulation.
func (p *TransferTracePlayer) KickStart() {
	if len(p.trace) == 0 {
		panic("Trace is not set")
	}

	p.scheduleNext()
}

func (p *TransferTracePlayer) scheduleNext() {
	if p.nextIndex >= len(p.trace) {
		return
	}

	issue := commsim.ToSec(p.trace[p.nextIndex].IssueTime)
	if issue < p.CurrentTime() {
		issue = p.CurrentTime()
	}

	p.Schedule(playNextEvent{
		time:    issue,
		handler: p,
	})
}

// Handle function of a TransferTracePlayer handles events.
func (p *TransferTracePlayer) Handle(e sim.Event) error {
	switch e := e.(type) {
	case playNextEvent:
		p.playNext()
	default:
		panic("TransferTracePlayer cannot handle this event type " +
			reflect.TypeOf(e).String())
	}

	return nil
}

func (p *TransferTracePlayer) playNext() {
	now := commsim.ToNs(p.CurrentTime())

	for p.nextIndex < len(p.trace) && p.trace[p.nextIndex].IssueTime <= now {
		p.issue(p.trace[p.nextIndex])
		p.nextIndex++
	}

	p.scheduleNext()
}

func (p *TransferTracePlayer) issue(t *commsim.Transfer) {
	src := p.ports[t.Src]
	msg := &commsim.TransferMsg{
		Transfer: t,
		MsgMeta: sim.MsgMeta{
			ID:           sim.GetIDGenerator().Generate(),
			Src:          src,
			Dst:          p.ports[t.Dst],
			SendTime:     p.CurrentTime(),
			TrafficBytes: int(t.Bytes),
		},
	}

	if len(p.blocked[src.Name()]) > 0 {
		p.blocked[src.Name()] = append(p.blocked[src.Name()], msg)
		return
	}

	p.send(msg)
}

func (p *TransferTracePlayer) send(msg *commsim.TransferMsg) bool {
	src := msg.Src
	p.inflight[msg.ID] = msg

	err := src.Send(msg)
	if err != nil {
		delete(p.inflight, msg.ID)
		p.blocked[src.Name()] = append(p.blocked[src.Name()], msg)
		return false
	}

	return true
}

// NotifyPortFree function of a TransferTracePlayer retries the transfers that
// the port could not send.
func (p *TransferTracePlayer) NotifyPortFree(
	now sim.VTimeInSec,
	port sim.Port,
) {
	blocked := p.blocked[port.Name()]
	delete(p.blocked, port.Name())

	for i, msg := range blocked {
		msg.SendTime = now
		if !p.send(msg) {
			// send has queued msg again; keep the rest behind it.
			p.blocked[port.Name()] = append(p.blocked[port.Name()],
				blocked[i+1:]...)
			return
		}
	}
}

// NotifyRecv function notifies that the component has received a message.
func (p *TransferTracePlayer) NotifyRecv(
	now sim.VTimeInSec,
	port sim.Port,
) {
	msg := port.Retrieve(now)

	switch msg := msg.(type) {
	case *commsim.TransferMsg:
		p.recvTransfer(msg)
	default:
		panic(fmt.Sprintf("Cannot handle message %T", msg))
	}
}

func (p *TransferTracePlayer) recvTransfer(msg *commsim.TransferMsg) {
	if _, ok := p.inflight[msg.ID]; !ok {
		panic("Cannot find the message in inflight")
	}
	delete(p.inflight, msg.ID)

	arrival := commsim.ToNs(msg.RecvTime)
	p.results = append(p.results, commsim.Result{
		Transfer: msg.Transfer,
		Arrival:  arrival,
	})

	logrus.WithFields(logrus.Fields{
		"transfer": msg.Transfer.ID,
		"arrival":  arrival,
	}).Trace("transfer received")
}

// Results returns the transfers received so far, in arrival order.
func (p *TransferTracePlayer) Results() []commsim.Result {
	return p.results
}

// Finished returns true if every transfer of the trace has been received.
func (p *TransferTracePlayer) Finished() bool {
	return p.nextIndex == len(p.trace) &&
		len(p.inflight) == 0 &&
		len(p.blocked) == 0
}
