package commsim

import (
	"math"

	"github.com/syifan/commsim/eventqueue"
	"gitlab.com/akita/akita/v3/sim"
)

// A TransferMsg carries a transfer through an akita network model.
type TransferMsg struct {
	sim.MsgMeta
	Transfer *Transfer
}

// Meta returns the meta data of the message.
func (m *TransferMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// ToNs converts akita time into ns.
func ToNs(t sim.VTimeInSec) eventqueue.EventTime {
	return eventqueue.EventTime(math.Round(float64(t) * 1e9))
}

// ToSec converts ns into akita time.
func ToSec(t eventqueue.EventTime) sim.VTimeInSec {
	return sim.VTimeInSec(float64(t) / 1e9)
}
