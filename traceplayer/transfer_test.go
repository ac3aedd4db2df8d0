package traceplayer

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/syifan/commsim"
	"github.com/syifan/commsim/congestionaware"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/networkmodel"
	"github.com/syifan/commsim/timemodel"
	"gitlab.com/akita/akita/v3/sim"
)

const mib = 1 << 20

type connection interface {
	PlugIn(port sim.Port, bufSize int)
}

func buildPlayer(
	engine *sim.SerialEngine,
	numEndpoints int,
	network connection,
) *TransferTracePlayer {
	player := NewTransferTracePlayer("Player", engine, engine)

	for i := 0; i < numEndpoints; i++ {
		port := sim.NewLimitNumMsgPort(player, 1, fmt.Sprintf("NPU%dPort", i))
		player.AddEndpoint(port)
		network.PlugIn(port, 1)
	}

	return player
}

var _ = Describe("TransferTracePlayer", func() {
	var engine *sim.SerialEngine

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	It("should panic if no trace is set", func() {
		player := NewTransferTracePlayer("Player", engine, engine)

		Expect(func() { player.KickStart() }).To(Panic())
	})

	It("should reject transfers between unknown endpoints", func() {
		player := NewTransferTracePlayer("Player", engine, engine)
		player.AddEndpoint(sim.NewLimitNumMsgPort(player, 1, "NPU0Port"))

		err := player.SetTrace(commsim.Trace{{ID: "a", Src: 0, Dst: 1}})

		Expect(err).To(HaveOccurred())
	})

	It("should replay through the congestion-aware network", func() {
		q := eventqueue.NewEventQueue()
		ring, err := congestionaware.NewRing(q, 5, 50, 500, true)
		Expect(err).ToNot(HaveOccurred())
		network := networkmodel.NewCongestionAwareNetworkModel(
			engine, engine, q, ring)
		player := buildPlayer(engine, 5, network)

		Expect(player.SetTrace(commsim.Trace{
			{ID: "late", Src: 1, Dst: 4, Bytes: mib, IssueTime: 1000},
			{ID: "first", Src: 1, Dst: 4, Bytes: mib, IssueTime: 0},
		})).To(Succeed())

		player.KickStart()
		Expect(engine.Run()).To(Succeed())

		Expect(player.Finished()).To(BeTrue())
		results := player.Results()
		Expect(results).To(HaveLen(2))
		Expect(results[0].Transfer.ID).To(Equal("first"))
		Expect(results[0].Arrival).To(Equal(eventqueue.EventTime(40062)))
		Expect(results[1].Transfer.ID).To(Equal("late"))
		Expect(results[1].Arrival).To(Equal(eventqueue.EventTime(40062 + 19531)))
	})

	It("should replay through the analytical network", func() {
		model, err := timemodel.NewSwitch(4, 50, 500)
		Expect(err).ToNot(HaveOccurred())
		network := networkmodel.NewAnalyticalNetworkModel(engine, engine,
			&timemodel.ClosedFormEstimator{Model: model})
		player := buildPlayer(engine, 4, network)

		Expect(player.SetTrace(commsim.Trace{
			{ID: "a", Src: 0, Dst: 3, Bytes: mib, IssueTime: 0},
			{ID: "b", Src: 0, Dst: 3, Bytes: mib, IssueTime: 0},
		})).To(Succeed())

		player.KickStart()
		Expect(engine.Run()).To(Succeed())

		Expect(player.Finished()).To(BeTrue())
		for _, r := range player.Results() {
			Expect(r.Latency()).To(Equal(eventqueue.EventTime(20531)))
		}

		summary := commsim.Summarize(player.Results())
		Expect(summary.Count).To(Equal(2))
		Expect(summary.Makespan).To(Equal(eventqueue.EventTime(20531)))
	})
})
