package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/syifan/commsim/congestionaware"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/networkmodel"
	"github.com/syifan/commsim/timemodel"
	"github.com/syifan/commsim/traceplayer"
	"gitlab.com/akita/akita/v3/monitoring"
	"gitlab.com/akita/akita/v3/sim"
)

var (
	akitaFlags traceFlags
	monitor    bool
)

type connection interface {
	PlugIn(port sim.Port, bufSize int)
}

var akitaCmd = &cobra.Command{
	Use:   "akita",
	Short: "Replay a trace with the akita engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := akitaFlags.checkMode()
		if err != nil {
			return err
		}

		cfg, err := loadNetwork()
		if err != nil {
			return err
		}

		engine := sim.NewSerialEngine()

		var (
			network      connection
			numEndpoints int
		)

		if akitaFlags.mode == "aware" {
			q := eventqueue.NewEventQueue()
			t, err := congestionaware.Build(q, cfg)
			if err != nil {
				return err
			}

			network = networkmodel.NewCongestionAwareNetworkModel(
				engine, engine, q, t)
			numEndpoints = t.NumEndpoints()
		} else {
			model, err := timemodel.Build(cfg)
			if err != nil {
				return err
			}

			network = networkmodel.NewAnalyticalNetworkModel(engine, engine,
				&timemodel.ClosedFormEstimator{Model: model})
			numEndpoints = model.NumEndpoints()
		}

		player := traceplayer.NewTransferTracePlayer("Player", engine, engine)
		for i := 0; i < numEndpoints; i++ {
			port := sim.NewLimitNumMsgPort(player, 1, fmt.Sprintf("NPU%dPort", i))
			player.AddEndpoint(port)
			network.PlugIn(port, 1)
		}

		trace, err := akitaFlags.load(numEndpoints)
		if err != nil {
			return err
		}

		err = player.SetTrace(trace)
		if err != nil {
			return err
		}

		if monitor {
			m := monitoring.NewMonitor()
			m.RegisterEngine(engine)
			m.RegisterComponent(player)
			m.StartServer()
		}

		player.KickStart()
		err = engine.Run()
		if err != nil {
			return err
		}

		if !player.Finished() {
			return errors.New("simulation ended with transfers in flight")
		}

		logrus.WithField("end", engine.CurrentTime()).Info("simulation done")

		return report(&akitaFlags, player.Results())
	},
}

func init() {
	akitaFlags.register(akitaCmd)
	akitaCmd.Flags().BoolVar(&monitor, "monitor", false,
		"Start the akita monitoring server.")
}
