package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/syifan/commsim"
	"github.com/syifan/commsim/congestionaware"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/sendrecv"
	"github.com/syifan/commsim/timemodel"
)

var runFlags traceFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a trace on the event queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runFlags.checkMode()
		if err != nil {
			return err
		}

		cfg, err := loadNetwork()
		if err != nil {
			return err
		}

		q := eventqueue.NewEventQueue()

		var network sendrecv.Network

		if runFlags.mode == "aware" {
			t, err := congestionaware.Build(q, cfg)
			if err != nil {
				return err
			}

			network = sendrecv.NewCongestionAwareNetwork(t)
		} else {
			model, err := timemodel.Build(cfg)
			if err != nil {
				return err
			}

			network = sendrecv.NewAnalyticalNetwork(q, model)
		}

		trace, err := runFlags.load(network.NumEndpoints())
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"transfers": len(trace),
			"mode":      runFlags.mode,
		}).Info("replaying trace")

		results, err := commsim.Replay(q, network, trace)
		if err != nil {
			return err
		}

		return report(&runFlags, results)
	},
}

func init() {
	runFlags.register(runCmd)
}
