package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/syifan/commsim/congestionaware"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/timemodel"
	"github.com/syifan/commsim/topology"
)

var routeBytes uint64

var routeCmd = &cobra.Command{
	Use:   "route SRC DST",
	Short: "Print the route between two endpoints and its uncontended latency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}

		dst, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		cfg, err := loadNetwork()
		if err != nil {
			return err
		}

		q := eventqueue.NewEventQueue()
		t, err := congestionaware.Build(q, cfg)
		if err != nil {
			return err
		}

		model, err := timemodel.Build(cfg)
		if err != nil {
			return err
		}

		n := t.NumEndpoints()
		if src < 0 || src >= n || dst < 0 || dst >= n || src == dst {
			return fmt.Errorf("need two distinct endpoints in [0, %d)", n)
		}

		route := t.Route(topology.DeviceID(src), topology.DeviceID(dst)).IDs()

		var arrival eventqueue.EventTime
		congestionaware.SendTransfer(t,
			topology.DeviceID(src), topology.DeviceID(dst), routeBytes,
			func(*congestionaware.Chunk) { arrival = q.CurrentTime() })
		q.Run()

		closedForm := model.Send(
			topology.DeviceID(src), topology.DeviceID(dst), routeBytes)

		fmt.Printf("route: %v\nhops: %d\n", route, route.Hops())
		fmt.Printf("congestion-aware latency (ns): %d\n", arrival)
		fmt.Printf("closed-form latency (ns): %d\n", closedForm)

		return nil
	},
}

func init() {
	routeCmd.Flags().Uint64Var(&routeBytes, "bytes", 1<<20,
		"The size of the transfer.")
}
