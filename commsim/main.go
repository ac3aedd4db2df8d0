// Command commsim estimates the communication latency of transfer traces on
// interconnect topologies.
package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/syifan/commsim/topology"
	"github.com/tebeka/atexit"
)

var (
	networkFile string // YAML network description
	logLevel    string // log verbosity
)

var rootCmd = &cobra.Command{
	Use:           "commsim",
	Short:         "Communication latency simulator for multi-dimensional interconnects",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		return nil
	},
}

func loadNetwork() (topology.Config, error) {
	cfg, err := topology.LoadConfig(networkFile)
	if err != nil {
		return cfg, err
	}

	logrus.WithFields(logrus.Fields{
		"file":       networkFile,
		"topology":   cfg.Topology,
		"npus_count": cfg.NPUsCount,
	}).Info("network loaded")

	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&networkFile, "network", "network.yml",
		"The YAML file that describes the network.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn",
		"Log level (trace, debug, info, warn, error).")

	rootCmd.AddCommand(runCmd, akitaCmd, routeCmd)
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logrus.Error(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
