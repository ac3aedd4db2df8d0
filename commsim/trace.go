package main

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/syifan/commsim"
)

// traceFlags selects the trace to replay.
type traceFlags struct {
	path         string
	random       int
	minBytes     uint64
	maxBytes     uint64
	interarrival float64
	mode         string
	resultsPath  string
}

func (f *traceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "trace", "",
		"The CSV trace file (id,src,dst,bytes,issue_ns,tag).")
	cmd.Flags().IntVar(&f.random, "random", 0,
		"Generate this many uniform random transfers instead of loading a trace.")
	cmd.Flags().Uint64Var(&f.minBytes, "min-bytes", 1<<20,
		"The minimum size of a random transfer.")
	cmd.Flags().Uint64Var(&f.maxBytes, "max-bytes", 1<<20,
		"The maximum size of a random transfer.")
	cmd.Flags().Float64Var(&f.interarrival, "interarrival", 0,
		"The mean gap between random transfers in ns.")
	cmd.Flags().StringVar(&f.mode, "mode", "aware",
		"aware: model link congestion; unaware: closed-form latency.")
	cmd.Flags().StringVar(&f.resultsPath, "results", "",
		"Write the arrival time of every transfer to this CSV file.")
}

func (f *traceFlags) load(numEndpoints int) (commsim.Trace, error) {
	var (
		trace commsim.Trace
		err   error
	)

	switch {
	case f.path != "" && f.random > 0:
		return nil, errors.New("--trace and --random are exclusive")
	case f.path != "":
		loader := &commsim.TraceLoader{Path: f.path}
		trace, err = loader.Load()
	case f.random > 0:
		trace, err = commsim.GenerateTrace("random", commsim.TrafficPattern{
			NumTransfers:       f.random,
			NumEndpoints:       numEndpoints,
			MinBytes:           f.minBytes,
			MaxBytes:           f.maxBytes,
			MeanInterarrivalNs: f.interarrival,
		})
	default:
		return nil, errors.New("either --trace or --random is required")
	}

	if err != nil {
		return nil, err
	}

	err = trace.Validate(numEndpoints)
	if err != nil {
		return nil, err
	}

	return trace, nil
}

func (f *traceFlags) checkMode() error {
	if f.mode != "aware" && f.mode != "unaware" {
		return errors.New("--mode must be aware or unaware")
	}

	return nil
}

func writeResults(path string, results []commsim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			panic(closeErr)
		}
	}()

	w := csv.NewWriter(file)
	err = w.Write([]string{
		"id", "src", "dst", "bytes", "issue_ns", "arrival_ns", "latency_ns"})
	if err != nil {
		return err
	}

	for _, r := range results {
		err = w.Write([]string{
			r.Transfer.ID,
			strconv.Itoa(int(r.Transfer.Src)),
			strconv.Itoa(int(r.Transfer.Dst)),
			strconv.FormatUint(r.Transfer.Bytes, 10),
			strconv.FormatUint(uint64(r.Transfer.IssueTime), 10),
			strconv.FormatUint(uint64(r.Arrival), 10),
			strconv.FormatUint(uint64(r.Latency()), 10),
		})
		if err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

func report(f *traceFlags, results []commsim.Result) error {
	err := commsim.Summarize(results).Write(os.Stdout)
	if err != nil {
		return err
	}

	if f.resultsPath == "" {
		return nil
	}

	return writeResults(f.resultsPath, results)
}
