package commsim

import (
	"fmt"
	"io"
	"sort"

	"github.com/syifan/commsim/eventqueue"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// A Summary describes the latencies of a set of transfers.
type Summary struct {
	Count      int
	TotalBytes uint64

	// Latency statistics, in ns.
	Mean, P50, P99, Max float64

	// Makespan is the time from the first issue to the last arrival.
	Makespan eventqueue.EventTime
}

// Summarize computes the statistics of the results.
func Summarize(results []Result) Summary {
	s := Summary{Count: len(results)}
	if len(results) == 0 {
		return s
	}

	latencies := make([]float64, len(results))
	first := results[0].Transfer.IssueTime
	last := results[0].Arrival

	for i, r := range results {
		latencies[i] = float64(r.Latency())
		s.TotalBytes += r.Transfer.Bytes

		if r.Transfer.IssueTime < first {
			first = r.Transfer.IssueTime
		}

		if r.Arrival > last {
			last = r.Arrival
		}
	}

	sort.Float64s(latencies)

	s.Mean = stat.Mean(latencies, nil)
	s.P50 = stat.Quantile(0.5, stat.Empirical, latencies, nil)
	s.P99 = stat.Quantile(0.99, stat.Empirical, latencies, nil)
	s.Max = floats.Max(latencies)
	s.Makespan = last - first

	return s
}

// ThroughputGBps returns the bytes delivered per second over the makespan,
// in GB/s.
func (s Summary) ThroughputGBps() float64 {
	if s.Makespan == 0 {
		return 0
	}

	return float64(s.TotalBytes) / float64(s.Makespan) * 1e9 / (1 << 30)
}

// Write prints the summary in a human-readable form.
func (s Summary) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"transfers: %d\nbytes: %d\nmean latency (ns): %.1f\n"+
			"p50 latency (ns): %.1f\np99 latency (ns): %.1f\n"+
			"max latency (ns): %.1f\nmakespan (ns): %d\n"+
			"throughput (GB/s): %.3f\n",
		s.Count, s.TotalBytes, s.Mean, s.P50, s.P99, s.Max,
		s.Makespan, s.ThroughputGBps())

	return err
}
