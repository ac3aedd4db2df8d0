package commsim

import (
	"fmt"
	"math"

	"github.com/iti/rngstream"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

// TrafficPattern configures a synthetic trace.
type TrafficPattern struct {
	NumTransfers int
	NumEndpoints int

	// Transfer sizes are drawn uniformly from [MinBytes, MaxBytes].
	MinBytes, MaxBytes uint64

	// Issue times form a Poisson process with this mean gap, in ns. Zero
	// issues every transfer at time 0.
	MeanInterarrivalNs float64
}

// GenerateTrace creates a trace of transfers between uniformly selected
// endpoint pairs. The name identifies the random stream and prefixes the
// transfer ids.
func GenerateTrace(name string, p TrafficPattern) (Trace, error) {
	if p.NumEndpoints < 2 {
		return nil, fmt.Errorf("need at least 2 endpoints, got %d",
			p.NumEndpoints)
	}

	if p.NumTransfers < 0 {
		return nil, fmt.Errorf("negative number of transfers %d",
			p.NumTransfers)
	}

	if p.MinBytes > p.MaxBytes {
		return nil, fmt.Errorf("min bytes %d larger than max bytes %d",
			p.MinBytes, p.MaxBytes)
	}

	if p.MeanInterarrivalNs < 0 {
		return nil, fmt.Errorf("negative interarrival time %v",
			p.MeanInterarrivalNs)
	}

	rng := rngstream.New(name)
	trace := make(Trace, 0, p.NumTransfers)
	now := 0.0

	for i := 0; i < p.NumTransfers; i++ {
		if p.MeanInterarrivalNs > 0 {
			now += -p.MeanInterarrivalNs * math.Log(1-rng.RandU01())
		}

		src := pick(rng, p.NumEndpoints)
		dst := pick(rng, p.NumEndpoints-1)
		if dst >= src {
			dst++
		}

		size := p.MinBytes
		if p.MaxBytes > p.MinBytes {
			span := p.MaxBytes - p.MinBytes + 1
			size += uint64(math.Min(
				rng.RandU01()*float64(span), float64(span-1)))
		}

		trace = append(trace, &Transfer{
			ID:        fmt.Sprintf("%s-%d", name, i),
			Src:       topology.DeviceID(src),
			Dst:       topology.DeviceID(dst),
			Bytes:     size,
			IssueTime: eventqueue.EventTime(now),
		})
	}

	return trace, nil
}

// pick returns an integer in [0, n).
func pick(rng *rngstream.RngStream, n int) int {
	i := int(rng.RandU01() * float64(n))
	if i >= n {
		i = n - 1
	}

	return i
}
