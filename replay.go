package commsim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/sendrecv"
)

// A Result records when a transfer arrived.
type Result struct {
	Transfer *Transfer
	Arrival  eventqueue.EventTime
}

// Latency returns the time from issuing the transfer to its arrival.
func (r Result) Latency() eventqueue.EventTime {
	return r.Arrival - r.Transfer.IssueTime
}

// Replay issues every transfer of the trace at its issue time and runs the
// event queue until all of them have been received. At the issue time, the
// sender starts a send and the receiver posts a matching receive. A trace that
// names unknown endpoints, sends to the sender itself, or issues a transfer
// before the current time is rejected before anything is scheduled.
func Replay(
	q *eventqueue.EventQueue,
	network sendrecv.Network,
	trace Trace,
) ([]Result, error) {
	err := trace.Validate(network.NumEndpoints())
	if err != nil {
		return nil, err
	}

	for _, t := range trace {
		if t.IssueTime < q.CurrentTime() {
			return nil, fmt.Errorf("transfer %s issued at %d, before %d",
				t.ID, t.IssueTime, q.CurrentTime())
		}
	}

	matcher := sendrecv.NewMatcher(q, network)
	results := make([]Result, 0, len(trace))

	for _, t := range trace {
		t := t

		key := sendrecv.Key{Tag: t.Tag, Src: t.Src, Dst: t.Dst, Size: t.Bytes}
		q.Schedule(t.IssueTime, func() {
			matcher.Recv(key, func() {
				results = append(results, Result{
					Transfer: t,
					Arrival:  q.CurrentTime(),
				})
			})
			matcher.Send(key, nil)
		})
	}

	q.Run()

	sends, recvs := matcher.Outstanding()
	if sends != 0 || recvs != 0 {
		return results, fmt.Errorf("%d sends and %d receives left unmatched",
			sends, recvs)
	}

	logrus.WithFields(logrus.Fields{
		"transfers": len(results),
		"end":       q.CurrentTime(),
	}).Debug("trace replayed")

	return results, nil
}
