// Package commsim replays communication traces on interconnect models and
// reports when every transfer arrives.
package commsim

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
)

// A Transfer is a message that one endpoint sends to another.
type Transfer struct {
	ID    string
	Src   topology.DeviceID
	Dst   topology.DeviceID
	Bytes uint64

	// IssueTime is when the sender starts the transfer, in ns.
	IssueTime eventqueue.EventTime

	// Transfers with the same tag, endpoints, and size are matched in the
	// order they are issued.
	Tag int
}

// Trace is a list of transfers, ordered by issue time.
type Trace []*Transfer

// Sort orders the transfers by issue time, keeping the file order for
// transfers issued at the same time.
func (t Trace) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].IssueTime < t[j].IssueTime
	})
}

// Validate checks that every transfer goes between two distinct endpoints.
func (t Trace) Validate(numEndpoints int) error {
	for _, tr := range t {
		if tr.Src < 0 || int(tr.Src) >= numEndpoints ||
			tr.Dst < 0 || int(tr.Dst) >= numEndpoints {
			return fmt.Errorf("transfer %s: endpoint out of range [0, %d)",
				tr.ID, numEndpoints)
		}

		if tr.Src == tr.Dst {
			return fmt.Errorf("transfer %s: source equals destination", tr.ID)
		}
	}

	return nil
}

// A TraceLoader loads a trace from a CSV file with the header
// id,src,dst,bytes,issue_ns,tag. The tag column is optional.
type TraceLoader struct {
	// The path of the trace file.
	Path string
}

// Load loads the trace, sorted by issue time.
func (l *TraceLoader) Load() (Trace, error) {
	absPath, err := filepath.Abs(l.Path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil {
			panic(closeErr)
		}
	}()

	return ReadTrace(f)
}

// ReadTrace parses a trace in CSV format.
func ReadTrace(r io.Reader) (Trace, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := make(Trace, 0, len(records))

	for i, record := range records {
		if i == 0 {
			continue
		}

		transfer, err := parseTransfer(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		trace = append(trace, transfer)
	}

	trace.Sort()

	return trace, nil
}

func parseTransfer(record []string) (*Transfer, error) {
	if len(record) < 5 {
		return nil, fmt.Errorf("expected at least 5 fields, got %d",
			len(record))
	}

	t := &Transfer{ID: record[0]}

	src, err := strconv.Atoi(record[1])
	if err != nil {
		return nil, err
	}
	t.Src = topology.DeviceID(src)

	dst, err := strconv.Atoi(record[2])
	if err != nil {
		return nil, err
	}
	t.Dst = topology.DeviceID(dst)

	t.Bytes, err = strconv.ParseUint(record[3], 10, 64)
	if err != nil {
		return nil, err
	}

	issue, err := strconv.ParseUint(record[4], 10, 64)
	if err != nil {
		return nil, err
	}
	t.IssueTime = eventqueue.EventTime(issue)

	if len(record) > 5 && record[5] != "" {
		t.Tag, err = strconv.Atoi(record[5])
		if err != nil {
			return nil, err
		}
	}

	return t, nil
}

// WriteTrace writes a trace in the format ReadTrace accepts.
func WriteTrace(w io.Writer, trace Trace) error {
	writer := csv.NewWriter(w)

	err := writer.Write([]string{"id", "src", "dst", "bytes", "issue_ns", "tag"})
	if err != nil {
		return err
	}

	for _, t := range trace {
		err = writer.Write([]string{
			t.ID,
			strconv.Itoa(int(t.Src)),
			strconv.Itoa(int(t.Dst)),
			strconv.FormatUint(t.Bytes, 10),
			strconv.FormatUint(uint64(t.IssueTime), 10),
			strconv.Itoa(t.Tag),
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
