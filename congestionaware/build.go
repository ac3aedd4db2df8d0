package congestionaware

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syifan/commsim/eventqueue"
	"github.com/syifan/commsim/topology"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Build creates the topology described by a network config. A single
// dimension gives a plain Ring, FullyConnected, or Switch; more dimensions give
// a MultiDim. The built graph must be strongly connected; a failure here is a
// builder bug and is reported as a config error.
func Build(q *eventqueue.EventQueue, cfg topology.Config) (Topology, error) {
	dims, err := cfg.Dimensions()
	if err != nil {
		return nil, err
	}

	var t Topology
	if len(dims) == 1 {
		t, err = buildSingle(q, dims[0])
	} else {
		t, err = NewMultiDim(q, dims)
	}

	if err != nil {
		return nil, err
	}

	err = CheckStronglyConnected(t)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dimensions": len(dims),
		"endpoints":  t.NumEndpoints(),
		"devices":    t.NumDevices(),
	}).Debug("congestion-aware topology built")

	return t, nil
}

func buildSingle(q *eventqueue.EventQueue, d topology.Dimension) (Topology, error) {
	t, err := newBasicTopology(q, d, nil)
	if err != nil {
		return nil, err
	}

	switch d.Kind {
	case topology.Ring:
		return &Ring{t}, nil
	case topology.FullyConnected:
		return &FullyConnected{t}, nil
	default:
		return &Switch{t}, nil
	}
}

// ConnectivityGraph converts the devices and links into a directed graph, with
// one node per device id and one edge per link.
func ConnectivityGraph(t Topology) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()

	for id := 0; id < t.NumDevices(); id++ {
		g.AddNode(simple.Node(id))
	}

	for id := 0; id < t.NumDevices(); id++ {
		dev := t.Device(topology.DeviceID(id))
		for _, n := range dev.Neighbors() {
			g.SetEdge(g.NewEdge(simple.Node(id), simple.Node(n)))
		}
	}

	return g
}

// CheckStronglyConnected returns an error if some device cannot reach some
// other device. Topologies assembled outside Build, from hand-connected
// devices, should be checked with it before any chunk is sent.
func CheckStronglyConnected(t Topology) error {
	components := topo.TarjanSCC(ConnectivityGraph(t))
	if len(components) != 1 {
		return fmt.Errorf("%w: topology splits into %d disconnected parts",
			topology.ErrInvalidConfig, len(components))
	}

	return nil
}
