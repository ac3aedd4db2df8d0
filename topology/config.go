package topology

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid network config")

// Config is the network description as written in a network file. Every
// per-dimension array must have one entry per dimension.
//
//	topology: [Ring, Switch]
//	npus_count: [4, 2]
//	bandwidth: [50.0, 25.0] # GB/s
//	latency: [500.0, 700.0] # ns
type Config struct {
	Topology      []string  `yaml:"topology"`
	NPUsCount     []int     `yaml:"npus_count"`
	Bandwidth     []float64 `yaml:"bandwidth"`
	Latency       []float64 `yaml:"latency"`
	Bidirectional []bool    `yaml:"bidirectional,omitempty"`
}

// LoadConfig reads a network file.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	return ParseConfig(data)
}

// ParseConfig decodes a network description.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// NumDims returns the number of dimensions declared by the topology list.
func (c Config) NumDims() int {
	return len(c.Topology)
}

// Dimensions validates the config and converts it into one Dimension per
// routing dimension.
func (c Config) Dimensions() ([]Dimension, error) {
	n := c.NumDims()
	if n == 0 {
		return nil, fmt.Errorf("%w: no dimension declared", ErrInvalidConfig)
	}

	err := c.checkLengths(n)
	if err != nil {
		return nil, err
	}

	dims := make([]Dimension, n)
	for i := 0; i < n; i++ {
		kind, err := ParseKind(c.Topology[i])
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}

		dims[i] = Dimension{
			Kind:          kind,
			Size:          c.NPUsCount[i],
			BandwidthGBps: c.Bandwidth[i],
			LatencyNs:     c.Latency[i],
			Bidirectional: true,
		}

		if len(c.Bidirectional) > 0 {
			dims[i].Bidirectional = c.Bidirectional[i]
		}

		err = dims[i].Validate()
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
	}

	return dims, nil
}

func (c Config) checkLengths(n int) error {
	lengths := []struct {
		name     string
		length   int
		optional bool
	}{
		{"npus_count", len(c.NPUsCount), false},
		{"bandwidth", len(c.Bandwidth), false},
		{"latency", len(c.Latency), false},
		{"bidirectional", len(c.Bidirectional), true},
	}

	for _, l := range lengths {
		if l.optional && l.length == 0 {
			continue
		}

		if l.length != n {
			return fmt.Errorf("%w: %s has %d entries, expected %d",
				ErrInvalidConfig, l.name, l.length, n)
		}
	}

	return nil
}
