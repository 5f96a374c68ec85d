package driver

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Stats is the summary report written when --stats is given: a compact,
// human-readable account of what happened over the run, independent of
// the raw capture files.
type Stats struct {
	Cycles   uint64       `yaml:"cycles"`
	Nodes    []NodeStats  `yaml:"nodes"`
}

type NodeStats struct {
	Name       string `yaml:"name"`
	FinalState string `yaml:"final_trx_state"`
	PC         uint32 `yaml:"pc"`
}

// Collect builds a Stats snapshot from the simulation's current state.
func (s *Simulation) Collect() Stats {
	stats := Stats{Cycles: s.Cycle}
	for _, n := range s.Nodes {
		stats.Nodes = append(stats.Nodes, NodeStats{
			Name:       n.Name,
			FinalState: n.Radio.State().String(),
			PC:         n.CPU.R[15],
		})
	}
	return stats
}

// WriteStats marshals stats as YAML to path.
func WriteStats(path string, stats Stats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
