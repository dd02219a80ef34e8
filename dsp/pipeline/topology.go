package pipeline

import "fmt"

// Topology selects which stages run per block.
type Topology int

const (
	// TopologyResampleChorusGain runs resample, chorus and gain.
	TopologyResampleChorusGain Topology = iota
	// TopologyResampleGain skips the chorus stage entirely.
	TopologyResampleGain
)

func (t Topology) String() string {
	switch t {
	case TopologyResampleChorusGain:
		return "resample-chorus-gain"
	case TopologyResampleGain:
		return "resample-gain"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// ParseTopology maps a topology name to a Topology.
func ParseTopology(s string) (Topology, error) {
	switch s {
	case "resample-chorus-gain", "":
		return TopologyResampleChorusGain, nil
	case "resample-gain":
		return TopologyResampleGain, nil
	default:
		return TopologyResampleChorusGain, fmt.Errorf("pipeline: unknown topology %q", s)
	}
}

func (t Topology) hasChorus() bool {
	return t == TopologyResampleChorusGain
}
