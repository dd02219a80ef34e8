package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StateVersion is the version written by SerializeState.
const StateVersion = 1

// ErrUnsupportedStateVersion is returned for state blobs from a newer or
// unknown format.
var ErrUnsupportedStateVersion = errors.New("pipeline: unsupported state version")

// State is the persisted form of the processor parameters.
type State struct {
	Version int `json:"version"`
	Parameters
}

// SerializeState encodes the current parameters as JSON.
func (p *Processor) SerializeState() ([]byte, error) {
	data, err := json.Marshal(State{Version: StateVersion, Parameters: p.params.load()})
	if err != nil {
		return nil, fmt.Errorf("pipeline: serialize state: %w", err)
	}
	return data, nil
}

// DeserializeState restores parameters written by SerializeState. Fields
// missing from data keep their current value; all values are clamped.
// A blob without a version is read as version 1.
func (p *Processor) DeserializeState(data []byte) error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	st := State{Parameters: p.params.load()}
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("pipeline: deserialize state: %w", err)
	}
	if st.Version == 0 {
		st.Version = StateVersion
	}
	if st.Version != StateVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedStateVersion, st.Version)
	}

	p.params.store(st.Parameters)
	p.log.Debug().Int("version", st.Version).Msg("state restored")
	return nil
}
