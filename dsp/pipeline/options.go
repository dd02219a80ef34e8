package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/cwbudde/pitchchorus/dsp/resample"
)

type config struct {
	logger     zerolog.Logger
	cursorMode resample.CursorMode
	topology   Topology
	params     Parameters
}

func defaultConfig() config {
	return config{
		logger:     zerolog.Nop(),
		cursorMode: resample.CursorContinuous,
		topology:   TopologyResampleChorusGain,
		params:     DefaultParameters(),
	}
}

// Option configures a Processor.
type Option func(*config)

// WithLogger sets the logger used by Prepare, Release and state loading.
// Process never logs.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithCursorMode selects how the resampler cursor behaves across blocks.
func WithCursorMode(mode resample.CursorMode) Option {
	return func(cfg *config) {
		cfg.cursorMode = mode
	}
}

// WithTopology selects the stages run per block.
func WithTopology(topology Topology) Option {
	return func(cfg *config) {
		if topology == TopologyResampleChorusGain || topology == TopologyResampleGain {
			cfg.topology = topology
		}
	}
}

// WithParameters sets the initial parameter values.
func WithParameters(params Parameters) Option {
	return func(cfg *config) {
		cfg.params = params
	}
}
