package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/cwbudde/pitchchorus/dsp/buffer"
	"github.com/cwbudde/pitchchorus/dsp/core"
	"github.com/cwbudde/pitchchorus/dsp/effects/modulation"
	"github.com/cwbudde/pitchchorus/dsp/gain"
	"github.com/cwbudde/pitchchorus/dsp/resample"
)

// Events carries host side-channel data such as timed MIDI or automation
// events. Process passes it through without interpreting it.
type Events any

// Processor is the resample -> chorus -> gain effect.
type Processor struct {
	log        zerolog.Logger
	cursorMode resample.CursorMode
	topology   Topology

	params   paramSet
	counters counters

	engine       atomic.Pointer[engine]
	resetPending atomic.Bool

	// lifecycle serialises Prepare, Release and DeserializeState callers.
	// Process never takes it.
	lifecycle sync.Mutex
}

// engine is everything Prepare builds for one ProcessSpec. It is published
// atomically and afterwards only touched by the audio thread.
type engine struct {
	spec         core.ProcessSpec
	resampler    *resample.Resampler
	chorus       *modulation.Chorus
	work         *buffer.Block
	chorusActive bool
}

// New returns an unprepared Processor.
func New(opts ...Option) *Processor {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	p := &Processor{
		log:        cfg.logger.With().Str("component", "pipeline").Logger(),
		cursorMode: cfg.cursorMode,
		topology:   cfg.topology,
	}
	p.params.store(cfg.params)
	return p
}

// Prepare validates the processing context and builds buffers sized for it.
// On error the previously prepared state, if any, stays in use.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize, numChannels int) error {
	spec := core.ProcessSpec{
		SampleRate:   sampleRate,
		MaxBlockSize: maxBlockSize,
		NumChannels:  numChannels,
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	e, err := p.newEngine(spec)
	if err != nil {
		p.log.Error().Err(err).
			Float64("sample_rate", sampleRate).
			Int("max_block_size", maxBlockSize).
			Int("channels", numChannels).
			Msg("prepare failed")
		return err
	}

	p.engine.Store(e)
	p.resetPending.Store(false)
	p.counters.prepares.Add(1)

	p.log.Info().
		Float64("sample_rate", spec.SampleRate).
		Int("max_block_size", spec.MaxBlockSize).
		Int("channels", spec.NumChannels).
		Stringer("topology", p.topology).
		Stringer("cursor", p.cursorMode).
		Msg("prepared")
	return nil
}

func (p *Processor) newEngine(spec core.ProcessSpec) (*engine, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: prepare: %w", err)
	}

	rs, err := resample.New(spec.NumChannels, resample.WithCursorMode(p.cursorMode))
	if err != nil {
		return nil, fmt.Errorf("pipeline: prepare: %w", err)
	}

	chorus := modulation.NewChorus()
	params := p.params.load()
	applyChorusParams(chorus, params)
	if err := chorus.Prepare(spec); err != nil {
		return nil, fmt.Errorf("pipeline: prepare: %w", err)
	}

	return &engine{
		spec:         spec,
		resampler:    rs,
		chorus:       chorus,
		work:         buffer.NewBlock(spec.NumChannels, spec.MaxBlockSize),
		chorusActive: p.topology.hasChorus() && !params.ChorusBypass,
	}, nil
}

// Release drops the prepared buffers. Subsequent Process calls output
// silence until the next Prepare. Calling Release repeatedly is harmless.
func (p *Processor) Release() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.engine.Swap(nil) != nil {
		p.log.Debug().Msg("released")
	}
}

// Reset asks the audio thread to clear delay memory and resampler cursors
// at the start of the next block.
func (p *Processor) Reset() {
	p.resetPending.Store(true)
}

// Process runs the pipeline in place on block, one slice per channel.
//
// Output channels beyond the prepared channel count are cleared. Samples
// beyond the prepared maximum block size, or beyond the shortest channel,
// are cleared and counted as truncation. Before Prepare, or after
// Release, the block is cleared. events is not interpreted.
func (p *Processor) Process(block [][]float64, events Events) {
	_ = events

	e := p.engine.Load()
	if e == nil {
		core.ZeroChannels(block, 0)
		if len(block) > 0 {
			p.counters.unprepared.Add(1)
		}
		return
	}

	numIn := len(block)
	if numIn > e.work.NumChannels() {
		numIn = e.work.NumChannels()
	}
	core.ZeroChannels(block, numIn)
	if numIn == 0 {
		return
	}

	in := block[:numIn]
	n := core.MinLen(in)
	if n > e.work.MaxSamples() {
		n = e.work.MaxSamples()
	}
	truncated := false
	for _, ch := range in {
		if len(ch) > n {
			core.Zero(ch[n:])
			truncated = true
		}
	}
	if truncated {
		p.counters.truncated.Add(1)
	}
	if n == 0 {
		return
	}

	if p.resetPending.CompareAndSwap(true, false) {
		e.resampler.Reset()
		e.chorus.Reset()
		e.work.Zero()
	}

	params := p.params.load()
	work := e.work.View(numIn, n)

	for ch, dst := range work {
		e.resampler.ProcessChannel(ch, dst, in[ch][:n], params.PitchRatio)
	}

	if p.topology.hasChorus() && !params.ChorusBypass {
		applyChorusParams(e.chorus, params)
		if !e.chorusActive {
			// Coming out of bypass: drop whatever the line held before.
			e.chorus.Reset()
			e.chorusActive = true
		}
		e.chorus.ProcessBlock(work)
	} else {
		e.chorusActive = false
	}

	gain.ApplyChannels(in, work, params.Volume)

	p.counters.blocks.Add(1)
	p.counters.samples.Add(uint64(n))
}

func applyChorusParams(c *modulation.Chorus, params Parameters) {
	c.SetCentreDelay(params.CentreDelayMs)
	c.SetDepth(params.Depth)
	c.SetFeedback(params.Feedback)
	c.SetMix(params.Mix)
	c.SetRate(params.RateHz)
}

// Spec returns the prepared processing context and whether one exists.
func (p *Processor) Spec() (core.ProcessSpec, bool) {
	e := p.engine.Load()
	if e == nil {
		return core.ProcessSpec{}, false
	}
	return e.spec, true
}

// Topology returns the configured stage topology.
func (p *Processor) Topology() Topology { return p.topology }

// CursorMode returns the configured resampler cursor mode.
func (p *Processor) CursorMode() resample.CursorMode { return p.cursorMode }

// Stats returns a snapshot of the processor counters.
func (p *Processor) Stats() Stats { return p.counters.snapshot() }

// LatencySamples reports the processing latency. The pipeline adds none.
func (p *Processor) LatencySamples() int { return 0 }

// TailLengthSeconds reports how long output continues after input stops.
// The chorus feedback tail is not reported, matching hosts that expect 0
// for insert effects without lookahead.
func (p *Processor) TailLengthSeconds() float64 { return 0 }
