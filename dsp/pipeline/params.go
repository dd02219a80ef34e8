package pipeline

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/pitchchorus/dsp/core"
	"github.com/cwbudde/pitchchorus/dsp/effects/modulation"
	"github.com/cwbudde/pitchchorus/dsp/gain"
	"github.com/cwbudde/pitchchorus/dsp/resample"
)

// Parameters is a snapshot of every control value of a Processor.
type Parameters struct {
	PitchRatio    float64 `json:"pitchRatio"`
	Volume        float64 `json:"volume"`
	CentreDelayMs float64 `json:"centreDelayMs"`
	Depth         float64 `json:"depth"`
	Feedback      float64 `json:"feedback"`
	Mix           float64 `json:"mix"`
	RateHz        float64 `json:"rateHz"`
	ChorusBypass  bool    `json:"chorusBypass"`
}

// DefaultParameters returns unity pitch and volume. The chorus carries its
// stock setting but starts bypassed; SetChorusBypass(false) enables it.
func DefaultParameters() Parameters {
	return Parameters{
		PitchRatio:    1,
		Volume:        1,
		CentreDelayMs: 27,
		Depth:         0.8,
		Feedback:      0.8,
		Mix:           0.8,
		RateHz:        1,
		ChorusBypass:  true,
	}
}

// Clamped returns p with every value limited to its valid range.
// NaN values fall back to the matching DefaultParameters value.
func (p Parameters) Clamped() Parameters {
	def := DefaultParameters()
	return Parameters{
		PitchRatio:    resample.ClampRatio(p.PitchRatio),
		Volume:        gain.ClampVolume(p.Volume),
		CentreDelayMs: clampOr(p.CentreDelayMs, modulation.MinChorusCentreDelayMs, modulation.MaxChorusCentreDelayMs, def.CentreDelayMs),
		Depth:         clampOr(p.Depth, 0, 1, def.Depth),
		Feedback:      clampOr(p.Feedback, -modulation.MaxChorusFeedback, modulation.MaxChorusFeedback, def.Feedback),
		Mix:           clampOr(p.Mix, 0, 1, def.Mix),
		RateHz:        clampOr(p.RateHz, 0, modulation.MaxChorusRateHz, def.RateHz),
		ChorusBypass:  p.ChorusBypass,
	}
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// atomicFloat is a float64 stored as its IEEE-754 bits.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// paramSet holds the live parameters. Each field is independently atomic,
// so readers never see a torn value, only a mix of old and new fields
// while a multi-field update is in flight.
type paramSet struct {
	pitchRatio atomicFloat
	volume     atomicFloat
	centreMs   atomicFloat
	depth      atomicFloat
	feedback   atomicFloat
	mix        atomicFloat
	rateHz     atomicFloat
	bypass     atomic.Bool
}

func (s *paramSet) load() Parameters {
	return Parameters{
		PitchRatio:    s.pitchRatio.Load(),
		Volume:        s.volume.Load(),
		CentreDelayMs: s.centreMs.Load(),
		Depth:         s.depth.Load(),
		Feedback:      s.feedback.Load(),
		Mix:           s.mix.Load(),
		RateHz:        s.rateHz.Load(),
		ChorusBypass:  s.bypass.Load(),
	}
}

func (s *paramSet) store(p Parameters) {
	p = p.Clamped()
	s.pitchRatio.Store(p.PitchRatio)
	s.volume.Store(p.Volume)
	s.centreMs.Store(p.CentreDelayMs)
	s.depth.Store(p.Depth)
	s.feedback.Store(p.Feedback)
	s.mix.Store(p.Mix)
	s.rateHz.Store(p.RateHz)
	s.bypass.Store(p.ChorusBypass)
}

// storeIfSet stores clamped v into f unless v is NaN.
func storeIfSet(f *atomicFloat, v, lo, hi float64) {
	if math.IsNaN(v) {
		return
	}
	f.Store(core.Clamp(v, lo, hi))
}

// SetPitchShiftRatio sets the resampler speed ratio. Values are clamped
// to be non-negative; negative, NaN and infinite ratios become 0.
func (p *Processor) SetPitchShiftRatio(ratio float64) {
	p.params.pitchRatio.Store(resample.ClampRatio(ratio))
}

// SetPitchShiftSemitones sets the ratio from a shift in semitones.
func (p *Processor) SetPitchShiftSemitones(semitones float64) {
	if math.IsNaN(semitones) {
		return
	}
	p.SetPitchShiftRatio(math.Pow(2, semitones/12))
}

// SetVolume sets the output gain. Values are clamped to [0, gain.MaxVolume];
// NaN becomes 0.
func (p *Processor) SetVolume(volume float64) {
	p.params.volume.Store(gain.ClampVolume(volume))
}

// SetChorusParameters sets the chorus centre delay (ms), mix, feedback and
// depth. Each value is clamped to its range; NaN leaves that value unchanged.
func (p *Processor) SetChorusParameters(centreDelayMs, mix, feedback, depth float64) {
	storeIfSet(&p.params.centreMs, centreDelayMs, modulation.MinChorusCentreDelayMs, modulation.MaxChorusCentreDelayMs)
	storeIfSet(&p.params.mix, mix, 0, 1)
	storeIfSet(&p.params.feedback, feedback, -modulation.MaxChorusFeedback, modulation.MaxChorusFeedback)
	storeIfSet(&p.params.depth, depth, 0, 1)
}

// SetChorusRate sets the chorus LFO rate in Hz.
func (p *Processor) SetChorusRate(hz float64) {
	storeIfSet(&p.params.rateHz, hz, 0, modulation.MaxChorusRateHz)
}

// SetChorusBypass enables or disables the chorus stage.
func (p *Processor) SetChorusBypass(bypass bool) {
	p.params.bypass.Store(bypass)
}

// SetParameters replaces every parameter at once.
func (p *Processor) SetParameters(params Parameters) {
	p.params.store(params)
}

// Parameters returns the current parameter values.
func (p *Processor) Parameters() Parameters {
	return p.params.load()
}
