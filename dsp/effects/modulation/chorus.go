package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/pitchchorus/dsp/core"
	"github.com/cwbudde/pitchchorus/dsp/delay"
)

const (
	defaultChorusCentreDelayMs = 27.0
	defaultChorusDepth         = 0.8
	defaultChorusFeedback      = 0.8
	defaultChorusMix           = 0.8
	defaultChorusRateHz        = 1.0

	// MinChorusCentreDelayMs and MaxChorusCentreDelayMs bound the centre delay.
	MinChorusCentreDelayMs = 1.0
	MaxChorusCentreDelayMs = 100.0
	// MaxChorusModulationMs is the delay excursion at full depth.
	MaxChorusModulationMs = 20.0
	// MaxChorusFeedback bounds the feedback magnitude.
	MaxChorusFeedback = 0.95
	// MaxChorusRateHz bounds the LFO rate.
	MaxChorusRateHz = 20.0

	chorusSmoothingMs = 20.0
)

// Chorus is a single-voice feedback chorus with one delay line per channel.
//
// Delay time follows:
//
//	d(t) = centre + depth * MaxChorusModulationMs * 0.5 * (1 + sin(phase))
//
// All channels share one LFO so identical inputs stay identical.
// Centre delay, depth, feedback and mix are smoothed with a one-pole
// filter, so setter changes glide instead of stepping.
//
// A Chorus must be prepared before it processes audio. Prepare allocates;
// ProcessBlock does not.
type Chorus struct {
	spec     core.ProcessSpec
	prepared bool
	lines    []*delay.Line

	centreMs smoothedParam
	depth    smoothedParam
	feedback smoothedParam
	mix      smoothedParam
	rateHz   float64

	lfoPhase      float64
	smoothingCoef float64
}

type smoothedParam struct {
	current float64
	target  float64
}

func (p *smoothedParam) next(coef float64) float64 {
	p.current += (p.target - p.current) * coef
	return p.current
}

func (p *smoothedParam) snap() {
	p.current = p.target
}

// NewChorus returns an unprepared chorus with default parameters.
func NewChorus() *Chorus {
	c := &Chorus{
		centreMs: smoothedParam{target: defaultChorusCentreDelayMs},
		depth:    smoothedParam{target: defaultChorusDepth},
		feedback: smoothedParam{target: defaultChorusFeedback},
		mix:      smoothedParam{target: defaultChorusMix},
		rateHz:   defaultChorusRateHz,
	}
	c.snapParams()
	return c
}

// Prepare sizes the delay lines for spec and clears all state.
// It may be called again to change sample rate, block size or channel count.
func (c *Chorus) Prepare(spec core.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("chorus prepare: %w", err)
	}

	maxDelay := spec.MsToSamples(MaxChorusCentreDelayMs + MaxChorusModulationMs)
	lines := make([]*delay.Line, spec.NumChannels)
	for ch := range lines {
		line, err := delay.ForMaxDelay(maxDelay)
		if err != nil {
			return fmt.Errorf("chorus prepare: %w", err)
		}
		lines[ch] = line
	}

	c.spec = spec
	c.lines = lines
	c.smoothingCoef = 1 - math.Exp(-1/spec.MsToSamples(chorusSmoothingMs))
	c.lfoPhase = 0
	c.snapParams()
	c.prepared = true
	return nil
}

// Prepared reports whether Prepare succeeded at least once.
func (c *Chorus) Prepared() bool { return c.prepared }

// Spec returns the spec of the last successful Prepare.
func (c *Chorus) Spec() core.ProcessSpec { return c.spec }

// NumChannels returns the number of prepared delay lines.
func (c *Chorus) NumChannels() int { return len(c.lines) }

// MaxDelaySamples returns the longest delay the prepared lines can serve.
func (c *Chorus) MaxDelaySamples() float64 {
	if len(c.lines) == 0 {
		return 0
	}
	return c.lines[0].MaxDelay()
}

// SetCentreDelay sets the centre delay in milliseconds, clamped to
// [MinChorusCentreDelayMs, MaxChorusCentreDelayMs]. NaN is ignored.
func (c *Chorus) SetCentreDelay(ms float64) {
	if math.IsNaN(ms) {
		return
	}
	c.centreMs.target = core.Clamp(ms, MinChorusCentreDelayMs, MaxChorusCentreDelayMs)
}

// SetDepth sets the modulation depth in [0, 1]. NaN is ignored.
func (c *Chorus) SetDepth(depth float64) {
	if math.IsNaN(depth) {
		return
	}
	c.depth.target = core.Clamp(depth, 0, 1)
}

// SetFeedback sets the feedback amount in [-MaxChorusFeedback, MaxChorusFeedback].
// NaN is ignored.
func (c *Chorus) SetFeedback(feedback float64) {
	if math.IsNaN(feedback) {
		return
	}
	c.feedback.target = core.Clamp(feedback, -MaxChorusFeedback, MaxChorusFeedback)
}

// SetMix sets the wet amount in [0, 1]. NaN is ignored.
func (c *Chorus) SetMix(mix float64) {
	if math.IsNaN(mix) {
		return
	}
	c.mix.target = core.Clamp(mix, 0, 1)
}

// SetRate sets the LFO rate in Hz, clamped to [0, MaxChorusRateHz]. NaN is ignored.
func (c *Chorus) SetRate(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	c.rateHz = core.Clamp(hz, 0, MaxChorusRateHz)
}

// CentreDelay returns the target centre delay in milliseconds.
func (c *Chorus) CentreDelay() float64 { return c.centreMs.target }

// Depth returns the target modulation depth.
func (c *Chorus) Depth() float64 { return c.depth.target }

// Feedback returns the target feedback amount.
func (c *Chorus) Feedback() float64 { return c.feedback.target }

// Mix returns the target wet amount.
func (c *Chorus) Mix() float64 { return c.mix.target }

// Rate returns the LFO rate in Hz.
func (c *Chorus) Rate() float64 { return c.rateHz }

// Reset clears delay memory and LFO phase and jumps smoothed parameters
// to their targets.
func (c *Chorus) Reset() {
	for _, line := range c.lines {
		line.Reset()
	}
	c.lfoPhase = 0
	c.snapParams()
}

// ProcessBlock applies the chorus in place to every channel of chans.
//
// Channels are processed frame by frame so that the LFO and the smoothed
// parameters advance once per sample regardless of channel count.
// Channels beyond the prepared count are left untouched. An unprepared
// chorus does nothing.
func (c *Chorus) ProcessBlock(chans [][]float64) {
	if !c.prepared {
		return
	}
	numChannels := len(chans)
	if numChannels > len(c.lines) {
		numChannels = len(c.lines)
	}
	if numChannels == 0 {
		return
	}
	chans = chans[:numChannels]
	n := core.MinLen(chans)

	samplesPerMs := c.spec.SampleRate / 1000
	phaseInc := 2 * math.Pi * c.rateHz / c.spec.SampleRate
	coef := c.smoothingCoef

	for i := 0; i < n; i++ {
		centre := c.centreMs.next(coef)
		depth := c.depth.next(coef)
		feedback := c.feedback.next(coef)
		mix := c.mix.next(coef)

		mod := 0.5 * (1 + math.Sin(c.lfoPhase))
		delaySamples := (centre + depth*MaxChorusModulationMs*mod) * samplesPerMs

		for ch, buf := range chans {
			line := c.lines[ch]
			x := buf[i]
			delayed := line.ReadFractional(delaySamples)
			line.Write(core.FlushDenormals(x + feedback*delayed))
			buf[i] = x*(1-mix) + delayed*mix
		}

		c.lfoPhase += phaseInc
		if c.lfoPhase >= 2*math.Pi {
			c.lfoPhase -= 2 * math.Pi
		}
	}
}

func (c *Chorus) snapParams() {
	c.centreMs.snap()
	c.depth.snap()
	c.feedback.snap()
	c.mix.snap()
}
