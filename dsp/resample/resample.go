package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/pitchchorus/dsp/interp"
)

// ErrInvalidChannelCount indicates a non-positive channel count.
var ErrInvalidChannelCount = errors.New("resample: invalid channel count")

// CursorMode selects how the read cursor behaves across blocks.
type CursorMode int

const (
	// CursorContinuous carries each channel's cursor into the next block.
	CursorContinuous CursorMode = iota
	// CursorResetPerBlock restarts the cursor at 0 for every block.
	CursorResetPerBlock
)

func (m CursorMode) String() string {
	switch m {
	case CursorContinuous:
		return "continuous"
	case CursorResetPerBlock:
		return "reset"
	default:
		return fmt.Sprintf("CursorMode(%d)", int(m))
	}
}

// ParseCursorMode maps "continuous" or "reset" to a CursorMode.
func ParseCursorMode(s string) (CursorMode, error) {
	switch s {
	case "continuous", "":
		return CursorContinuous, nil
	case "reset":
		return CursorResetPerBlock, nil
	default:
		return CursorContinuous, fmt.Errorf("resample: unknown cursor mode %q", s)
	}
}

type config struct {
	mode CursorMode
}

// Option configures the resampler.
type Option func(*config)

// WithCursorMode selects the cursor behaviour across blocks.
func WithCursorMode(mode CursorMode) Option {
	return func(cfg *config) {
		if mode == CursorContinuous || mode == CursorResetPerBlock {
			cfg.mode = mode
		}
	}
}

// Resampler walks a fractional read cursor through each channel of a block.
//
// A Resampler is owned by the audio thread: ProcessChannel and Process do
// not allocate and must not be called concurrently.
type Resampler struct {
	mode    CursorMode
	cursors []float64
}

// New returns a resampler holding one cursor per channel.
func New(numChannels int, opts ...Option) (*Resampler, error) {
	if numChannels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannelCount, numChannels)
	}

	cfg := config{mode: CursorContinuous}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Resampler{
		mode:    cfg.mode,
		cursors: make([]float64, numChannels),
	}, nil
}

// ClampRatio sanitizes a pitch ratio. Negative, NaN and infinite ratios
// become 0; finite ratios of any size pass through, since the cursor wraps
// modulo the block length.
func ClampRatio(ratio float64) float64 {
	if ratio < 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0
	}

	return ratio
}

// NumChannels returns the number of cursors.
func (r *Resampler) NumChannels() int { return len(r.cursors) }

// Mode returns the cursor mode.
func (r *Resampler) Mode() CursorMode { return r.mode }

// Cursor returns the cursor position channel ch will start the next block at,
// before it is reduced modulo that block's length.
func (r *Resampler) Cursor(ch int) float64 {
	if ch < 0 || ch >= len(r.cursors) {
		return 0
	}
	return r.cursors[ch]
}

// Reset rewinds every cursor to 0.
func (r *Resampler) Reset() {
	for i := range r.cursors {
		r.cursors[i] = 0
	}
}

// ProcessChannel resamples src into dst for channel ch.
//
// Only min(len(dst), len(src)) samples are produced. dst and src must not
// overlap. A channel index without a cursor is processed from position 0
// and leaves no state behind.
func (r *Resampler) ProcessChannel(ch int, dst, src []float64, ratio float64) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	if n == 0 {
		return
	}

	ratio = ClampRatio(ratio)
	size := float64(n)
	stateful := ch >= 0 && ch < len(r.cursors)

	pos := 0.0
	if stateful && r.mode == CursorContinuous {
		pos = wrap(r.cursors[ch], size)
	}

	last := n - 1
	for i := 0; i < n; i++ {
		idx := int(pos)
		if idx > last {
			idx = last
		}
		next := idx + 1
		if next > last {
			next = idx
		}
		frac := pos - float64(idx)

		dst[i] = interp.Linear2(frac, src[idx], src[next])

		pos += ratio
		if pos >= size {
			pos -= size
			if pos >= size {
				pos = math.Mod(pos, size)
			}
		}
	}

	if stateful {
		r.cursors[ch] = pos
	}
}

// Process resamples every channel of src into the matching channel of dst.
func (r *Resampler) Process(dst, src [][]float64, ratio float64) {
	for ch := 0; ch < len(dst) && ch < len(src); ch++ {
		r.ProcessChannel(ch, dst[ch], src[ch], ratio)
	}
}

func wrap(pos, size float64) float64 {
	if pos < 0 || math.IsNaN(pos) {
		return 0
	}
	if pos >= size {
		return math.Mod(pos, size)
	}
	return pos
}
