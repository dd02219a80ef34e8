// Package pitch estimates the dominant frequency of a signal with a
// windowed FFT.
//
// It is used to verify pitch-shift output offline: feed a tone through the
// pipeline, analyse input and output, and compare the frequencies.
package pitch

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// MinSize and MaxSize bound the FFT frame length.
	MinSize = 32
	MaxSize = 1 << 16

	silenceFloor = 1e-12
)

var (
	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("pitch: invalid sample rate")
	// ErrInvalidSize is returned for frame sizes that are not a power of two
	// in [MinSize, MaxSize].
	ErrInvalidSize = errors.New("pitch: invalid frame size")
	// ErrEmptySignal is returned when there is nothing to analyse.
	ErrEmptySignal = errors.New("pitch: empty signal")
	// ErrNoPeak is returned when the analysed frame is silent.
	ErrNoPeak = errors.New("pitch: no spectral peak")
)

// Result describes the strongest spectral component of a frame.
type Result struct {
	// Frequency is the interpolated peak frequency in Hz.
	Frequency float64
	// Bin is the interpolated peak position in FFT bins.
	Bin float64
	// Amplitude estimates the linear peak amplitude of the component.
	Amplitude float64
}

// Analyzer runs Hann-windowed FFT peak picking on fixed-size frames.
// It reuses its buffers and is not safe for concurrent use.
type Analyzer struct {
	sampleRate float64
	size       int

	plan   *algofft.Plan[complex128]
	window []float64
	frame  []float64
	in     []complex128
	out    []complex128
	re     []float64
	im     []float64
	mag    []float64
}

// NewAnalyzer creates an analyzer for frames of size samples.
func NewAnalyzer(sampleRate float64, size int) (*Analyzer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if size < MinSize || size > MaxSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("pitch: fft plan: %w", err)
	}

	bins := size/2 + 1
	return &Analyzer{
		sampleRate: sampleRate,
		size:       size,
		plan:       plan,
		window:     hann(size),
		frame:      make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
	}, nil
}

// Size returns the frame length.
func (a *Analyzer) Size() int { return a.size }

// SampleRate returns the sample rate used to convert bins to Hz.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// Analyze estimates the dominant component of signal. The frame is taken
// from the middle of signal; shorter signals are zero padded.
func (a *Analyzer) Analyze(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, ErrEmptySignal
	}

	start := max(len(signal)/2-a.size/2, 0)
	n := copy(a.frame, signal[start:])
	clear(a.frame[n:])
	vecmath.MulBlockInPlace(a.frame, a.window)

	for i, v := range a.frame {
		a.in[i] = complex(v, 0)
	}
	if err := a.plan.Forward(a.out, a.in); err != nil {
		return Result{}, fmt.Errorf("pitch: fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}
	vecmath.Magnitude(a.mag, a.re, a.im)

	// DC is skipped.
	peak := 1
	for k := 2; k < len(a.mag); k++ {
		if a.mag[k] > a.mag[peak] {
			peak = k
		}
	}
	if a.mag[peak] <= silenceFloor {
		return Result{}, ErrNoPeak
	}

	offset, height := 0.0, a.mag[peak]
	if peak > 0 && peak < len(a.mag)-1 {
		offset, height = interpolatePeak(a.mag[peak-1], a.mag[peak], a.mag[peak+1])
	}

	bin := float64(peak) + offset
	return Result{
		Frequency: bin * a.sampleRate / float64(a.size),
		Bin:       bin,
		// A Hann window has a coherent gain of 0.5.
		Amplitude: 2 * height / (0.5 * float64(n)),
	}, nil
}

// DominantFrequency returns the dominant frequency of signal using the
// largest power-of-two frame that fits, capped at MaxSize.
func DominantFrequency(signal []float64, sampleRate float64) (float64, error) {
	if len(signal) == 0 {
		return 0, ErrEmptySignal
	}
	size := MinSize
	for size*2 <= len(signal) && size*2 <= MaxSize {
		size *= 2
	}

	a, err := NewAnalyzer(sampleRate, size)
	if err != nil {
		return 0, err
	}
	res, err := a.Analyze(signal)
	if err != nil {
		return 0, err
	}
	return res.Frequency, nil
}

// interpolatePeak fits a parabola through the log magnitudes of three bins
// and returns the vertex offset in bins and its linear height.
func interpolatePeak(left, centre, right float64) (float64, float64) {
	if left <= 0 || right <= 0 {
		return 0, centre
	}
	l, c, r := math.Log(left), math.Log(centre), math.Log(right)
	denom := l - 2*c + r
	if denom >= 0 {
		return 0, centre
	}
	offset := 0.5 * (l - r) / denom
	return offset, math.Exp(c - 0.25*(l-r)*offset)
}

func hann(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	return w
}
