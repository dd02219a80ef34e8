// Package delay provides a circular delay line with fractional reads.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/pitchchorus/dsp/interp"
)

// GuardSamples is the headroom ReadFractional needs beyond the longest delay.
const GuardSamples = 3

// Line is a circular delay line.
//
// Delays are measured from the write head: Read(1) returns the most
// recently written sample.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// ForMaxDelay returns a line able to serve fractional reads up to maxDelay samples.
func ForMaxDelay(maxDelay float64) (*Line, error) {
	if maxDelay < 0 || math.IsNaN(maxDelay) || math.IsInf(maxDelay, 0) {
		return nil, fmt.Errorf("delay max must be >= 0 and finite: %f", maxDelay)
	}
	return New(int(math.Ceil(maxDelay)) + GuardSamples + 1)
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the longest delay ReadFractional serves without clamping.
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - GuardSamples)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	if delay < 0 {
		delay = 0
	} else if delay > size {
		delay = size
	}
	readPos := d.writePos - delay
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads with cubic Hermite interpolation.
// The delay is clamped to [1, MaxDelay].
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	if delay < 1 || math.IsNaN(delay) {
		delay = 1
	}
	if maxDelay := d.MaxDelay(); delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)

	xm1 := d.Read(maxInt(1, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)
	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
