package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSampleRate indicates a sample rate that is not positive and finite.
	ErrInvalidSampleRate = errors.New("core: invalid sample rate")
	// ErrInvalidBlockSize indicates a non-positive maximum block size.
	ErrInvalidBlockSize = errors.New("core: invalid maximum block size")
	// ErrInvalidChannelCount indicates a non-positive channel count.
	ErrInvalidChannelCount = errors.New("core: invalid channel count")
)

// ProcessSpec describes the processing context fixed at prepare time.
//
// Every block handed to a prepared processor must have at most NumChannels
// channels and at most MaxBlockSize samples per channel.
type ProcessSpec struct {
	SampleRate   float64
	MaxBlockSize int
	NumChannels  int
}

// Validate reports the first invalid field of s.
func (s ProcessSpec) Validate() error {
	if !IsFinitePositive(s.SampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, s.SampleRate)
	}
	if s.MaxBlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, s.MaxBlockSize)
	}
	if s.NumChannels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannelCount, s.NumChannels)
	}
	return nil
}

// MsToSamples converts a duration in milliseconds to samples at the spec's rate.
func (s ProcessSpec) MsToSamples(ms float64) float64 {
	return ms * s.SampleRate / 1000
}

// IsFinitePositive reports whether v is > 0 and neither NaN nor Inf.
func IsFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
