// Package testutil holds deterministic signal generators and tolerance
// assertions shared by package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ramp returns [0, 1, ..., length-1].
func Ramp(length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// Planar groups channel signals into a planar block.
func Planar(channels ...[]float64) [][]float64 {
	return channels
}

// CloneBlock deep-copies a planar block.
func CloneBlock(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	for ch := range block {
		out[ch] = append([]float64(nil), block[ch]...)
	}
	return out
}

// SplitBlock returns the [from, to) sample range of every channel without copying.
func SplitBlock(block [][]float64, from, to int) [][]float64 {
	out := make([][]float64, len(block))
	for ch := range block {
		out[ch] = block[ch][from:to]
	}
	return out
}
