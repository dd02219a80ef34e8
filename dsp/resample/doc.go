// Package resample provides the block resampler used for pitch shifting.
//
// Each channel is read through a fractional cursor that advances by the
// pitch ratio per output sample. Samples are linearly interpolated between
// the two input samples around the cursor; at the last input sample the
// right neighbour is clamped instead of wrapped. When the cursor passes
// the end of the block it wraps back by the block length, so output and
// input always have the same length.
//
// Ratio semantics:
//   - 1.0 = unchanged
//   - 2.0 = twice as fast (one octave up)
//   - 0.5 = half speed (one octave down)
//   - 0.0 = frozen on the first sample
//
// Cursor modes:
//   - CursorContinuous: the cursor of each channel carries over to the next block
//   - CursorResetPerBlock: every block starts reading at sample 0
package resample
