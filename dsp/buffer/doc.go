// Package buffer provides a planar multichannel working buffer for
// allocation-free block processing.
//
// A Block is sized once for a channel count and a maximum block length.
// View returns per-call channel slices of the requested shape by
// re-slicing pre-allocated storage, so the audio thread never allocates.
package buffer
