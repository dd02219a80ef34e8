// Package pipeline implements the real-time pitch-shift and chorus processor.
//
// A Processor runs a fixed topology on every block handed to Process:
//
//	input -> resample (pitch ratio) -> chorus -> gain -> output
//
// The chorus stage starts bypassed, so a freshly constructed Processor
// applies only pitch and volume until SetChorusBypass(false) is called.
//
// The host calls Prepare before playback and whenever the sample rate,
// maximum block size or channel count changes, Process once per audio
// buffer on its real-time thread, and Release when playback stops.
// Parameter setters may be called from any goroutine at any time; they
// store atomically and are picked up at the start of the next block.
//
// Process never allocates, blocks, logs or returns an error. Blocks that
// violate the prepared bounds are truncated, and extra output channels
// are cleared.
package pipeline
