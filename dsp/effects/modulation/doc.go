// Package modulation provides the chorus stage of the effect pipeline.
//
// The Chorus mixes the dry signal with a feedback delay line whose delay
// time is swept by a sine LFO around a centre delay. Parameter changes are
// smoothed per sample, and delay memory persists across blocks until the
// next Prepare or Reset.
package modulation
