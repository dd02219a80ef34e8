// Package gain implements the output gain stage.
//
// The stage is a pure per-sample multiply by a volume scalar. It carries
// no state; the volume is owned by the caller and read once per call.
package gain

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/pitchchorus/dsp/core"
)

// MaxVolume is the largest accepted linear volume (about +12 dB).
const MaxVolume = 4.0

// Apply writes src[i]*volume into dst for i < min(len(dst), len(src)).
func Apply(dst, src []float64, volume float64) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	if n == 0 {
		return
	}
	vecmath.ScaleBlock(dst[:n], src[:n], volume)
}

// ApplyChannels applies volume from src into dst channel by channel. Each
// channel covers the shorter of the two slices.
func ApplyChannels(dst, src [][]float64, volume float64) {
	for ch := 0; ch < len(dst) && ch < len(src); ch++ {
		Apply(dst[ch], src[ch], volume)
	}
}

// ClampVolume limits v to [0, MaxVolume]. NaN maps to 0.
func ClampVolume(v float64) float64 {
	return core.ClampFinite(v, 0, MaxVolume, 0)
}

// FromDecibels converts a gain in dB to a clamped linear volume.
// -Inf dB yields silence.
func FromDecibels(db float64) float64 {
	if math.IsInf(db, -1) {
		return 0
	}
	return ClampVolume(core.DBToLinear(db))
}
