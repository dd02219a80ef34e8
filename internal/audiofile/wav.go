package audiofile

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

const wavFormatPCM = 1

// DecodeWAV reads an integer PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.Wrap(ErrUnsupportedFormat, "not a valid wav file")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "wav audio format %d", dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "decode wav")
	}

	bitDepth := int(dec.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "bit depth %d", bitDepth)
	}

	a := &Audio{
		SampleRate: int(dec.SampleRate),
		Channels:   Deinterleave(buf.Data, int(dec.NumChans), fullScale(bitDepth)),
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeWAV writes a as integer PCM with the given bit depth (16, 24 or 32).
// Samples are clipped to the representable range.
func EncodeWAV(w io.WriteSeeker, a *Audio, bitDepth int) error {
	if err := a.validate(); err != nil {
		return err
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "bit depth %d", bitDepth)
	}

	enc := wav.NewEncoder(w, a.SampleRate, bitDepth, a.NumChannels(), wavFormatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: a.NumChannels(),
			SampleRate:  a.SampleRate,
		},
		Data:           Interleave(a.Channels, fullScale(bitDepth)),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errors.Wrap(err, "encode wav")
	}
	return errors.Wrap(enc.Close(), "finish wav")
}

func fullScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

// Deinterleave splits interleaved integer samples into planar channels
// scaled by 1/scale. A trailing partial frame is dropped.
func Deinterleave(data []int, numChannels int, scale float64) [][]float64 {
	if numChannels <= 0 {
		return nil
	}
	frames := len(data) / numChannels
	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := range out {
			out[ch][i] = float64(data[i*numChannels+ch]) / scale
		}
	}
	return out
}

// Interleave quantises planar channels to integers of the given full
// scale, clipping to [-scale, scale-1].
func Interleave(chans [][]float64, scale float64) []int {
	if len(chans) == 0 {
		return nil
	}
	frames := len(chans[0])
	for _, ch := range chans[1:] {
		frames = min(frames, len(ch))
	}

	out := make([]int, frames*len(chans))
	for i := 0; i < frames; i++ {
		for ch := range chans {
			out[i*len(chans)+ch] = quantize(chans[ch][i], scale)
		}
	}
	return out
}

func quantize(v, scale float64) int {
	if math.IsNaN(v) {
		return 0
	}
	q := math.Round(v * scale)
	if q > scale-1 {
		q = scale - 1
	}
	if q < -scale {
		q = -scale
	}
	return int(q)
}
