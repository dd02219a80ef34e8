package audiofile

import (
	"encoding/binary"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/pkg/errors"
)

// go-mp3 always produces 16-bit little endian stereo.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
)

// DecodeMP3 decodes an MP3 stream into stereo audio.
func DecodeMP3(r io.Reader) (*Audio, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode mp3")
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, errors.Wrap(err, "read mp3 pcm")
	}

	frames := len(pcm) / (mp3Channels * mp3BytesPerSample)
	data := make([]int, frames*mp3Channels)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*mp3BytesPerSample:])))
	}

	a := &Audio{
		SampleRate: dec.SampleRate(),
		Channels:   Deinterleave(data, mp3Channels, fullScale(16)),
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}
