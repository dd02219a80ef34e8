// Package audiofile reads and writes planar float64 audio for the
// command line tools. WAV is read and written with go-audio/wav, MP3 is
// decoded with go-mp3.
package audiofile

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedFormat is returned for file types or sample encodings
	// that cannot be handled.
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	// ErrEmpty is returned for audio without channels or sample rate.
	ErrEmpty = errors.New("audiofile: empty audio")
)

// Audio is decoded audio in planar layout with samples in [-1, 1].
type Audio struct {
	SampleRate int
	Channels   [][]float64
}

// NumChannels returns the channel count.
func (a *Audio) NumChannels() int { return len(a.Channels) }

// NumFrames returns the length of the shortest channel.
func (a *Audio) NumFrames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	n := len(a.Channels[0])
	for _, ch := range a.Channels[1:] {
		n = min(n, len(ch))
	}
	return n
}

// Duration returns the playing time.
func (a *Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(a.NumFrames()) / float64(a.SampleRate) * float64(time.Second))
}

func (a *Audio) validate() error {
	if a == nil || a.SampleRate <= 0 || len(a.Channels) == 0 {
		return ErrEmpty
	}
	return nil
}

// ReadFile decodes the file at path based on its extension.
func ReadFile(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "audiofile: open")
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		a, err := DecodeWAV(f)
		return a, errors.Wrapf(err, "audiofile: %s", path)
	case ".mp3":
		a, err := DecodeMP3(f)
		return a, errors.Wrapf(err, "audiofile: %s", path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}
}

// WriteWAV encodes a as integer PCM WAV at path.
func WriteWAV(path string, a *Audio, bitDepth int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "audiofile: create")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "audiofile: close")
		}
	}()

	return errors.Wrapf(EncodeWAV(f, a, bitDepth), "audiofile: %s", path)
}
