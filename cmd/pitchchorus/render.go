package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cwbudde/pitchchorus/dsp/pipeline"
	"github.com/cwbudde/pitchchorus/internal/audiofile"
)

// renderer plays a file through a processor block by block, the way an
// audio host would.
type renderer struct {
	proc      *pipeline.Processor
	blockSize int
	realtime  bool
	log       zerolog.Logger

	// sweepTo > 0 glides the pitch ratio from its start value to sweepTo
	// over the length of the file.
	sweepTo float64
}

// sweepInterval is how often the control goroutine updates the ratio in
// realtime mode.
const sweepInterval = 10 * time.Millisecond

// render processes a copy of in and returns it.
func (r *renderer) render(ctx context.Context, in *audiofile.Audio) (*audiofile.Audio, error) {
	frames := in.NumFrames()
	if err := r.proc.Prepare(float64(in.SampleRate), r.blockSize, in.NumChannels()); err != nil {
		return nil, err
	}
	defer r.proc.Release()

	out := &audiofile.Audio{SampleRate: in.SampleRate, Channels: make([][]float64, in.NumChannels())}
	for ch := range out.Channels {
		out.Channels[ch] = append([]float64(nil), in.Channels[ch][:frames]...)
	}

	startRatio := r.proc.Parameters().PitchRatio
	ratioAt := func(pos int) float64 {
		if frames == 0 {
			return startRatio
		}
		return startRatio + (r.sweepTo-startRatio)*float64(pos)/float64(frames)
	}

	var (
		position  atomic.Int64
		wg        sync.WaitGroup
		ticker    *time.Ticker
		stopSweep = make(chan struct{})
	)
	blockDur := time.Duration(float64(r.blockSize) / float64(in.SampleRate) * float64(time.Second))
	sweepAsync := r.sweepTo > 0 && r.realtime

	if r.realtime {
		ticker = time.NewTicker(blockDur)
		defer ticker.Stop()
	}
	if sweepAsync {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := time.NewTicker(sweepInterval)
			defer t.Stop()
			for {
				select {
				case <-stopSweep:
					return
				case <-t.C:
					r.proc.SetPitchShiftRatio(ratioAt(int(position.Load())))
				}
			}
		}()
	}
	defer func() {
		close(stopSweep)
		wg.Wait()
	}()

	block := make([][]float64, len(out.Channels))
	for pos := 0; pos < frames; pos += r.blockSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render interrupted at frame %d: %w", pos, err)
		}

		end := min(pos+r.blockSize, frames)
		for ch := range block {
			block[ch] = out.Channels[ch][pos:end]
		}
		if r.sweepTo > 0 && !sweepAsync {
			r.proc.SetPitchShiftRatio(ratioAt(pos))
		}

		r.proc.Process(block, nil)
		position.Store(int64(end))

		if ticker != nil {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("render interrupted at frame %d: %w", end, ctx.Err())
			case <-ticker.C:
			}
		}
	}

	st := r.proc.Stats()
	r.log.Debug().
		Uint64("blocks", st.Blocks).
		Uint64("samples", st.Samples).
		Uint64("truncated", st.Truncated).
		Msg("render finished")
	return out, nil
}
