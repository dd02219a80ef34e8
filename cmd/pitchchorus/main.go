// Command pitchchorus renders an audio file through the pitch-shift and
// chorus pipeline, feeding it in host-sized blocks.
//
// Usage:
//
//	pitchchorus --in in.wav --out out.wav [flags]
//
// Settings are read from pitchchorus.yaml (or --config), then from
// PITCHCHORUS_* environment variables, then from flags.
//
// Examples:
//
//	pitchchorus --in voice.wav --out up.wav --pitch 1.5
//	pitchchorus --in loop.mp3 --out dry.wav --no-chorus --volume 0.8
//	pitchchorus --in tone.wav --out sweep.wav --pitch 1 --sweep-to 2 --realtime --metrics-addr :9100
//	pitchchorus --in tone.wav --analyze --pitch 2
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/cwbudde/pitchchorus/dsp/pipeline"
	"github.com/cwbudde/pitchchorus/internal/audiofile"
	"github.com/cwbudde/pitchchorus/internal/config"
	"github.com/cwbudde/pitchchorus/internal/logging"
	"github.com/cwbudde/pitchchorus/internal/monitoring"
	"github.com/cwbudde/pitchchorus/measure/pitch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one render job and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := config.Resolve("pitchchorus", args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "pitchchorus: %v\n", err)
		return 2
	}

	session := uuid.New()
	log := logging.New(logging.Options{
		Debug:  cfg.Debug,
		Format: logging.ParseFormat(cfg.LogFormat),
		Tag:    "pitchchorus",
		Out:    stderr,
	}).With().Str("session", session.String()).Logger()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("bad configuration")
		return 2
	}

	if err := render(ctx, cfg, session, log); err != nil {
		log.Error().Err(err).Msg("render failed")
		return 1
	}
	return 0
}

func render(ctx context.Context, cfg *config.Config, session uuid.UUID, log zerolog.Logger) error {
	proc := pipeline.New(
		pipeline.WithLogger(log),
		pipeline.WithCursorMode(cfg.CursorMode()),
		pipeline.WithTopology(cfg.PipelineTopology()),
		pipeline.WithParameters(cfg.Parameters()),
	)

	if cfg.StateIn != "" {
		data, err := os.ReadFile(cfg.StateIn)
		if err != nil {
			return fmt.Errorf("read state: %w", err)
		}
		if err := proc.DeserializeState(data); err != nil {
			return err
		}
	}

	if cfg.MetricsAddr != "" {
		srv, err := startMetrics(cfg.MetricsAddr, proc, session, log)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("metrics shutdown")
			}
		}()
	}

	in, err := audiofile.ReadFile(cfg.Input)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", cfg.Input).
		Int("sample_rate", in.SampleRate).
		Int("channels", in.NumChannels()).
		Dur("duration", in.Duration()).
		Msg("input loaded")

	r := &renderer{
		proc:      proc,
		blockSize: cfg.BlockSize,
		realtime:  cfg.Realtime,
		sweepTo:   cfg.SweepTo,
		log:       log,
	}
	start := time.Now()
	out, err := r.render(ctx, in)
	if err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Uint64("blocks", proc.Stats().Blocks).Msg("rendered")

	if cfg.Analyze {
		report(log, in, out)
	}

	if cfg.Output != "" {
		if err := audiofile.WriteWAV(cfg.Output, out, cfg.BitDepth); err != nil {
			return err
		}
		log.Info().Str("file", cfg.Output).Int("bit_depth", cfg.BitDepth).Msg("output written")
	}

	if cfg.StateOut != "" {
		data, err := proc.SerializeState()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.StateOut, data, 0o644); err != nil {
			return fmt.Errorf("write state: %w", err)
		}
	}
	return nil
}

func startMetrics(addr string, proc *pipeline.Processor, session uuid.UUID, log zerolog.Logger) (*monitoring.Server, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(monitoring.NewCollector(proc, prometheus.Labels{"session": session.String()})); err != nil {
		return nil, err
	}
	srv := monitoring.NewServer(addr, reg, log)
	if err := srv.Run(); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return srv, nil
}

// report logs the dominant frequency of the first channel before and after
// processing.
func report(log zerolog.Logger, in, out *audiofile.Audio) {
	rate := float64(in.SampleRate)
	inHz, err := pitch.DominantFrequency(in.Channels[0], rate)
	if err != nil {
		log.Warn().Err(err).Msg("analyse input")
		return
	}
	outHz, err := pitch.DominantFrequency(out.Channels[0], rate)
	if err != nil {
		log.Warn().Err(err).Msg("analyse output")
		return
	}

	log.Info().
		Float64("input_hz", inHz).
		Float64("output_hz", outHz).
		Float64("ratio", outHz/inHz).
		Float64("output_peak", peak(out.Channels)).
		Msg("analysis")
}

func peak(chans [][]float64) float64 {
	var p float64
	for _, ch := range chans {
		for _, v := range ch {
			if v < 0 {
				v = -v
			}
			if v > p {
				p = v
			}
		}
	}
	return p
}
