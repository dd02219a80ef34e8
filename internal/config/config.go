// Package config loads the render settings of the pitchchorus command from
// a YAML file, PITCHCHORUS_ environment variables and command line flags.
// Flags take precedence over the environment, which takes precedence over
// the file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kkyr/fig"

	"github.com/cwbudde/pitchchorus/dsp/gain"
	"github.com/cwbudde/pitchchorus/dsp/pipeline"
	"github.com/cwbudde/pitchchorus/dsp/resample"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. PITCHCHORUS_BLOCK_SIZE.
	EnvPrefix = "PITCHCHORUS"
	// FileName is the config file searched for when no path is given.
	FileName = "pitchchorus.yaml"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Chorus holds the chorus stage settings.
type Chorus struct {
	CentreDelayMs float64 `fig:"centre_delay_ms" default:"27"`
	Depth         float64 `fig:"depth" default:"0.8"`
	Feedback      float64 `fig:"feedback" default:"0.8"`
	Mix           float64 `fig:"mix" default:"0.8"`
	RateHz        float64 `fig:"rate_hz" default:"1"`
	Bypass        bool    `fig:"bypass"`
}

// Config is a complete render job.
type Config struct {
	Input     string `fig:"input"`
	Output    string `fig:"output"`
	BlockSize int    `fig:"block_size" default:"512"`
	BitDepth  int    `fig:"bit_depth" default:"16"`

	Pitch       float64 `fig:"pitch" default:"1"`
	SweepTo     float64 `fig:"sweep_to"`
	Volume      float64 `fig:"volume" default:"1"`
	// VolumeDB overrides Volume with a gain in dB when set, e.g. "-6".
	VolumeDB    string  `fig:"volume_db"`
	Chorus      Chorus  `fig:"chorus"`
	Topology    string  `fig:"topology" default:"resample-chorus-gain"`
	ResetCursor bool    `fig:"reset_cursor"`

	Realtime    bool   `fig:"realtime"`
	MetricsAddr string `fig:"metrics_addr"`
	StateIn     string `fig:"state_in"`
	StateOut    string `fig:"state_out"`
	Analyze     bool   `fig:"analyze"`

	Debug     bool   `fig:"debug"`
	LogFormat string `fig:"log_format" default:"console"`
}

// Load reads the config file at path, or searches FileName in the working
// directory and the user config directory when path is empty. A missing
// file is not an error when searching; defaults and the environment apply.
func Load(path string) (*Config, error) {
	var cfg Config

	opts := []fig.Option{fig.UseEnv(EnvPrefix)}
	switch {
	case path != "":
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, fig.File(filepath.Base(path)), fig.Dirs(filepath.Dir(path)))
	default:
		if dir, ok := findFile(searchDirs()); ok {
			opts = append(opts, fig.File(FileName), fig.Dirs(dir))
		} else {
			opts = append(opts, fig.IgnoreFile())
		}
	}

	if err := fig.Load(&cfg, opts...); err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	return &cfg, nil
}

func searchDirs() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "pitchchorus"))
	}
	return dirs
}

func findFile(dirs []string) (string, bool) {
	for _, dir := range dirs {
		if st, err := os.Stat(filepath.Join(dir, FileName)); err == nil && !st.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// Validate checks the settings that cannot be clamped.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: no input file", ErrInvalid)
	}
	if c.Output == "" && !c.Analyze {
		return fmt.Errorf("%w: no output file", ErrInvalid)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalid, c.BlockSize)
	}
	switch c.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth %d", ErrInvalid, c.BitDepth)
	}
	if _, err := pipeline.ParseTopology(c.Topology); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, _, err := c.volumeDB(); err != nil {
		return fmt.Errorf("%w: volume dB %q", ErrInvalid, c.VolumeDB)
	}
	return nil
}

func (c *Config) volumeDB() (float64, bool, error) {
	s := strings.TrimSpace(c.VolumeDB)
	if s == "" {
		return 0, false, nil
	}
	db, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(db) {
		return 0, false, fmt.Errorf("parse %q: invalid dB value", s)
	}
	return db, true, nil
}

// Parameters returns the processor parameters described by c. A valid
// VolumeDB takes precedence over Volume.
func (c *Config) Parameters() pipeline.Parameters {
	volume := c.Volume
	if db, ok, err := c.volumeDB(); err == nil && ok {
		volume = gain.FromDecibels(db)
	}
	return pipeline.Parameters{
		PitchRatio:    c.Pitch,
		Volume:        volume,
		CentreDelayMs: c.Chorus.CentreDelayMs,
		Depth:         c.Chorus.Depth,
		Feedback:      c.Chorus.Feedback,
		Mix:           c.Chorus.Mix,
		RateHz:        c.Chorus.RateHz,
		ChorusBypass:  c.Chorus.Bypass,
	}.Clamped()
}

// CursorMode returns the resampler cursor mode.
func (c *Config) CursorMode() resample.CursorMode {
	if c.ResetCursor {
		return resample.CursorResetPerBlock
	}
	return resample.CursorContinuous
}

// PipelineTopology returns the parsed topology, defaulting on error.
func (c *Config) PipelineTopology() pipeline.Topology {
	t, _ := pipeline.ParseTopology(c.Topology)
	return t
}
