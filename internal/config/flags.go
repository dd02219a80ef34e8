package config

import (
	"github.com/spf13/pflag"
)

// AddFlags binds command line flags to c. Current field values become the
// flag defaults, so flags only override what the user passes.
func (c *Config) AddFlags(fs *pflag.FlagSet) *Config {
	fs.StringVarP(&c.Input, "in", "i", c.Input, "input audio file (.wav or .mp3)")
	fs.StringVarP(&c.Output, "out", "o", c.Output, "output WAV file")
	fs.IntVar(&c.BlockSize, "block", c.BlockSize, "host block size in samples")
	fs.IntVar(&c.BitDepth, "bit-depth", c.BitDepth, "output bit depth (16, 24 or 32)")

	fs.Float64Var(&c.Pitch, "pitch", c.Pitch, "pitch shift ratio")
	fs.Float64Var(&c.SweepTo, "sweep-to", c.SweepTo, "sweep the pitch ratio to this value over the file (0 disables)")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "output volume")
	fs.StringVar(&c.VolumeDB, "volume-db", c.VolumeDB, "output volume in dB, overrides --volume")
	fs.Float64Var(&c.Chorus.CentreDelayMs, "centre-delay", c.Chorus.CentreDelayMs, "chorus centre delay in ms")
	fs.Float64Var(&c.Chorus.Depth, "depth", c.Chorus.Depth, "chorus depth [0,1]")
	fs.Float64Var(&c.Chorus.Feedback, "feedback", c.Chorus.Feedback, "chorus feedback")
	fs.Float64Var(&c.Chorus.Mix, "mix", c.Chorus.Mix, "chorus wet mix [0,1]")
	fs.Float64Var(&c.Chorus.RateHz, "rate", c.Chorus.RateHz, "chorus LFO rate in Hz")
	fs.BoolVar(&c.Chorus.Bypass, "no-chorus", c.Chorus.Bypass, "bypass the chorus stage")
	fs.StringVar(&c.Topology, "topology", c.Topology, "stage topology: resample-chorus-gain or resample-gain")
	fs.BoolVar(&c.ResetCursor, "reset-cursor", c.ResetCursor, "restart the resampler cursor every block")

	fs.BoolVar(&c.Realtime, "realtime", c.Realtime, "pace blocks at the audio rate")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "serve Prometheus metrics on this address")
	fs.StringVar(&c.StateIn, "state-in", c.StateIn, "load processor state from this file")
	fs.StringVar(&c.StateOut, "state-out", c.StateOut, "save processor state to this file")
	fs.BoolVar(&c.Analyze, "analyze", c.Analyze, "report dominant input and output frequency")

	fs.BoolVarP(&c.Debug, "debug", "d", c.Debug, "debug logging")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: console or json")
	return c
}

// Resolve loads the config file named by --config/-c in args (or the
// default search path), then applies the remaining flags on top.
func Resolve(name string, args []string) (*Config, error) {
	var path string
	pre := pflag.NewFlagSet(name, pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	pre.StringVarP(&path, "config", "c", "", "")
	pre.BoolP("help", "h", false, "")
	_ = pre.Parse(args)

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", path, "config file (default: ./"+FileName+")")
	cfg.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
