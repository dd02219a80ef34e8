// Package monitoring exports processor counters to Prometheus.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/pitchchorus/dsp/pipeline"
)

const namespace = "pitchchorus"

// Source is what the collector reads at scrape time.
type Source interface {
	Stats() pipeline.Stats
	Parameters() pipeline.Parameters
}

// Collector reads a Source on every scrape. It never touches the audio
// thread beyond the atomic loads Source performs.
type Collector struct {
	src Source

	blocks     *prometheus.Desc
	samples    *prometheus.Desc
	truncated  *prometheus.Desc
	unprepared *prometheus.Desc
	prepares   *prometheus.Desc
	pitchRatio *prometheus.Desc
	volume     *prometheus.Desc
	bypass     *prometheus.Desc
}

// NewCollector returns a collector for src. labels are attached to every
// metric, typically the render session id.
func NewCollector(src Source, labels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, labels)
	}
	return &Collector{
		src:        src,
		blocks:     desc("blocks_total", "Blocks run through the signal path."),
		samples:    desc("samples_total", "Per-channel samples processed."),
		truncated:  desc("truncated_blocks_total", "Blocks that exceeded the prepared size or had ragged channels."),
		unprepared: desc("unprepared_blocks_total", "Blocks silenced because the processor was not prepared."),
		prepares:   desc("prepares_total", "Successful Prepare calls."),
		pitchRatio: desc("pitch_ratio", "Current pitch shift ratio."),
		volume:     desc("volume", "Current output volume."),
		bypass:     desc("chorus_bypass", "1 when the chorus stage is bypassed."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.blocks
	ch <- c.samples
	ch <- c.truncated
	ch <- c.unprepared
	ch <- c.prepares
	ch <- c.pitchRatio
	ch <- c.volume
	ch <- c.bypass
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()
	params := c.src.Parameters()

	ch <- prometheus.MustNewConstMetric(c.blocks, prometheus.CounterValue, float64(st.Blocks))
	ch <- prometheus.MustNewConstMetric(c.samples, prometheus.CounterValue, float64(st.Samples))
	ch <- prometheus.MustNewConstMetric(c.truncated, prometheus.CounterValue, float64(st.Truncated))
	ch <- prometheus.MustNewConstMetric(c.unprepared, prometheus.CounterValue, float64(st.Unprepared))
	ch <- prometheus.MustNewConstMetric(c.prepares, prometheus.CounterValue, float64(st.Prepares))
	ch <- prometheus.MustNewConstMetric(c.pitchRatio, prometheus.GaugeValue, params.PitchRatio)
	ch <- prometheus.MustNewConstMetric(c.volume, prometheus.GaugeValue, params.Volume)

	bypass := 0.0
	if params.ChorusBypass {
		bypass = 1
	}
	ch <- prometheus.MustNewConstMetric(c.bypass, prometheus.GaugeValue, bypass)
}
