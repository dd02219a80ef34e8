package pipeline

import "sync/atomic"

// Stats is a snapshot of processor counters.
type Stats struct {
	// Blocks counts blocks that reached the signal path.
	Blocks uint64
	// Samples counts per-channel samples processed.
	Samples uint64
	// Truncated counts blocks longer than the prepared maximum or ragged
	// across channels.
	Truncated uint64
	// Unprepared counts blocks silenced because no engine was prepared.
	Unprepared uint64
	// Prepares counts successful Prepare calls.
	Prepares uint64
}

type counters struct {
	blocks     atomic.Uint64
	samples    atomic.Uint64
	truncated  atomic.Uint64
	unprepared atomic.Uint64
	prepares   atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Blocks:     c.blocks.Load(),
		Samples:    c.samples.Load(),
		Truncated:  c.truncated.Load(),
		Unprepared: c.unprepared.Load(),
		Prepares:   c.prepares.Load(),
	}
}
