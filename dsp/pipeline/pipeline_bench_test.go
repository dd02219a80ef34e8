package pipeline

import (
	"fmt"
	"testing"

	"github.com/cwbudde/pitchchorus/internal/testutil"
)

func BenchmarkProcess(b *testing.B) {
	for _, topo := range []Topology{TopologyResampleChorusGain, TopologyResampleGain} {
		for _, n := range []int{64, 512} {
			b.Run(fmt.Sprintf("%s/%d", topo, n), func(b *testing.B) {
				p := New(WithTopology(topo))
				if err := p.Prepare(48000, n, 2); err != nil {
					b.Fatal(err)
				}
				p.SetPitchShiftRatio(1.25)
				p.SetChorusBypass(false)
				block := testutil.Planar(
					testutil.DeterministicNoise(1, 0.5, n),
					testutil.DeterministicNoise(2, 0.5, n),
				)

				b.ReportAllocs()
				b.SetBytes(int64(2 * n * 8))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					p.Process(block, nil)
				}
			})
		}
	}
}
