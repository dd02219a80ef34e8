package pipeline

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/pitchchorus/dsp/core"
	"github.com/cwbudde/pitchchorus/dsp/resample"
	"github.com/cwbudde/pitchchorus/internal/testutil"
)

func preparedProcessor(t *testing.T, sampleRate float64, maxBlock, channels int, opts ...Option) *Processor {
	t.Helper()
	p := New(opts...)
	if err := p.Prepare(sampleRate, maxBlock, channels); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return p
}

func TestProcessConstantBlockHalfVolume(t *testing.T) {
	p := preparedProcessor(t, 44100, 512, 2)
	p.SetPitchShiftRatio(1)
	p.SetVolume(0.5)

	block := testutil.Planar(testutil.DC(1, 512), testutil.DC(-1, 512))
	p.Process(block, nil)

	testutil.RequireSliceNearlyEqual(t, block[0], testutil.DC(0.5, 512), 0)
	testutil.RequireSliceNearlyEqual(t, block[1], testutil.DC(-0.5, 512), 0)
}

func TestProcessPitchWrap(t *testing.T) {
	p := preparedProcessor(t, 44100, 4, 1, WithCursorMode(resample.CursorResetPerBlock))
	p.SetChorusBypass(true)
	p.SetPitchShiftRatio(2)

	block := [][]float64{{0, 1, 2, 3}}
	p.Process(block, nil)

	testutil.RequireSliceNearlyEqual(t, block[0], []float64{0, 2, 0, 2}, 0)
}

func TestProcessResampleGainTopologyIgnoresChorus(t *testing.T) {
	p := preparedProcessor(t, 48000, 64, 1, WithTopology(TopologyResampleGain))
	p.SetChorusBypass(false)
	p.SetVolume(2)

	in := testutil.DeterministicNoise(3, 0.5, 64)
	block := [][]float64{append([]float64(nil), in...)}
	p.Process(block, nil)

	want := make([]float64, len(in))
	for i, v := range in {
		want[i] = 2 * v
	}
	testutil.RequireSliceNearlyEqual(t, block[0], want, 1e-15)
}

func TestProcessChorusZeroMixIsTransparent(t *testing.T) {
	params := DefaultParameters()
	params.Mix = 0
	params.ChorusBypass = false
	p := preparedProcessor(t, 48000, 128, 2, WithParameters(params))

	src := testutil.Planar(
		testutil.DeterministicSine(440, 48000, 0.7, 128),
		testutil.DeterministicNoise(9, 0.7, 128),
	)
	for i := 0; i < 4; i++ {
		block := testutil.CloneBlock(src)
		p.Process(block, nil)
		testutil.RequireBlockNearlyEqual(t, block, src, 1e-12)
	}
}

func TestProcessChorusChangesSignal(t *testing.T) {
	p := preparedProcessor(t, 48000, 256, 1)
	p.SetChorusBypass(false)

	src := testutil.DeterministicSine(440, 48000, 0.5, 256)
	var changed bool
	for i := 0; i < 8; i++ {
		block := [][]float64{append([]float64(nil), src...)}
		p.Process(block, nil)
		testutil.RequireFinite(t, block[0])
		if d, _ := testutil.MaxAbsDiff(block[0], src); d > 1e-3 {
			changed = true
		}
	}
	if !changed {
		t.Fatal("chorus at default settings left the signal unchanged")
	}
}

func TestProcessClearsExtraChannels(t *testing.T) {
	p := preparedProcessor(t, 48000, 16, 1)
	p.SetChorusBypass(true)

	block := testutil.Planar(testutil.DC(1, 16), testutil.DC(1, 16), testutil.DC(1, 16))
	p.Process(block, nil)

	testutil.RequireSliceNearlyEqual(t, block[0], testutil.DC(1, 16), 0)
	testutil.RequireSliceNearlyEqual(t, block[1], make([]float64, 16), 0)
	testutil.RequireSliceNearlyEqual(t, block[2], make([]float64, 16), 0)
}

func TestProcessTruncatesOversizedBlock(t *testing.T) {
	p := preparedProcessor(t, 48000, 8, 2)
	p.SetChorusBypass(true)

	in := testutil.Ramp(12)
	block := testutil.Planar(append([]float64(nil), in...), append([]float64(nil), in...))
	p.Process(block, nil)

	want := append(append([]float64(nil), in[:8]...), 0, 0, 0, 0)
	testutil.RequireBlockNearlyEqual(t, block, testutil.Planar(want, want), 0)

	if got := p.Stats().Truncated; got != 1 {
		t.Fatalf("Truncated = %d, want 1", got)
	}
}

func TestProcessRaggedChannelsUseShortest(t *testing.T) {
	p := preparedProcessor(t, 48000, 16, 2)
	p.SetChorusBypass(true)

	block := testutil.Planar(testutil.DC(1, 6), testutil.DC(1, 4))
	p.Process(block, nil)

	testutil.RequireSliceNearlyEqual(t, block[0], []float64{1, 1, 1, 1, 0, 0}, 0)
	testutil.RequireSliceNearlyEqual(t, block[1], []float64{1, 1, 1, 1}, 0)
	if got := p.Stats(); got.Truncated != 1 || got.Samples != 4 {
		t.Fatalf("Stats = %+v, want Truncated=1 Samples=4", got)
	}
}

func TestProcessEmptyBlocks(t *testing.T) {
	p := preparedProcessor(t, 48000, 16, 2)

	p.Process(nil, nil)
	p.Process([][]float64{}, nil)
	p.Process([][]float64{{}, {}}, nil)

	if got := p.Stats(); got.Blocks != 0 || got.Samples != 0 {
		t.Fatalf("Stats = %+v, want no processed blocks", got)
	}
}

func TestProcessUnpreparedOutputsSilence(t *testing.T) {
	p := New()
	block := testutil.Planar(testutil.DC(1, 32), testutil.DC(-1, 32))
	p.Process(block, "ignored events")

	testutil.RequireBlockNearlyEqual(t, block, testutil.Planar(make([]float64, 32), make([]float64, 32)), 0)
	if got := p.Stats().Unprepared; got != 1 {
		t.Fatalf("Unprepared = %d, want 1", got)
	}

	p = preparedProcessor(t, 48000, 32, 2)
	p.Release()
	p.Release()
	block = testutil.Planar(testutil.DC(1, 32), testutil.DC(-1, 32))
	p.Process(block, nil)
	if block[0][0] != 0 || block[1][31] != 0 {
		t.Fatal("released processor must output silence")
	}
	if _, ok := p.Spec(); ok {
		t.Fatal("Spec() reported a prepared state after Release")
	}
}

func TestPrepareValidation(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		maxBlock   int
		channels   int
		want       error
	}{
		{"zero rate", 0, 512, 2, core.ErrInvalidSampleRate},
		{"nan rate", math.NaN(), 512, 2, core.ErrInvalidSampleRate},
		{"inf rate", math.Inf(1), 512, 2, core.ErrInvalidSampleRate},
		{"zero block", 48000, 0, 2, core.ErrInvalidBlockSize},
		{"zero channels", 48000, 512, 0, core.ErrInvalidChannelCount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New()
			err := p.Prepare(tc.sampleRate, tc.maxBlock, tc.channels)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Prepare() error = %v, want %v", err, tc.want)
			}
			if _, ok := p.Spec(); ok {
				t.Fatal("failed Prepare left a prepared state")
			}
		})
	}
}

func TestFailedPrepareKeepsPreviousState(t *testing.T) {
	p := preparedProcessor(t, 44100, 64, 2)
	if err := p.Prepare(-1, 64, 2); err == nil {
		t.Fatal("Prepare(-1, ...) succeeded")
	}

	spec, ok := p.Spec()
	if !ok || spec.SampleRate != 44100 || spec.NumChannels != 2 {
		t.Fatalf("Spec() = %+v, %v, want previous 44100 Hz stereo", spec, ok)
	}
}

func TestRePrepareResizes(t *testing.T) {
	p := preparedProcessor(t, 44100, 32, 1)
	p.SetChorusBypass(true)

	if err := p.Prepare(96000, 128, 2); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	block := testutil.Planar(testutil.DC(0.25, 128), testutil.DC(-0.25, 128))
	p.Process(block, nil)

	testutil.RequireSliceNearlyEqual(t, block[1], testutil.DC(-0.25, 128), 0)
	if got := p.Stats().Prepares; got != 2 {
		t.Fatalf("Prepares = %d, want 2", got)
	}
}

func TestResetRestartsCursor(t *testing.T) {
	p := preparedProcessor(t, 48000, 4, 1)
	p.SetChorusBypass(true)
	p.SetPitchShiftRatio(0.75)

	block := [][]float64{testutil.Ramp(4)}
	p.Process(block, nil)
	testutil.RequireSliceNearlyEqual(t, block[0], []float64{0, 0.75, 1.5, 2.25}, 0)

	// The cursor carries over and wraps inside the second block.
	block = [][]float64{testutil.Ramp(4)}
	p.Process(block, nil)
	testutil.RequireSliceNearlyEqual(t, block[0], []float64{3, 3, 0.5, 1.25}, 0)

	p.Reset()
	block = [][]float64{testutil.Ramp(4)}
	p.Process(block, nil)
	testutil.RequireSliceNearlyEqual(t, block[0], []float64{0, 0.75, 1.5, 2.25}, 0)
}

func TestParameterClamping(t *testing.T) {
	p := New()

	p.SetPitchShiftRatio(-2)
	p.SetVolume(100)
	p.SetChorusParameters(500, 3, -4, math.NaN())
	p.SetChorusRate(-1)

	got := p.Parameters()
	if got.PitchRatio != 0 {
		t.Fatalf("PitchRatio = %g, want 0", got.PitchRatio)
	}
	if got.Volume != 4 {
		t.Fatalf("Volume = %g, want 4", got.Volume)
	}
	if got.CentreDelayMs != 100 || got.Mix != 1 || got.Feedback != -0.95 {
		t.Fatalf("chorus params = %+v, want clamped centre/mix/feedback", got)
	}
	if got.Depth != DefaultParameters().Depth {
		t.Fatalf("Depth = %g, NaN must leave it unchanged", got.Depth)
	}
	if got.RateHz != 0 {
		t.Fatalf("RateHz = %g, want 0", got.RateHz)
	}

	p.SetPitchShiftSemitones(12)
	if got := p.Parameters().PitchRatio; math.Abs(got-2) > 1e-12 {
		t.Fatalf("PitchRatio after +12 st = %g, want 2", got)
	}
}

func TestConcurrentParameterUpdates(t *testing.T) {
	p := preparedProcessor(t, 48000, 128, 2)
	src := testutil.Planar(
		testutil.DeterministicSine(220, 48000, 0.5, 128),
		testutil.DeterministicSine(330, 48000, 0.5, 128),
	)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			v := float64(i%100) / 100
			p.SetPitchShiftRatio(0.5 + v)
			p.SetVolume(v)
			p.SetChorusParameters(10+v*20, v, v-0.5, v)
			p.SetChorusBypass(i%7 == 0)
		}
	}()

	for i := 0; i < 200; i++ {
		block := testutil.CloneBlock(src)
		p.Process(block, nil)
		for _, ch := range block {
			testutil.RequireFinite(t, ch)
		}
	}
	close(stop)
	wg.Wait()
}

func TestProcessZeroAllocs(t *testing.T) {
	p := preparedProcessor(t, 48000, 256, 2)
	p.SetPitchShiftRatio(1.3)
	p.SetChorusBypass(false)
	block := testutil.Planar(
		testutil.DeterministicNoise(1, 0.5, 256),
		testutil.DeterministicNoise(2, 0.5, 256),
	)

	allocs := testing.AllocsPerRun(100, func() {
		p.Process(block, nil)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %.1f times per call, want 0", allocs)
	}
}

func TestLatencyAndTail(t *testing.T) {
	p := New()
	if p.LatencySamples() != 0 || p.TailLengthSeconds() != 0 {
		t.Fatalf("latency=%d tail=%g, want 0 and 0", p.LatencySamples(), p.TailLengthSeconds())
	}
	if !p.Parameters().ChorusBypass {
		t.Fatal("chorus must start bypassed")
	}
	if p.Topology() != TopologyResampleChorusGain || p.CursorMode() != resample.CursorContinuous {
		t.Fatalf("defaults = %v/%v", p.Topology(), p.CursorMode())
	}
}

func TestParseTopology(t *testing.T) {
	for _, topo := range []Topology{TopologyResampleChorusGain, TopologyResampleGain} {
		got, err := ParseTopology(topo.String())
		if err != nil || got != topo {
			t.Fatalf("ParseTopology(%q) = %v, %v", topo.String(), got, err)
		}
	}
	if _, err := ParseTopology("chorus-only"); err == nil {
		t.Fatal("ParseTopology accepted an unknown name")
	}
}
