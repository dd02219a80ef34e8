package pitch

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/pitchchorus/internal/testutil"
)

func TestNewAnalyzerValidation(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		size       int
		want       error
	}{
		{"zero rate", 0, 1024, ErrInvalidSampleRate},
		{"nan rate", math.NaN(), 1024, ErrInvalidSampleRate},
		{"too small", 48000, 16, ErrInvalidSize},
		{"not pow2", 48000, 1000, ErrInvalidSize},
		{"too large", 48000, MaxSize * 2, ErrInvalidSize},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewAnalyzer(tc.sampleRate, tc.size); !errors.Is(err, tc.want) {
				t.Fatalf("NewAnalyzer() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAnalyzeSine(t *testing.T) {
	const sampleRate = 48000.0

	a, err := NewAnalyzer(sampleRate, 4096)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	for _, freq := range []float64{220, 1000, 3517.3, 12000} {
		sig := testutil.DeterministicSine(freq, sampleRate, 0.5, 8192)
		res, err := a.Analyze(sig)
		if err != nil {
			t.Fatalf("Analyze(%g Hz) error = %v", freq, err)
		}
		if math.Abs(res.Frequency-freq) > 2 {
			t.Fatalf("Analyze(%g Hz) frequency = %g", freq, res.Frequency)
		}
		if math.Abs(res.Amplitude-0.5) > 0.05 {
			t.Fatalf("Analyze(%g Hz) amplitude = %g, want about 0.5", freq, res.Amplitude)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	a, err := NewAnalyzer(48000, 256)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	if _, err := a.Analyze(nil); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("Analyze(nil) error = %v, want ErrEmptySignal", err)
	}
	if _, err := a.Analyze(make([]float64, 512)); !errors.Is(err, ErrNoPeak) {
		t.Fatalf("Analyze(silence) error = %v, want ErrNoPeak", err)
	}
}

func TestAnalyzeShortSignalIsPadded(t *testing.T) {
	a, err := NewAnalyzer(48000, 1024)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	res, err := a.Analyze(testutil.DeterministicSine(6000, 48000, 1, 300))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if math.Abs(res.Frequency-6000) > 6000*0.02 {
		t.Fatalf("frequency = %g, want about 6000", res.Frequency)
	}
}

func TestDominantFrequency(t *testing.T) {
	got, err := DominantFrequency(testutil.DeterministicSine(440, 44100, 0.8, 10000), 44100)
	if err != nil {
		t.Fatalf("DominantFrequency() error = %v", err)
	}
	if math.Abs(got-440) > 2 {
		t.Fatalf("DominantFrequency() = %g, want 440", got)
	}

	if _, err := DominantFrequency(nil, 44100); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("DominantFrequency(nil) error = %v", err)
	}
	if _, err := DominantFrequency([]float64{1}, -1); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("DominantFrequency(rate=-1) error = %v", err)
	}
}

func TestInterpolatePeak(t *testing.T) {
	if off, h := interpolatePeak(1, 2, 1); off != 0 || h != 2 {
		t.Fatalf("symmetric peak = (%g, %g), want (0, 2)", off, h)
	}
	if off, _ := interpolatePeak(1, 2, 1.5); off <= 0 || off >= 0.5 {
		t.Fatalf("right-leaning offset = %g, want in (0, 0.5)", off)
	}
	if off, h := interpolatePeak(0, 2, 1); off != 0 || h != 2 {
		t.Fatalf("zero neighbour = (%g, %g), want (0, 2)", off, h)
	}
}
