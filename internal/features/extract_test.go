package features

import (
	"math"
	"testing"

	"github.com/flowalyzer/pronunciation/internal/types"
)

const testSampleRate = 16000

func sineWave(freqHz float64, seconds float64) []float32 {
	n := int(float64(testSampleRate) * seconds)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(testSampleRate)
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freqHz*t))
	}
	return out
}

// amSine is a sine tone under a slow 2 Hz amplitude envelope, so that frame
// energy varies over the clip. A steady 440 Hz tone fits exactly 11 periods
// in every 25 ms window, which makes its energy stream constant.
func amSine(freqHz float64, seconds float64) []float32 {
	n := int(float64(testSampleRate) * seconds)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(testSampleRate)
		env := 0.5 * (1 + math.Sin(2*math.Pi*2*t))
		out[i] = float32(0.5 * env * math.Sin(2*math.Pi*freqHz*t))
	}
	return out
}

func TestExtractRejectsEmptyBuffer(t *testing.T) {
	if _, err := Extract(nil, testSampleRate); err == nil {
		t.Fatal("expected an error for an empty buffer")
	}
}

func TestExtractRejectsShortBuffer(t *testing.T) {
	samples := make([]float32, 10)
	if _, err := Extract(samples, testSampleRate); err == nil {
		t.Fatal("expected an error for a buffer shorter than one analysis window")
	}
}

func TestExtractRejectsNonFinite(t *testing.T) {
	samples := sineWave(220, 0.5)
	samples[100] = float32(math.NaN())
	if _, err := Extract(samples, testSampleRate); err == nil {
		t.Fatal("expected an error for a non-finite sample")
	}
}

func TestExtractFrameCount(t *testing.T) {
	samples := sineWave(220, 1.0)
	bundle, err := Extract(samples, testSampleRate)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	windowLen := testSampleRate * types.FrameWindowMs / 1000
	hopLen := testSampleRate * types.FrameHopMs / 1000
	expected := (len(samples)-windowLen)/hopLen + 1

	if bundle.Frames() != expected {
		t.Errorf("expected %d frames, got %d", expected, bundle.Frames())
	}
	if len(bundle.Mel) != bundle.Frames() || len(bundle.Mel[0]) != types.NumMelBands {
		t.Errorf("mel shape mismatch: %d frames, %d bands", len(bundle.Mel), len(bundle.Mel[0]))
	}
	if len(bundle.MFCC[0]) != types.NumMFCC {
		t.Errorf("expected %d MFCC coefficients, got %d", types.NumMFCC, len(bundle.MFCC[0]))
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	samples := sineWave(330, 0.75)
	a, err := Extract(samples, testSampleRate)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	b, err := Extract(samples, testSampleRate)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for i := range a.Energy {
		if a.Energy[i] != b.Energy[i] {
			t.Fatalf("energy stream diverged at frame %d: %f vs %f", i, a.Energy[i], b.Energy[i])
		}
	}
	for i := range a.PitchContour {
		if a.PitchContour[i] != b.PitchContour[i] {
			t.Fatalf("pitch contour diverged at frame %d", i)
		}
	}
}

func TestExtractNormalizedStreamsAreZeroMeanUnitVariance(t *testing.T) {
	samples := amSine(440, 1.5)
	bundle, err := Extract(samples, testSampleRate)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	checkVector(t, "energy", bundle.Energy)
	checkVector(t, "flux", bundle.Flux)
	checkColumn(t, "mfcc[0]", bundle.MFCC, 0)
}

func checkVector(t *testing.T, name string, v []float32) {
	t.Helper()
	var mean, variance float64
	for _, x := range v {
		mean += float64(x)
	}
	mean /= float64(len(v))
	for _, x := range v {
		d := float64(x) - mean
		variance += d * d
	}
	variance /= float64(len(v))
	if math.Abs(mean) > 1e-3 {
		t.Errorf("%s: mean %.6f not within tolerance of 0", name, mean)
	}
	if math.Abs(variance-1) > 1e-2 {
		t.Errorf("%s: variance %.6f not within tolerance of 1", name, variance)
	}
}

func checkColumn(t *testing.T, name string, m [][]float32, col int) {
	t.Helper()
	v := make([]float32, len(m))
	for i := range m {
		v[i] = m[i][col]
	}
	checkVector(t, name, v)
}

func TestPitchContourFindsVoicedFramesInSineTone(t *testing.T) {
	samples := sineWave(220, 0.5)
	bundle, err := Extract(samples, testSampleRate)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	voicedCount := 0
	for _, v := range bundle.Voiced {
		if v {
			voicedCount++
		}
	}
	if voicedCount == 0 {
		t.Fatal("expected at least some voiced frames for a clean sine tone")
	}
}

func TestDeltaAtEdgesUsesOneSidedDifference(t *testing.T) {
	feat := [][]float32{{0}, {1}, {2}, {3}, {4}}
	d := delta(feat)
	if d[0][0] != feat[1][0]-feat[0][0] {
		t.Errorf("expected one-sided difference at first frame")
	}
	if d[len(d)-1][0] != feat[len(feat)-1][0]-feat[len(feat)-2][0] {
		t.Errorf("expected one-sided difference at last frame")
	}
}
