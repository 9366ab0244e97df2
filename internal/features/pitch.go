package features

import (
	"math"
	"sort"
)

// Pitch estimation constants. minHz/maxHz bound the search range; a 400-sample
// analysis window at 16 kHz can only resolve periods up to half its length,
// which puts a practical floor around 80 Hz — comfortably below the singing
// and speech ranges the reference clips in this pipeline are drawn from.
const (
	pitchMinHz    = 80.0
	pitchMaxHz    = 1000.0
	yinThreshold  = 0.15
	smoothTapSize = 5
)

// yinFrame runs the YIN difference-function pitch estimator on one raw
// (unwindowed) analysis frame, following Cheveigné & Kawahara's algorithm:
// a squared-difference function, its cumulative-mean normalization, and an
// absolute-threshold + parabolic-interpolation search for the first
// confident period.
func yinFrame(raw []float64, sampleRate int) (f0 float64, voiced bool) {
	n := len(raw)
	maxLag := n / 2
	minLag := int(float64(sampleRate) / pitchMaxHz)
	maxLagFromHz := int(float64(sampleRate) / pitchMinHz)
	if maxLagFromHz < maxLag {
		maxLag = maxLagFromHz
	}
	if minLag < 1 {
		minLag = 1
	}
	if maxLag <= minLag {
		return 0, false
	}

	diff := make([]float64, maxLag+1)
	for tau := 1; tau <= maxLag; tau++ {
		var sum float64
		for j := 0; j+tau < n; j++ {
			d := raw[j] - raw[j+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	cmndf := make([]float64, maxLag+1)
	cmndf[0] = 1
	var running float64
	for tau := 1; tau <= maxLag; tau++ {
		running += diff[tau]
		if running == 0 {
			cmndf[tau] = 1
			continue
		}
		cmndf[tau] = diff[tau] * float64(tau) / running
	}

	tau := -1
	for t := minLag; t <= maxLag; t++ {
		if cmndf[t] < yinThreshold {
			for t+1 <= maxLag && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau == -1 {
		return 0, false
	}

	refined := parabolicRefine(cmndf, tau)
	if refined <= 0 {
		return 0, false
	}
	return float64(sampleRate) / refined, true
}

// parabolicRefine interpolates the true minimum location around tau using
// its immediate neighbors in the CMNDF curve.
func parabolicRefine(cmndf []float64, tau int) float64 {
	if tau <= 0 || tau >= len(cmndf)-1 {
		return float64(tau)
	}
	s0, s1, s2 := cmndf[tau-1], cmndf[tau], cmndf[tau+1]
	denom := s0 - 2*s1 + s2
	if denom == 0 {
		return float64(tau)
	}
	shift := 0.5 * (s0 - s2) / denom
	return float64(tau) + shift
}

// pitchContour estimates F0 per frame, converts voiced frames to a semitone
// offset from the clip's median voiced F0, fills unvoiced gaps by
// last-observation-carried-forward (backfilling any leading gap from the
// first voiced value), and smooths with a centered 5-tap moving average.
func pitchContour(frames []frame, sampleRate int) ([]float32, []bool) {
	f0s := make([]float64, len(frames))
	voiced := make([]bool, len(frames))
	for i, fr := range frames {
		f0, v := yinFrame(fr.raw, sampleRate)
		f0s[i] = f0
		voiced[i] = v
	}

	median := medianVoiced(f0s, voiced)
	contour := make([]float64, len(frames))
	haveMedian := median > 0
	for i := range contour {
		if voiced[i] && haveMedian {
			contour[i] = 12 * math.Log2(f0s[i]/median)
		} else {
			contour[i] = nanMarker
		}
	}

	fillGaps(contour)
	smoothed := movingAverage(contour, smoothTapSize)

	out := make([]float32, len(smoothed))
	for i, v := range smoothed {
		out[i] = float32(v)
	}
	return out, voiced
}

const nanMarker = -1e18

func medianVoiced(f0s []float64, voiced []bool) float64 {
	var vals []float64
	for i, v := range voiced {
		if v && f0s[i] > 0 {
			vals = append(vals, f0s[i])
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

func fillGaps(contour []float64) {
	if len(contour) == 0 {
		return
	}
	last := nanMarker
	for i := range contour {
		if contour[i] != nanMarker {
			last = contour[i]
		} else if last != nanMarker {
			contour[i] = last
		}
	}
	// backfill any leading gap with the first observed value.
	firstVal := nanMarker
	for _, v := range contour {
		if v != nanMarker {
			firstVal = v
			break
		}
	}
	if firstVal == nanMarker {
		for i := range contour {
			contour[i] = 0
		}
		return
	}
	for i := range contour {
		if contour[i] == nanMarker {
			contour[i] = firstVal
		}
	}
}

func movingAverage(x []float64, tap int) []float64 {
	half := tap / 2
	out := make([]float64, len(x))
	for i := range x {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi >= len(x) {
			hi = len(x) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
