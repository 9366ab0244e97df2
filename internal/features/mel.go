package features

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// frame is one windowed analysis frame: raw time-domain samples (unwindowed,
// for energy/pitch) alongside the Hann-windowed, zero-padded FFT input.
type frame struct {
	raw      []float64
	windowed []float64
}

// frameSignal slices samples into overlapping analysis frames using the
// spec's fixed geometry (25 ms window, 10 ms hop at 16 kHz => 400/160
// samples). fftSize is the next power of two >= window length.
func frameSignal(samples []float32, windowLen, hopLen, fftSize int, win []float64) []frame {
	var frames []frame
	for start := 0; start+windowLen <= len(samples); start += hopLen {
		raw := make([]float64, windowLen)
		windowed := make([]float64, fftSize)
		for i := 0; i < windowLen; i++ {
			v := float64(samples[start+i])
			raw[i] = v
			windowed[i] = v * win[i]
		}
		frames = append(frames, frame{raw: raw, windowed: windowed})
	}
	return frames
}

// magnitudeSpectrum returns the one-sided magnitude spectrum (fftSize/2+1
// bins, including Nyquist) of a zero-padded, windowed frame.
func magnitudeSpectrum(windowed []float64) []float64 {
	spectrum := fft.FFTReal(windowed)
	n := len(windowed)
	bins := n/2 + 1
	mag := make([]float64, bins)
	for k := 0; k < bins; k++ {
		mag[k] = cmplx.Abs(spectrum[k])
	}
	return mag
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds a triangular mel filterbank spanning [0, sampleRate/2]
// evaluated directly against bin center frequencies, following the standard
// construction used by the acoustic fingerprinting service's spectrogram
// package (generalized there for a fixed band count to this package's
// spec-mandated NumMelBands).
type melFilterbank struct {
	weights  [][]float64 // NumMelBands x bins
	binFreqs []float64
}

func newMelFilterbank(numFilters, fftSize, sampleRate int) *melFilterbank {
	bins := fftSize/2 + 1
	binFreqs := make([]float64, bins)
	for k := 0; k < bins; k++ {
		binFreqs[k] = float64(k) * float64(sampleRate) / float64(fftSize)
	}

	nyquist := float64(sampleRate) / 2
	melLow := hzToMel(0)
	melHigh := hzToMel(nyquist)
	points := numFilters + 2
	hzPoints := make([]float64, points)
	for i := 0; i < points; i++ {
		mel := melLow + (melHigh-melLow)*float64(i)/float64(points-1)
		hzPoints[i] = melToHz(mel)
	}

	weights := make([][]float64, numFilters)
	for m := 0; m < numFilters; m++ {
		left, center, right := hzPoints[m], hzPoints[m+1], hzPoints[m+2]
		row := make([]float64, bins)
		for k, f := range binFreqs {
			switch {
			case f < left || f > right:
				row[k] = 0
			case f <= center:
				if center > left {
					row[k] = (f - left) / (center - left)
				}
			default:
				if right > center {
					row[k] = (right - f) / (right - center)
				}
			}
		}
		weights[m] = row
	}
	return &melFilterbank{weights: weights, binFreqs: binFreqs}
}

func (fb *melFilterbank) apply(mag []float64) []float64 {
	out := make([]float64, len(fb.weights))
	for m, row := range fb.weights {
		var sum float64
		for k, w := range row {
			if w == 0 {
				continue
			}
			sum += w * mag[k]
		}
		out[m] = sum
	}
	return out
}

const melLogFloor = 1e-10

func logMel(energies []float64) []float32 {
	out := make([]float32, len(energies))
	for i, e := range energies {
		out[i] = float32(math.Log(e + melLogFloor))
	}
	return out
}
