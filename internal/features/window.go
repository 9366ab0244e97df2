// Package features implements the real-time feature extractor: mel
// spectrogram, spectral flux, frame energy, MFCC + Δ + ΔΔ, and a smoothed
// semitone-normalized pitch contour, all frame-normalized to zero mean and
// unit variance (pitch excepted). The STFT plumbing here is grounded on the
// acoustic fingerprinting service's spectrogram package, generalized from a
// Hamming window to the spec's Hann window and from a fingerprinting-sized
// FFT to the frame geometry spec.md requires (25 ms window, 10 ms hop, FFT
// size = next power of two >= window length).
package features

import "math"

// Hann returns an n-point Hann window.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
