package features

import (
	"fmt"
	"math"

	"github.com/flowalyzer/pronunciation/internal/errs"
	"github.com/flowalyzer/pronunciation/internal/types"
)

// Extract converts a PCM buffer sampled at sampleRate into a FeatureBundle.
// It is pure and deterministic: identical input always yields a
// bit-identical bundle. Normalization uses statistics over the whole buffer,
// so re-extracting a longer buffer can change the values of earlier frames.
func Extract(samples []float32, sampleRate int) (*types.FeatureBundle, error) {
	if len(samples) == 0 {
		return nil, errs.New(errs.FeatureExtractionFailed, "features.Extract", fmt.Errorf("empty sample buffer"))
	}
	if sampleRate <= 0 {
		return nil, errs.New(errs.FeatureExtractionFailed, "features.Extract", fmt.Errorf("invalid sample rate %d", sampleRate))
	}
	for _, s := range samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return nil, errs.New(errs.FeatureExtractionFailed, "features.Extract", fmt.Errorf("non-finite sample in buffer"))
		}
	}

	windowLen := sampleRate * types.FrameWindowMs / 1000
	hopLen := sampleRate * types.FrameHopMs / 1000
	if windowLen < 1 || hopLen < 1 {
		return nil, errs.New(errs.FeatureExtractionFailed, "features.Extract", fmt.Errorf("sample rate %d too low for frame geometry", sampleRate))
	}
	if len(samples) < windowLen {
		return nil, errs.New(errs.FeatureExtractionFailed, "features.Extract", fmt.Errorf("buffer shorter than one analysis window"))
	}
	fftSize := nextPow2(windowLen)
	win := Hann(windowLen)

	frames := frameSignal(samples, windowLen, hopLen, fftSize, win)
	if len(frames) == 0 {
		return nil, errs.New(errs.FeatureExtractionFailed, "features.Extract", fmt.Errorf("no complete analysis frames"))
	}

	fb := newMelFilterbank(types.NumMelBands, fftSize, sampleRate)

	mel := make([][]float32, len(frames))
	energy := make([]float32, len(frames))
	flux := make([]float32, len(frames))
	var prevMag []float64

	for i, fr := range frames {
		mag := magnitudeSpectrum(fr.windowed)
		melEnergies := fb.apply(mag)
		mel[i] = logMel(melEnergies)

		var sumSq float64
		for _, s := range fr.raw {
			sumSq += s * s
		}
		energy[i] = float32(sumSq / float64(len(fr.raw)))

		if prevMag != nil {
			var f float64
			for k := range mag {
				d := mag[k] - prevMag[k]
				if d > 0 {
					f += d
				}
			}
			flux[i] = float32(f)
		}
		prevMag = mag
	}

	mfcc := make([][]float32, len(mel))
	for i, m := range mel {
		mfcc[i] = dctII(m, types.NumMFCC)
	}
	deltas := delta(mfcc)
	deltaDeltas := delta(deltas)

	pitch, voicedFlags := pitchContour(frames, sampleRate)

	normalizeColumns(mel)
	normalizeColumns(mfcc)
	normalizeColumns(deltas)
	normalizeColumns(deltaDeltas)
	normalizeVector(energy)
	normalizeVector(flux)

	return &types.FeatureBundle{
		Mel:          mel,
		Flux:         flux,
		Energy:       energy,
		MFCC:         mfcc,
		Deltas:       deltas,
		DeltaDeltas:  deltaDeltas,
		PitchContour: pitch,
		Voiced:       voicedFlags,
		HopMs:        types.FrameHopMs,
		WindowMs:     types.FrameWindowMs,
	}, nil
}
