package wav

import (
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	goaudiowav "github.com/go-audio/wav"

	"github.com/flowalyzer/pronunciation/internal/errs"
	"github.com/flowalyzer/pronunciation/internal/types"
)

// Load decodes path into a mono, [-1,1]-normalized, 16 kHz RecordedClip. It
// tries the raw chunk scanner first (fast path for canonical 16-bit PCM WAV)
// and falls back to the go-audio decoder for extended fmt layouts.
func Load(path string) (*types.RecordedClip, error) {
	samples, sampleRate, err := readRawPCM(path)
	if err != nil {
		samples, sampleRate, err = readWithGoAudio(path)
		if err != nil {
			return nil, errs.New(errs.ReferenceUnavailable, "wav.Load", err)
		}
	}
	if len(samples) == 0 {
		return nil, errs.New(errs.ReferenceUnavailable, "wav.Load", fmt.Errorf("%s decoded to zero samples", path))
	}

	if sampleRate != types.SampleRate {
		samples = resampleLinear(samples, sampleRate, types.SampleRate)
	}

	return &types.RecordedClip{
		Samples:    samples,
		SampleRate: types.SampleRate,
		Channels:   1,
		CapturedAt: time.Now(),
	}, nil
}

func readWithGoAudio(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := goaudiowav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding WAV via go-audio: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, 0, fmt.Errorf("%s has no usable audio format", path)
	}

	floatBuf := buf.AsFloatBuffer()
	samples := downmixToMono(floatBuf, buf.Format.NumChannels)
	return samples, buf.Format.SampleRate, nil
}

func downmixToMono(buf *goaudio.FloatBuffer, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(buf.Data))
		for i, v := range buf.Data {
			out[i] = float32(v)
		}
		return out
	}
	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c]
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// resampleLinear resamples samples from srcRate to dstRate via linear
// interpolation, as spec.md's §6 reference-WAV-input contract requires.
func resampleLinear(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 || len(samples) == 0 {
		return samples
	}
	ratio := float64(dstRate) / float64(srcRate)
	outLen := int(float64(len(samples)) * ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float32, outLen)
	for i := range out {
		srcPos := float64(i) / ratio
		i0 := int(srcPos)
		frac := srcPos - float64(i0)
		if i0 >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		out[i] = samples[i0] + float32(frac)*(samples[i0+1]-samples[i0])
	}
	return out
}
