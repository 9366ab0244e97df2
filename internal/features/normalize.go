package features

import "math"

const normClip = 8

// normalizeColumns applies zero-mean unit-variance normalization
// independently to each column (band/coefficient) of a F x D matrix, then
// clips to +/-normClip. A column with zero variance is left at zero rather
// than divided by zero.
func normalizeColumns(m [][]float32) {
	if len(m) == 0 {
		return
	}
	d := len(m[0])
	f := len(m)
	for c := 0; c < d; c++ {
		var mean float64
		for t := 0; t < f; t++ {
			mean += float64(m[t][c])
		}
		mean /= float64(f)

		var variance float64
		for t := 0; t < f; t++ {
			diff := float64(m[t][c]) - mean
			variance += diff * diff
		}
		variance /= float64(f)
		std := math.Sqrt(variance)

		for t := 0; t < f; t++ {
			if std == 0 {
				m[t][c] = 0
				continue
			}
			v := (float64(m[t][c]) - mean) / std
			m[t][c] = float32(clip(v, normClip))
		}
	}
}

// normalizeVector applies the same treatment to a single 1-D stream.
func normalizeVector(v []float32) {
	if len(v) == 0 {
		return
	}
	var mean float64
	for _, x := range v {
		mean += float64(x)
	}
	mean /= float64(len(v))

	var variance float64
	for _, x := range v {
		diff := float64(x) - mean
		variance += diff * diff
	}
	variance /= float64(len(v))
	std := math.Sqrt(variance)

	for i, x := range v {
		if std == 0 {
			v[i] = 0
			continue
		}
		v[i] = float32(clip((float64(x)-mean)/std, normClip))
	}
}

func clip(v, bound float64) float64 {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}
