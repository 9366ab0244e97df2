package features

import "math"

// dctII computes the first numCoeffs coefficients of the type-II discrete
// cosine transform of x, the standard log-mel-to-cepstrum step.
func dctII(x []float32, numCoeffs int) []float32 {
	n := len(x)
	out := make([]float32, numCoeffs)
	for k := 0; k < numCoeffs; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += float64(x[i]) * math.Cos(math.Pi/float64(n)*(float64(i)+0.5)*float64(k))
		}
		out[k] = float32(sum)
	}
	return out
}
