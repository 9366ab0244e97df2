package features

// delta computes the Savitzky-Golay-style first difference over a +/-2 frame
// window: d[t] = ((f[t+1]-f[t-1]) + 2*(f[t+2]-f[t-2])) / 10. The first and
// last frames use a one-sided difference; the second and second-to-last
// frames use the centered +/-1 difference (f[t+1]-f[t-1]) / 2.
// Applying delta twice yields delta-delta.
func delta(feat [][]float32) [][]float32 {
	f := len(feat)
	out := make([][]float32, f)
	if f == 0 {
		return out
	}
	d := len(feat[0])
	for t := 0; t < f; t++ {
		row := make([]float32, d)
		for c := 0; c < d; c++ {
			row[c] = deltaAt(feat, t, c)
		}
		out[t] = row
	}
	return out
}

func deltaAt(feat [][]float32, t, c int) float32 {
	f := len(feat)
	get := func(i int) float32 {
		if i < 0 {
			i = 0
		}
		if i >= f {
			i = f - 1
		}
		return feat[i][c]
	}
	switch {
	case f < 2:
		return 0
	case t == 0:
		return get(1) - get(0)
	case t == f-1:
		return get(f - 1) - get(f - 2)
	case t == 1 || t == f-2:
		return (get(t+1) - get(t-1)) / 2
	default:
		return ((get(t+1) - get(t-1)) + 2*(get(t+2)-get(t-2))) / 10
	}
}
