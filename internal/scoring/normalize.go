package scoring

import "github.com/yourusername/dinger/internal/config"

// normalize maps v onto [0,1] against the reference range, clamping values
// outside it.
func normalize(v float64, r config.Range) float64 {
	w := r.Width()
	if w <= 0 {
		return 0.5
	}
	return clamp01((v - r.Min) / w)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
