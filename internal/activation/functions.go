package activation

const defaultSaturationLimit = 1000.0

// Saturation clamps values to [-1000, 1000].
func Saturation(value float64) float64 {
	return SaturationWithSpread(value, defaultSaturationLimit)
}

// SaturationWithSpread clamps values to the symmetric range [-spread, spread].
func SaturationWithSpread(value, spread float64) float64 {
	if spread < 0 {
		spread = -spread
	}
	return Sat(value, spread, -spread)
}

// Sat clamps value to [min, max].
func Sat(value, max, min float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Chain applies fns left to right. Nil entries are skipped.
func Chain(fns ...LayerFunc) LayerFunc {
	return func(values []float64) []float64 {
		out := append([]float64(nil), values...)
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			out = fn(out)
		}
		return out
	}
}
