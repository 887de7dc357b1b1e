package sample

// DownsampleSamples downsamples a slice of samples to a maximum number of points.
// Uses simple decimation to reduce the number of points for display.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
// If len(samples) <= maxPoints, copies all samples to dst.
func DownsampleSamples(dst []Sample, samples []Sample, maxPoints int) []Sample {
	return decimate(dst, samples, maxPoints)
}

// Temperatures extracts the temperatures of valid samples into dst.
func Temperatures(dst []float64, samples []Sample) []float64 {
	dst = dst[:0]
	for _, s := range samples {
		if s.Valid {
			dst = append(dst, s.TempC)
		}
	}
	return dst
}

func decimate[T any](dst []T, src []T, maxPoints int) []T {
	if maxPoints <= 0 {
		return dst[:0]
	}

	if len(src) <= maxPoints {
		if cap(dst) >= len(src) {
			dst = dst[:len(src)]
			copy(dst, src)
			return dst
		}
		result := make([]T, len(src))
		copy(result, src)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]T, 0, maxPoints)
	}

	step := float64(len(src)) / float64(maxPoints)
	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(src) {
			dst = append(dst, src[idx])
		}
	}

	return dst
}
