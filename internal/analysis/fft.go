package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrShortSeries = errors.New("series too short")

// FFT transforms a real series of any length.
func FFT(data []float64) []complex128 {
	return fft.FFTReal(data)
}

// PowerSpectrum returns the magnitudes of the non-negative frequencies.
func PowerSpectrum(data []float64) []float64 {
	f := FFT(data)
	ps := make([]float64, len(f)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps
}

// DominantPeriod estimates the cycle length of a uniformly sampled series.
// The series is truncated to the largest power of two and its mean removed;
// the strongest non-zero frequency bin gives the period. Non-finite samples
// end the usable series.
func DominantPeriod(times, values []float64) (float64, error) {
	n := len(values)
	if len(times) < n {
		n = len(times)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			n = i
			break
		}
	}
	size := 1
	for size*2 <= n {
		size *= 2
	}
	if size < 8 {
		return 0, ErrShortSeries
	}

	mean := 0.0
	for _, v := range values[:size] {
		mean += v
	}
	mean /= float64(size)
	centered := make([]float64, size)
	for i, v := range values[:size] {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return math.Inf(1), nil
	}

	dt := times[1] - times[0]
	return float64(size) * dt / float64(peak), nil
}
