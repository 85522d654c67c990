package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first len(samples)/2 frequency
// bins of a Hann-windowed signal. The mean is removed before windowing so
// bin 0 does not swamp the rest.
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// of samples taken every sampleDt seconds.
func DominantFrequency(samples []float64, sampleDt float64) float64 {
	ps := PowerSpectrum(samples)
	if len(ps) < 2 || sampleDt <= 0 {
		return 0
	}

	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	return float64(peak) / (float64(len(samples)) * sampleDt)
}
