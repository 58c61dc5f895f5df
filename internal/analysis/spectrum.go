package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled series.
type Spectrum struct {
	Freqs      []float64 // Hz
	Amplitudes []float64
}

// PowerSpectrum removes the mean of data and returns its amplitude spectrum.
// dt is the sample spacing in seconds.
func PowerSpectrum(data []float64, dt float64) Spectrum {
	n := len(data)
	if n < 2 || !(dt > 0) {
		return Spectrum{}
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	s := Spectrum{
		Freqs:      make([]float64, len(coeffs)),
		Amplitudes: make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		s.Freqs[i] = fft.Freq(i) / dt
		s.Amplitudes[i] = cmplx.Abs(c) / float64(n)
	}
	return s
}

// Dominant returns the strongest non-DC frequency, or 0 for a flat series.
func (s Spectrum) Dominant() float64 {
	best, freq := 0.0, 0.0
	for i := 1; i < len(s.Amplitudes); i++ {
		if s.Amplitudes[i] > best {
			best, freq = s.Amplitudes[i], s.Freqs[i]
		}
	}
	return freq
}
