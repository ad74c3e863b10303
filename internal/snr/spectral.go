package snr

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// welchSegmentLength matches the conventional default segment length
const welchSegmentLength = 256

// psdEstimate is a one-sided power spectral density estimate
type psdEstimate struct {
	frequencies []float64
	density     []float64
	segments    int
}

// hannWindow returns a periodic Hann window of length n
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func boxcarWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

// segmentPSD computes the one-sided density of a single windowed, mean-detrended segment
func segmentPSD(fft *fourier.FFT, segment, window []float64, sampleRate float64) []float64 {
	n := len(segment)

	mean := 0.0
	for _, v := range segment {
		mean += v
	}
	mean /= float64(n)

	windowPower := 0.0
	buf := make([]float64, n)
	for i, v := range segment {
		buf[i] = (v - mean) * window[i]
		windowPower += window[i] * window[i]
	}

	coeffs := fft.Coefficients(nil, buf)
	scale := 1.0 / (sampleRate * windowPower)

	psd := make([]float64, len(coeffs))
	for k, c := range coeffs {
		re, im := real(c), imag(c)
		psd[k] = (re*re + im*im) * scale
	}

	// Fold negative frequencies into the one-sided estimate. DC and (for even
	// lengths) Nyquist have no mirror image.
	last := len(psd)
	if n%2 == 0 {
		last--
	}
	for k := 1; k < last; k++ {
		psd[k] *= 2
	}
	return psd
}

func frequencyAxis(nfft int, sampleRate float64) []float64 {
	freqs := make([]float64, nfft/2+1)
	for k := range freqs {
		freqs[k] = float64(k) * sampleRate / float64(nfft)
	}
	return freqs
}

// welchPSD averages Hann-windowed periodograms over half-overlapping segments
func welchPSD(data []float64, sampleRate float64) psdEstimate {
	nperseg := welchSegmentLength
	if len(data) < nperseg {
		nperseg = len(data)
	}
	step := nperseg - nperseg/2

	fft := fourier.NewFFT(nperseg)
	window := hannWindow(nperseg)

	var sum []float64
	segments := 0
	for start := 0; start+nperseg <= len(data); start += step {
		psd := segmentPSD(fft, data[start:start+nperseg], window, sampleRate)
		if sum == nil {
			sum = make([]float64, len(psd))
		}
		for k, v := range psd {
			sum[k] += v
		}
		segments++
	}

	for k := range sum {
		sum[k] /= float64(segments)
	}

	return psdEstimate{
		frequencies: frequencyAxis(nperseg, sampleRate),
		density:     sum,
		segments:    segments,
	}
}

// periodogramPSD is the single-segment boxcar estimate over the full record
func periodogramPSD(data []float64, sampleRate float64) psdEstimate {
	n := len(data)
	fft := fourier.NewFFT(n)
	return psdEstimate{
		frequencies: frequencyAxis(n, sampleRate),
		density:     segmentPSD(fft, data, boxcarWindow(n), sampleRate),
		segments:    1,
	}
}

// meanPower averages the density over all frequency bins
func (p psdEstimate) meanPower() float64 {
	if len(p.density) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range p.density {
		total += v
	}
	return total / float64(len(p.density))
}

// FrequencyAnalysis describes where the signal's spectral power sits
type FrequencyAnalysis struct {
	PeakFrequency       float64 `json:"peak_frequency"`
	PeakDensity         float64 `json:"peak_density"`
	Bandwidth           float64 `json:"bandwidth"`
	FrequencyResolution float64 `json:"frequency_resolution"`
	Segments            int     `json:"segments"`
}

// analyzeFrequencies finds the spectral peak and its half-power bandwidth
func (p psdEstimate) analyzeFrequencies() *FrequencyAnalysis {
	fa := &FrequencyAnalysis{Segments: p.segments}
	if len(p.frequencies) > 1 {
		fa.FrequencyResolution = p.frequencies[1] - p.frequencies[0]
	}

	peakIdx := 0
	for k, v := range p.density {
		if v > p.density[peakIdx] {
			peakIdx = k
		}
	}
	if len(p.density) == 0 || p.density[peakIdx] == 0 {
		return fa
	}

	fa.PeakFrequency = p.frequencies[peakIdx]
	fa.PeakDensity = p.density[peakIdx]

	halfPower := fa.PeakDensity / 2
	bins := 0
	for _, v := range p.density {
		if v >= halfPower {
			bins++
		}
	}
	fa.Bandwidth = float64(bins) * fa.FrequencyResolution
	return fa
}
