package snr

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoverify/domain/core"
	"geoverify/internal/errors"
)

func populationVariance(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

func TestEngineHansen(t *testing.T) {
	engine := NewEngine(Options{})
	signal := []float64{0, 1, 2, 3, 4, 5}
	noise := []float64{0.1, 0.1, 0.2, 0.1, 0.2, 0.1}

	result, err := engine.Analyze(signal, noise, MethodHansen)
	require.NoError(t, err)

	expected := 10 * math.Log10(populationVariance(signal)/populationVariance(noise))
	assert.InEpsilon(t, expected, result.SNRDb, 1e-10)
	assert.Equal(t, 6, result.SampleCount)
	assert.True(t, result.Detectable)
	assert.Equal(t, CategoryHighConfidence, result.Classification.Category)
	assert.Nil(t, result.FrequencyAnalysis)
}

func TestEngineEdgeCases(t *testing.T) {
	engine := NewEngine(Options{})

	t.Run("zero signal power is negative infinity", func(t *testing.T) {
		result, err := engine.Analyze([]float64{0, 0, 0, 0}, []float64{1, -1, 1, -1}, MethodHansen)
		require.NoError(t, err)
		assert.True(t, math.IsInf(result.SNRDb, -1))
		assert.Equal(t, CategoryUndetectable, result.Classification.Category)
		assert.False(t, result.Detectable)
	})

	t.Run("zero noise power is positive infinity", func(t *testing.T) {
		result, err := engine.Analyze([]float64{1, 2, 3}, []float64{4, 4, 4}, MethodHansen)
		require.NoError(t, err)
		assert.True(t, math.IsInf(result.SNRDb, 1))
		assert.True(t, result.Detectable)
	})

	t.Run("zero signal and zero noise is negative infinity", func(t *testing.T) {
		result, err := engine.Analyze([]float64{0, 0, 0}, []float64{1, 1, 1}, MethodHansen)
		require.NoError(t, err)
		assert.Zero(t, result.SignalPower)
		assert.Zero(t, result.NoisePower)
		assert.True(t, math.IsInf(result.SNRDb, -1))
		assert.Zero(t, result.SNRLinear)
		assert.False(t, result.Detectable)
	})

	t.Run("truncates to shorter length", func(t *testing.T) {
		result, err := engine.Analyze([]float64{1, 2, 3, 4, 5, 6}, []float64{1, -1, 1, -1}, MethodHansen)
		require.NoError(t, err)
		assert.Equal(t, 4, result.SampleCount)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := engine.Analyze(nil, []float64{1}, MethodHansen)
		require.Error(t, err)
		assert.Equal(t, errors.CodeShapeMismatch, errors.GetCode(err))
		assert.True(t, stderrors.Is(err, core.ErrShapeMismatch))
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := engine.Analyze([]float64{1, 2}, []float64{1, 2}, Method("wavelet"))
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, core.ErrUnknownMethod))
	})

	t.Run("non-finite samples", func(t *testing.T) {
		_, err := engine.Analyze([]float64{1, math.NaN()}, []float64{1, 2}, MethodHansen)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})
}

func sinusoid(n int, freq, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i))
	}
	return out
}

func alternating(n int, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%3 == 0 {
			out[i] = amplitude
		} else {
			out[i] = -amplitude / 2
		}
	}
	return out
}

func TestEngineSpectralMethods(t *testing.T) {
	engine := NewEngine(Options{SampleRate: 1.0})
	signal := sinusoid(512, 0.125, 1.0)
	noise := alternating(512, 0.1)

	t.Run("welch", func(t *testing.T) {
		result, err := engine.Analyze(signal, noise, MethodWelch)
		require.NoError(t, err)
		require.NotNil(t, result.FrequencyAnalysis)
		assert.Equal(t, 3, result.FrequencyAnalysis.Segments)
		assert.InDelta(t, 0.125, result.FrequencyAnalysis.PeakFrequency, 1e-9)
		assert.InDelta(t, 1.0/256, result.FrequencyAnalysis.FrequencyResolution, 1e-12)
		assert.Greater(t, result.SNRDb, 0.0)
	})

	t.Run("periodogram", func(t *testing.T) {
		result, err := engine.Analyze(signal, noise, MethodPeriodogram)
		require.NoError(t, err)
		require.NotNil(t, result.FrequencyAnalysis)
		assert.Equal(t, 1, result.FrequencyAnalysis.Segments)
		assert.InDelta(t, 0.125, result.FrequencyAnalysis.PeakFrequency, 1e-9)
		assert.InDelta(t, 1.0/512, result.FrequencyAnalysis.Bandwidth, 1e-12)
	})
}

func TestPeriodogramParseval(t *testing.T) {
	data := []float64{0.3, -1.2, 2.5, 0.7, -0.4, 1.1, -2.0, 0.9}
	psd := periodogramPSD(data, 2.0)

	df := psd.frequencies[1] - psd.frequencies[0]
	total := 0.0
	for _, v := range psd.density {
		total += v * df
	}
	assert.InDelta(t, populationVariance(data), total, 1e-10)
}

func TestHannWindow(t *testing.T) {
	assert.Equal(t, []float64{1}, hannWindow(1))

	w := hannWindow(4)
	assert.InDelta(t, 0.0, w[0], 1e-12)
	assert.InDelta(t, 0.5, w[1], 1e-12)
	assert.InDelta(t, 1.0, w[2], 1e-12)
	assert.InDelta(t, 0.5, w[3], 1e-12)
}

func TestEngineStatistics(t *testing.T) {
	engine := NewEngine(Options{HistoryLimit: 3})

	empty := engine.Statistics()
	assert.Equal(t, 0, empty.TotalAnalyses)

	_, err := engine.Analyze([]float64{0, 0, 0}, []float64{1, 2, 3}, MethodHansen)
	require.NoError(t, err)
	_, err = engine.Analyze([]float64{1, 2, 3}, []float64{1, 2, 3}, MethodHansen)
	require.NoError(t, err)
	_, err = engine.Analyze([]float64{2, 4, 6}, []float64{1, 2, 3}, MethodHansen)
	require.NoError(t, err)

	st := engine.Statistics()
	assert.Equal(t, 3, st.TotalAnalyses)
	assert.Equal(t, 3, st.MethodCounts[MethodHansen])
	assert.Equal(t, 2, st.FiniteCount)
	assert.InDelta(t, 2.0/3, st.DetectableFraction, 1e-12)
	assert.InDelta(t, 10*math.Log10(4)/2, st.MeanSNRDb, 1e-10)

	_, err = engine.Analyze([]float64{1, 2, 3}, []float64{1, 2, 3}, MethodHansen)
	require.NoError(t, err)
	assert.Equal(t, 3, engine.Statistics().TotalAnalyses)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("welch")
	require.NoError(t, err)
	assert.Equal(t, MethodWelch, m)

	_, err = ParseMethod("multitaper")
	assert.Error(t, err)
}

func TestResultJSONNonFinite(t *testing.T) {
	engine := NewEngine(Options{})
	result, err := engine.Analyze([]float64{0, 0}, []float64{1, 2}, MethodHansen)
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"snr_db":"-Inf"`)
	assert.Contains(t, string(data), `"category":"UNDETECTABLE"`)
}
