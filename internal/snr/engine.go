package snr

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"geoverify/domain/core"
	"geoverify/internal"
	"geoverify/internal/errors"
)

// Method selects the power estimator used by the engine
type Method string

const (
	MethodHansen      Method = "hansen"
	MethodWelch       Method = "welch"
	MethodPeriodogram Method = "periodogram"
)

// ParseMethod validates a method name
func ParseMethod(name string) (Method, error) {
	switch m := Method(name); m {
	case MethodHansen, MethodWelch, MethodPeriodogram:
		return m, nil
	default:
		return "", errors.UnknownMethod("snr method", name)
	}
}

// Result is the outcome of a single SNR analysis
type Result struct {
	SNRLinear         float64            `json:"snr_linear"`
	SNRDb             float64            `json:"snr_db"`
	Method            Method             `json:"method"`
	SignalPower       float64            `json:"signal_power"`
	NoisePower        float64            `json:"noise_power"`
	FrequencyAnalysis *FrequencyAnalysis `json:"frequency_analysis,omitempty"`
	Classification    Classification     `json:"classification"`
	Detectable        bool               `json:"detectable"`
	SampleCount       int                `json:"sample_count"`
	AnalyzedAt        time.Time          `json:"analyzed_at"`
}

// historyEntry is the summary kept for each analysis
type historyEntry struct {
	method     Method
	snrDb      float64
	detectable bool
}

// Statistics summarizes all analyses performed by an engine
type Statistics struct {
	TotalAnalyses      int            `json:"total_analyses"`
	MethodCounts       map[Method]int `json:"method_counts"`
	FiniteCount        int            `json:"finite_count"`
	MeanSNRDb          float64        `json:"mean_snr_db"`
	MedianSNRDb        float64        `json:"median_snr_db"`
	DetectableFraction float64        `json:"detectable_fraction"`
}

// Options configures an Engine
type Options struct {
	SampleRate   float64
	HistoryLimit int
	Logger       *internal.Logger
}

// Engine computes signal-to-noise ratios and classifies detectability.
// Safe for concurrent use.
type Engine struct {
	sampleRate   float64
	historyLimit int
	logger       *internal.Logger

	mu      sync.Mutex
	history []historyEntry
}

// NewEngine creates an SNR engine. A non-positive sample rate defaults to 1.0.
func NewEngine(opts Options) *Engine {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 1.0
	}
	if opts.Logger == nil {
		opts.Logger = internal.NopLogger()
	}
	return &Engine{
		sampleRate:   opts.SampleRate,
		historyLimit: opts.HistoryLimit,
		logger:       opts.Logger.With("snr"),
	}
}

// Analyze computes the SNR of signal against noise. Both sequences are
// truncated to the shorter length before estimation.
func (e *Engine) Analyze(signal, noise []float64, method Method) (*Result, error) {
	if len(signal) == 0 || len(noise) == 0 {
		return nil, errors.ShapeMismatch(len(signal), len(noise))
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	n := len(signal)
	if len(noise) < n {
		n = len(noise)
	}
	signal, noise = signal[:n], noise[:n]

	if !allFinite(signal) || !allFinite(noise) {
		return nil, errors.InvalidInput("signal and noise must contain only finite values")
	}

	result := &Result{
		Method:      method,
		SampleCount: n,
		AnalyzedAt:  time.Now().UTC(),
	}

	switch method {
	case MethodHansen:
		signalPower, err := stats.PopulationVariance(signal)
		if err != nil {
			return nil, errors.Wrap(err, "signal variance")
		}
		noisePower, err := stats.PopulationVariance(noise)
		if err != nil {
			return nil, errors.Wrap(err, "noise variance")
		}
		result.SignalPower, result.NoisePower = signalPower, noisePower
	case MethodWelch, MethodPeriodogram:
		estimate := welchPSD
		if method == MethodPeriodogram {
			estimate = periodogramPSD
		}
		signalPSD := estimate(signal, e.sampleRate)
		noisePSD := estimate(noise, e.sampleRate)
		result.SignalPower = signalPSD.meanPower()
		result.NoisePower = noisePSD.meanPower()
		result.FrequencyAnalysis = signalPSD.analyzeFrequencies()
	}

	result.SNRLinear, result.SNRDb = powerRatio(result.SignalPower, result.NoisePower)
	result.Classification = Classify(result.SNRDb)
	result.Detectable = IsDetectable(result.SNRDb)

	e.logger.Debug("%s SNR over %d samples: %.2f dB (%s)", method, n, result.SNRDb, result.Classification.Category)
	e.record(historyEntry{method: method, snrDb: result.SNRDb, detectable: result.Detectable})

	return result, nil
}

// powerRatio converts signal and noise power into linear and dB ratios.
// Zero signal power is -Inf dB even when the noise power is also zero; zero
// noise with a non-zero signal is +Inf.
func powerRatio(signalPower, noisePower float64) (linear, db float64) {
	switch {
	case signalPower == 0:
		return 0, math.Inf(-1)
	case noisePower == 0:
		return math.Inf(1), math.Inf(1)
	}
	linear = signalPower / noisePower
	return linear, 10 * math.Log10(linear)
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (e *Engine) record(entry historyEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, entry)
	if e.historyLimit > 0 && len(e.history) > e.historyLimit {
		e.history = e.history[len(e.history)-e.historyLimit:]
	}
}

// Statistics summarizes the retained analysis history
func (e *Engine) Statistics() Statistics {
	e.mu.Lock()
	entries := make([]historyEntry, len(e.history))
	copy(entries, e.history)
	e.mu.Unlock()

	st := Statistics{
		TotalAnalyses: len(entries),
		MethodCounts:  make(map[Method]int),
	}
	if len(entries) == 0 {
		return st
	}

	var finite []float64
	detectable := 0
	for _, entry := range entries {
		st.MethodCounts[entry.method]++
		if entry.detectable {
			detectable++
		}
		if !math.IsInf(entry.snrDb, 0) && !math.IsNaN(entry.snrDb) {
			finite = append(finite, entry.snrDb)
		}
	}

	st.FiniteCount = len(finite)
	st.DetectableFraction = float64(detectable) / float64(len(entries))
	if len(finite) > 0 {
		st.MeanSNRDb, _ = stats.Mean(finite)
		st.MedianSNRDb, _ = stats.Median(finite)
	}
	return st
}

// MarshalJSON encodes infinite ratios as strings
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		alias
		SNRLinear any `json:"snr_linear"`
		SNRDb     any `json:"snr_db"`
	}{alias(r), core.JSONFloat(r.SNRLinear), core.JSONFloat(r.SNRDb)})
}
