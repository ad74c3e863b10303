// Package evidence derives an evidence bundle for a claim from its raw
// signal and the observational dataset behind it.
package evidence

import (
	"geoverify/domain/claim"
	"geoverify/internal"
	"geoverify/internal/snr"
)

// Evidence is a built bundle plus the full analyses behind it
type Evidence struct {
	Bundle claim.EvidenceBundle `json:"evidence"`
	SNR    *snr.Result          `json:"snr,omitempty"`
	TTest  *TTestResult         `json:"t_test,omitempty"`
}

// Builder computes evidence with a shared SNR engine
type Builder struct {
	engine *snr.Engine
	logger *internal.Logger
}

// NewBuilder creates an evidence builder
func NewBuilder(engine *snr.Engine, logger *internal.Logger) *Builder {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Builder{engine: engine, logger: logger.With("evidence")}
}

// Build assembles whatever evidence the claim supports. Sections that cannot
// be computed are left nil; only SNR analysis failures are returned as errors.
func (b *Builder) Build(c claim.Claim, method snr.Method) (*Evidence, error) {
	ev := &Evidence{}
	ds := c.RealDataset

	if len(c.TheoreticalSignal) > 0 && ds != nil {
		noise := ds.Noise
		if len(noise) == 0 {
			noise = ds.Values
		}
		result, err := b.engine.Analyze(c.TheoreticalSignal, noise, method)
		if err != nil {
			return nil, err
		}
		ev.SNR = result
		ev.Bundle.SNRAnalysis = &claim.SNRAnalysis{
			Method:     string(result.Method),
			SNRDb:      result.SNRDb,
			Detectable: result.Detectable,
		}
	}

	if ds != nil {
		if test, ok := welchTTest(c.TheoreticalSignal, ds.Values); ok {
			ev.TTest = &test
			ev.Bundle.StatisticalValidation = &claim.StatisticalValidation{
				PValue:             test.PValue,
				ConfidenceInterval: test.ConfidenceInterval,
				SampleSize:         test.SampleSize,
				Power:              test.Power,
				EffectSize:         test.EffectSize,
			}
		}
	}

	ev.Bundle.RealDataVerification = verifyDataset(ds)

	b.logger.Debug("claim %s: snr=%t stats=%t authentic=%t", c.Identity(),
		ev.Bundle.SNRAnalysis != nil, ev.Bundle.StatisticalValidation != nil,
		ev.Bundle.RealDataVerification.AuthenticDataConfirmed)
	return ev, nil
}

// Merge fills the sections missing from supplied with those of built.
// Supplied sections always win.
func Merge(supplied *claim.EvidenceBundle, built claim.EvidenceBundle) *claim.EvidenceBundle {
	out := built
	if supplied == nil {
		return &out
	}
	if supplied.SNRAnalysis != nil {
		out.SNRAnalysis = supplied.SNRAnalysis
	}
	if supplied.StatisticalValidation != nil {
		out.StatisticalValidation = supplied.StatisticalValidation
	}
	if supplied.RealDataVerification != nil {
		out.RealDataVerification = supplied.RealDataVerification
	}
	return &out
}
