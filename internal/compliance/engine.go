// Package compliance folds SNR detectability, data authenticity and domain
// parameter checks into one Sakana Principle decision per claim.
package compliance

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"geoverify/domain/claim"
	"geoverify/domain/core"
	"geoverify/domain/verdict"
	"geoverify/internal"
	"geoverify/internal/domainparams"
	"geoverify/internal/errors"
	"geoverify/internal/snr"
)

// Result is the compliance decision for one claim
type Result struct {
	ClaimID             core.ClaimID              `json:"claim_id"`
	Domain              string                    `json:"domain"`
	Decision            verdict.Decision          `json:"decision"`
	Compliant           bool                      `json:"sakana_compliant"`
	Reasons             []verdict.RejectionReason `json:"rejection_reasons"`
	ParameterViolations []string                  `json:"parameter_violations"`
	Warnings            []string                  `json:"warnings"`
	Confidence          verdict.ConfidenceLevel   `json:"confidence"`
	SNRDb               float64                   `json:"snr_db"`
	Classification      snr.Classification        `json:"snr_classification"`
	ValidatedAt         time.Time                 `json:"validated_at"`
}

// MarshalJSON encodes an infinite SNR as a string
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		alias
		SNRDb any `json:"snr_db"`
	}{alias(r), core.JSONFloat(r.SNRDb)})
}

// HasReason reports whether the result carries reason
func (r *Result) HasReason(reason verdict.RejectionReason) bool {
	for _, got := range r.Reasons {
		if got == reason {
			return true
		}
	}
	return false
}

// Engine validates claims against the Sakana Principle and keeps an
// append-only history. Safe for concurrent use.
type Engine struct {
	params       *domainparams.Validator
	logger       *internal.Logger
	historyLimit int

	mu      sync.Mutex
	history []Result
}

// NewEngine creates a compliance engine. historyLimit <= 0 keeps everything.
func NewEngine(params *domainparams.Validator, logger *internal.Logger, historyLimit int) *Engine {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Engine{
		params:       params,
		logger:       logger.With("compliance"),
		historyLimit: historyLimit,
	}
}

// Validate runs every check and rejects on any failure. Missing evidence
// sections and a NaN SNR are structural errors; everything else is data.
func (e *Engine) Validate(c claim.Claim, evidence *claim.EvidenceBundle) (*Result, error) {
	if evidence == nil || evidence.SNRAnalysis == nil {
		return nil, errors.MissingEvidence("snr_analysis")
	}
	if evidence.RealDataVerification == nil {
		return nil, errors.MissingEvidence("real_data_verification")
	}
	snrDb := evidence.SNRAnalysis.SNRDb
	if math.IsNaN(snrDb) {
		return nil, errors.ConfigurationError("snr_analysis.snr_db is not a number")
	}

	result := &Result{
		ClaimID:             c.Identity(),
		Domain:              c.Domain,
		Reasons:             []verdict.RejectionReason{},
		ParameterViolations: []string{},
		Warnings:            []string{},
		SNRDb:               snrDb,
		Classification:      snr.Classify(snrDb),
		ValidatedAt:         time.Now().UTC(),
	}

	if evidence.SNRAnalysis.Detectable != snr.IsDetectable(snrDb) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: detectable=%t but snr_db=%g",
			verdict.WarningDetectabilityInconsistent, evidence.SNRAnalysis.Detectable, snrDb))
	}

	// Data authenticity
	rdv := evidence.RealDataVerification
	if rdv.SyntheticDataDetected || !rdv.AuthenticDataConfirmed {
		result.Reasons = append(result.Reasons, verdict.ReasonSyntheticDataDetected)
	}
	if !rdv.AuthenticDataConfirmed {
		result.Reasons = append(result.Reasons, verdict.ReasonAuthenticDataNotConfirmed)
	}

	// Detectability
	if !result.Classification.SakanaPrinciplePass {
		result.Reasons = append(result.Reasons, verdict.ReasonUndetectableSignal)
	}

	// Domain parameters
	if c.Domain != "" || len(c.Parameters) > 0 {
		paramResult, err := e.params.Validate(c.Parameters, c.Domain)
		if err != nil {
			return nil, err
		}
		result.Domain = paramResult.Domain
		if !paramResult.Valid {
			result.ParameterViolations = paramResult.Violations
			result.Reasons = append(result.Reasons, verdict.ReasonDomainParameterViolation)
			for _, v := range paramResult.Violations {
				result.Reasons = append(result.Reasons, verdict.RejectionReason(v))
			}
		}
	}

	if len(result.Reasons) > 0 {
		result.Decision = verdict.DecisionReject
		result.Confidence = verdict.ConfidenceNone
	} else {
		result.Decision = verdict.DecisionPass
		result.Compliant = true
		result.Confidence = passConfidence(result.Classification.Category)
	}

	e.logger.Debug("claim %s: %s (%d reasons, snr %.2f dB)",
		result.ClaimID, result.Decision, len(result.Reasons), snrDb)
	e.record(*result)
	return result, nil
}

func passConfidence(category snr.Category) verdict.ConfidenceLevel {
	switch category {
	case snr.CategoryHighConfidence:
		return verdict.ConfidenceHigh
	case snr.CategoryDetectable, snr.CategoryMarginallyDetectable:
		return verdict.ConfidenceModerate
	default:
		return verdict.ConfidenceLow
	}
}

func (e *Engine) record(r Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, r)
	if e.historyLimit > 0 && len(e.history) > e.historyLimit {
		e.history = e.history[len(e.history)-e.historyLimit:]
	}
}

// History returns a copy of the retained results, oldest first
func (e *Engine) History() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Result, len(e.history))
	copy(out, e.history)
	return out
}

// Statistics aggregates the retained history
type Statistics struct {
	TotalValidations int                             `json:"total_validations"`
	Passed           int                             `json:"passed"`
	Rejected         int                             `json:"rejected"`
	PassRate         float64                         `json:"pass_rate"`
	ReasonCounts     map[verdict.RejectionReason]int `json:"reason_counts"`
	ConfidenceCounts map[verdict.ConfidenceLevel]int `json:"confidence_counts"`
}

// Statistics computes pass rate and reason frequencies on demand
func (e *Engine) Statistics() Statistics {
	history := e.History()
	st := Statistics{
		TotalValidations: len(history),
		ReasonCounts:     make(map[verdict.RejectionReason]int),
		ConfidenceCounts: make(map[verdict.ConfidenceLevel]int),
	}
	for _, r := range history {
		if r.Compliant {
			st.Passed++
		} else {
			st.Rejected++
		}
		st.ConfidenceCounts[r.Confidence]++
		for _, reason := range r.Reasons {
			st.ReasonCounts[reason]++
		}
	}
	if st.TotalValidations > 0 {
		st.PassRate = float64(st.Passed) / float64(st.TotalValidations)
	}
	return st
}
