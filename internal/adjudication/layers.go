package adjudication

import (
	"math"
	"strings"

	"geoverify/domain/verdict"
)

// LayerType selects the base reliability of a validation layer
type LayerType string

const (
	LayerInternalVerification LayerType = "internal_verification"
	LayerSakana               LayerType = "sakana"
	LayerExternalExperimental LayerType = "external_experimental"
	LayerEnhancedSakana       LayerType = "enhanced_sakana"
	LayerDefault              LayerType = "default"
)

var baseReliability = map[LayerType]float64{
	LayerInternalVerification: 0.7,
	LayerSakana:               0.85,
	LayerExternalExperimental: 0.9,
	LayerEnhancedSakana:       0.88,
	LayerDefault:              0.6,
}

// Completeness factors
const (
	completenessNormal             = 1.0
	completenessErrored            = 0.3
	completenessIntegrationFailure = 0.5
)

// InferLayerType derives the layer type from its name
func InferLayerType(name string) LayerType {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "external"):
		return LayerExternalExperimental
	case strings.Contains(n, "enhanced_sakana"):
		return LayerEnhancedSakana
	case strings.Contains(n, "sakana"):
		return LayerSakana
	case strings.Contains(n, "internal"):
		return LayerInternalVerification
	default:
		return LayerDefault
	}
}

// LayerDetails is the payload a layer reports alongside its verdict
type LayerDetails struct {
	Status               string         `json:"status,omitempty"`
	Error                string         `json:"error,omitempty"`
	IntegrationFailed    bool           `json:"integration_failed,omitempty"`
	FlawsDetected        int            `json:"flaws_detected,omitempty"`
	ExperimentalClaims   int            `json:"experimental_claims,omitempty"`
	ReproducibilityScore *float64       `json:"reproducibility_score,omitempty"`
	FeasibilityScore     *float64       `json:"feasibility_score,omitempty"`
	Extra                map[string]any `json:"extra,omitempty"`
}

func (d LayerDetails) errored() bool {
	status := strings.ToLower(d.Status)
	return d.Error != "" || status == "error" || status == "unavailable"
}

// LayerResult is one independent validator's output
type LayerResult struct {
	Verdict    string       `json:"verdict"`
	Confidence float64      `json:"confidence"`
	Details    LayerDetails `json:"details"`
}

// reliability is base * completeness * richness, capped at 1
func reliability(layerType LayerType, d LayerDetails) float64 {
	completeness := completenessNormal
	switch {
	case d.errored():
		completeness = completenessErrored
	case d.IntegrationFailed:
		completeness = completenessIntegrationFailure
	}

	richness := 1.0
	switch layerType {
	case LayerExternalExperimental:
		if d.ExperimentalClaims > 0 {
			richness = 1 + math.Min(0.1, 0.02*float64(d.ExperimentalClaims))
		} else {
			richness = 0.9
		}
	case LayerInternalVerification:
		if d.FlawsDetected > 0 {
			richness = 1.05
		}
	}

	return math.Min(baseReliability[layerType]*completeness*richness, 1.0)
}

// evidenceStrength scores how much substance backs a layer's verdict
func evidenceStrength(layerType LayerType, d LayerDetails) float64 {
	if d.errored() {
		return 0.2
	}

	switch layerType {
	case LayerInternalVerification:
		if d.FlawsDetected == 0 {
			return 0.5
		}
		return math.Min(1.0, 0.5+0.1*float64(d.FlawsDetected))
	case LayerSakana, LayerEnhancedSakana:
		return 0.8
	case LayerExternalExperimental:
		var scores []float64
		for _, s := range []*float64{d.ReproducibilityScore, d.FeasibilityScore} {
			if s != nil {
				scores = append(scores, clamp01(*s))
			}
		}
		if len(scores) == 0 {
			return 0.5
		}
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		return sum / float64(len(scores))
	default:
		return 0.5
	}
}

var (
	flawedVerdicts = []string{
		"flawed", "invalid", "rejected", "reject", "fail", "failed", "paper_flawed",
		"fundamental_flaws", "physically_impossible", "non_compliant", "plausibility_trap",
	}
	validVerdicts = []string{
		"valid", "passed", "pass", "accepted", "compliant", "sound", "paper_valid", "verified",
	}
	reviewVerdicts = []string{
		"needs_review", "concerns_raised", "uncertain", "suspicious", "review", "marginal",
	}
)

// NormalizeVerdict maps a free-form layer verdict onto the shared scale
func NormalizeVerdict(raw string) verdict.NormalizedVerdict {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.TrimPrefix(v, "consensus_")
	v = strings.ReplaceAll(v, " ", "_")

	switch {
	case contains(flawedVerdicts, v):
		return verdict.VerdictFlawed
	case contains(validVerdicts, v):
		return verdict.VerdictValid
	case contains(reviewVerdicts, v):
		return verdict.VerdictNeedsReview
	default:
		return verdict.VerdictUnknown
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}
