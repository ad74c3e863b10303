// Package plausibility scores the risk that a paper is a plausibility trap:
// sophisticated in method but weak in empirical grounding.
package plausibility

import "math"

// RiskLevel grades overall plausibility-trap risk
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskModerate RiskLevel = "MODERATE"
	RiskLow      RiskLevel = "LOW"
	RiskMinimal  RiskLevel = "MINIMAL"
)

// risk level thresholds, checked from the top down
const (
	criticalThreshold = 0.8
	highThreshold     = 0.6
	moderateThreshold = 0.4
	lowThreshold      = 0.2
)

type levelProfile struct {
	assessment      string
	recommendations []string
}

var levelProfiles = map[RiskLevel]levelProfile{
	RiskCritical: {
		assessment: "PLAUSIBILITY_TRAP_LIKELY",
		recommendations: []string{
			"Reject pending independent empirical validation",
			"Require observational data from an attested institutional source",
			"Demonstrate signal detectability above internal variability",
			"Escalate to adversarial critique before any further review",
		},
	},
	RiskHigh: {
		assessment: "HIGH_PLAUSIBILITY_RISK",
		recommendations: []string{
			"Request empirical validation of the core mechanism",
			"Verify data provenance and authenticity",
			"Run adversarial critique focused on fundamental feasibility",
		},
	},
	RiskModerate: {
		assessment: "MODERATE_PLAUSIBILITY_CONCERNS",
		recommendations: []string{
			"Strengthen empirical support with observational comparisons",
			"Report uncertainty and detectability explicitly",
		},
	},
	RiskLow: {
		assessment: "LOW_PLAUSIBILITY_RISK",
		recommendations: []string{
			"Proceed with standard peer review",
			"Confirm statistical methodology",
		},
	},
	RiskMinimal: {
		assessment: "EMPIRICALLY_GROUNDED",
		recommendations: []string{
			"Proceed with standard peer review",
		},
	},
}

// RiskAssessment is the engine's verdict for one (S, E, R) triple
type RiskAssessment struct {
	SophisticationScore float64   `json:"sophistication_score"`
	EmpiricalScore      float64   `json:"empirical_score"`
	RedFlagScore        float64   `json:"red_flag_score"`
	SophisticationRisk  float64   `json:"sophistication_risk"`
	RedFlagMultiplier   float64   `json:"red_flag_multiplier"`
	OverallRisk         float64   `json:"overall_risk"`
	RiskLevel           RiskLevel `json:"risk_level"`
	Assessment          string    `json:"plausibility_assessment"`
	Recommendations     []string  `json:"recommendations"`
}

// Engine applies the plausibility risk formula. It is stateless.
type Engine struct{}

// NewEngine creates a risk engine
func NewEngine() *Engine {
	return &Engine{}
}

// Assess computes min(S*(1-E)*(1+R), 1) and grades it. Inputs are clamped to [0,1].
func (e *Engine) Assess(sophistication, empirical, redFlag float64) RiskAssessment {
	s, emp, r := clamp01(sophistication), clamp01(empirical), clamp01(redFlag)

	sophisticationRisk := s * (1 - emp)
	multiplier := 1 + r
	overall := math.Min(sophisticationRisk*multiplier, 1.0)

	level := LevelFor(overall)
	profile := levelProfiles[level]
	recommendations := make([]string, len(profile.recommendations))
	copy(recommendations, profile.recommendations)

	return RiskAssessment{
		SophisticationScore: s,
		EmpiricalScore:      emp,
		RedFlagScore:        r,
		SophisticationRisk:  sophisticationRisk,
		RedFlagMultiplier:   multiplier,
		OverallRisk:         overall,
		RiskLevel:           level,
		Assessment:          profile.assessment,
		Recommendations:     recommendations,
	}
}

// LevelFor maps an overall risk value onto a risk level
func LevelFor(risk float64) RiskLevel {
	switch {
	case risk >= criticalThreshold:
		return RiskCritical
	case risk >= highThreshold:
		return RiskHigh
	case risk >= moderateThreshold:
		return RiskModerate
	case risk >= lowThreshold:
		return RiskLow
	default:
		return RiskMinimal
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
