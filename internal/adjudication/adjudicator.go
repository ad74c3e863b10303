// Package adjudication reconciles the verdicts of independent validation
// layers into one weighted consensus.
package adjudication

import (
	"math"
	"sort"
	"time"

	"geoverify/domain/verdict"
	"geoverify/internal"
	"geoverify/internal/errors"
)

// Thresholds on the normalized score
const (
	flawedThreshold      = 0.4
	suspiciousThreshold  = 0.1
	humanReviewBand      = 0.2
	highConflictMinConf  = 0.7
	maxExtremeConfidence = 0.9

	humanReviewConfidence = 0.3
	suspiciousConfidence  = 0.6
	uncertainConfidence   = 0.4
)

// LayerAssessment is the weighting applied to one layer
type LayerAssessment struct {
	Name             string                    `json:"name"`
	Type             LayerType                 `json:"type"`
	RawVerdict       string                    `json:"raw_verdict"`
	Verdict          verdict.NormalizedVerdict `json:"normalized_verdict"`
	Confidence       float64                   `json:"confidence"`
	Reliability      float64                   `json:"reliability"`
	EvidenceStrength float64                   `json:"evidence_strength"`
	Weight           float64                   `json:"weight"`
}

// Result is the adjudicated consensus
type Result struct {
	Verdict         verdict.ConsensusVerdict `json:"consensus_verdict"`
	Confidence      float64                  `json:"adjudication_confidence"`
	NormalizedScore float64                  `json:"normalized_score"`
	Conflict        verdict.ConflictSeverity `json:"conflict_severity"`
	Layers          []LayerAssessment        `json:"layers"`
	AdjudicatedAt   time.Time                `json:"adjudicated_at"`
}

// Adjudicator combines layer results. It holds no mutable state.
type Adjudicator struct {
	logger *internal.Logger
}

// NewAdjudicator creates an adjudicator
func NewAdjudicator(logger *internal.Logger) *Adjudicator {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Adjudicator{logger: logger.With("adjudication")}
}

// Adjudicate weights each layer by confidence, reliability and evidence
// strength, detects conflicts and maps the normalized score onto a verdict.
// Layers are processed in name order so results are reproducible.
func (a *Adjudicator) Adjudicate(layers map[string]LayerResult) (*Result, error) {
	if len(layers) == 0 {
		return nil, errors.ConfigurationError("adjudication requires at least one layer result")
	}

	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &Result{
		Layers:        make([]LayerAssessment, 0, len(names)),
		AdjudicatedAt: time.Now().UTC(),
	}

	weighted, totalReliability := 0.0, 0.0
	for _, name := range names {
		layer := layers[name]
		layerType := InferLayerType(name)

		la := LayerAssessment{
			Name:             name,
			Type:             layerType,
			RawVerdict:       layer.Verdict,
			Verdict:          NormalizeVerdict(layer.Verdict),
			Confidence:       clamp01(layer.Confidence),
			Reliability:      reliability(layerType, layer.Details),
			EvidenceStrength: evidenceStrength(layerType, layer.Details),
		}
		la.Weight = la.Confidence * la.Reliability * la.EvidenceStrength

		weighted += la.Verdict.Sign() * la.Weight
		totalReliability += la.Reliability
		result.Layers = append(result.Layers, la)
	}

	if totalReliability > 0 {
		result.NormalizedScore = weighted / totalReliability
	}
	result.Conflict = detectConflict(result.Layers)
	result.Verdict, result.Confidence = finalVerdict(result.NormalizedScore, result.Conflict)

	a.logger.Debug("adjudicated %d layers: %s (score %.3f, conflict %s)",
		len(names), result.Verdict, result.NormalizedScore, result.Conflict)
	return result, nil
}

// detectConflict is HIGH when confident layers say valid and flawed at once,
// MODERATE when layers otherwise disagree and NONE when they agree.
func detectConflict(layers []LayerAssessment) verdict.ConflictSeverity {
	confidentValid, confidentFlawed := false, false
	categories := make(map[verdict.NormalizedVerdict]bool)

	for _, la := range layers {
		if la.Verdict == verdict.VerdictUnknown {
			continue
		}
		categories[la.Verdict] = true
		if la.Confidence > highConflictMinConf {
			switch la.Verdict {
			case verdict.VerdictValid:
				confidentValid = true
			case verdict.VerdictFlawed:
				confidentFlawed = true
			}
		}
	}

	switch {
	case confidentValid && confidentFlawed:
		return verdict.ConflictHigh
	case len(categories) > 1:
		return verdict.ConflictModerate
	default:
		return verdict.ConflictNone
	}
}

func finalVerdict(score float64, conflict verdict.ConflictSeverity) (verdict.ConsensusVerdict, float64) {
	switch {
	case conflict == verdict.ConflictHigh && math.Abs(score) < humanReviewBand:
		return verdict.ConsensusRequiresHumanReview, humanReviewConfidence
	case score > flawedThreshold:
		return verdict.ConsensusPaperFlawed, math.Min(maxExtremeConfidence, math.Abs(score))
	case score < -flawedThreshold:
		return verdict.ConsensusPaperValid, math.Min(maxExtremeConfidence, math.Abs(score))
	case score > suspiciousThreshold:
		return verdict.ConsensusPaperSuspicious, suspiciousConfidence
	default:
		return verdict.ConsensusUncertain, uncertainConfidence
	}
}
