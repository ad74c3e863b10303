package snr

// thresholds.go
//
// Detectability cut points for the Sakana Principle. A claimed intervention
// signal must rise above the undetectable limit to be empirically testable;
// the remaining cut points grade how confidently it can be observed.

import "math"

const (
	// UndetectableLimitDb: at or below this SNR the signal cannot be separated
	// from internal variability in any realistic observing record.
	UndetectableLimitDb = -15.54

	// MinimumDetectableDb: signal power equals noise power.
	MinimumDetectableDb = 0.0

	// StandardConfidenceDb: conventional detection confidence (~4x power ratio).
	StandardConfidenceDb = 6.0

	// HighConfidenceDb: high-confidence detection (~9x power ratio).
	HighConfidenceDb = 9.5
)

// Category is the detectability class of an SNR value
type Category string

const (
	CategoryUndetectable         Category = "UNDETECTABLE"
	CategoryBelowThreshold       Category = "BELOW_THRESHOLD"
	CategoryMarginallyDetectable Category = "MARGINALLY_DETECTABLE"
	CategoryDetectable           Category = "DETECTABLE"
	CategoryHighConfidence       Category = "HIGH_CONFIDENCE"
)

// Classification pairs the detectability category with the Sakana pass flag
type Classification struct {
	Category            Category `json:"category"`
	SakanaPrinciplePass bool     `json:"sakana_principle_pass"`
}

// Classify maps an SNR in dB to its detectability category. It is total:
// NaN fails as undetectable, -Inf is undetectable and +Inf is high confidence.
func Classify(snrDb float64) Classification {
	if math.IsNaN(snrDb) {
		return Classification{Category: CategoryUndetectable, SakanaPrinciplePass: false}
	}

	var category Category
	switch {
	case snrDb <= UndetectableLimitDb:
		category = CategoryUndetectable
	case snrDb < MinimumDetectableDb:
		category = CategoryBelowThreshold
	case snrDb < StandardConfidenceDb:
		category = CategoryMarginallyDetectable
	case snrDb < HighConfidenceDb:
		category = CategoryDetectable
	default:
		category = CategoryHighConfidence
	}

	return Classification{
		Category:            category,
		SakanaPrinciplePass: snrDb > UndetectableLimitDb,
	}
}

// IsDetectable reports whether snrDb reaches the minimum detectable threshold
func IsDetectable(snrDb float64) bool {
	return !math.IsNaN(snrDb) && snrDb >= MinimumDetectableDb
}
