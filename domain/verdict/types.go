package verdict

// Decision is the Sakana compliance outcome for one claim
type Decision string

const (
	DecisionPass   Decision = "PASS"
	DecisionReject Decision = "REJECT"
)

// RejectionReason explains why a claim was rejected. Parameter violations
// are carried verbatim from the domain validator and are not enumerated here.
type RejectionReason string

const (
	ReasonSyntheticDataDetected     RejectionReason = "SYNTHETIC_DATA_DETECTED"
	ReasonAuthenticDataNotConfirmed RejectionReason = "AUTHENTIC_DATA_NOT_CONFIRMED"
	ReasonUndetectableSignal        RejectionReason = "UNDETECTABLE_SIGNAL"
	ReasonDomainParameterViolation  RejectionReason = "DOMAIN_PARAMETER_VIOLATION"
)

// WarningDetectabilityInconsistent flags evidence whose detectable flag
// disagrees with its SNR; the flag is reported, never corrected.
const WarningDetectabilityInconsistent = "DETECTABILITY_FLAG_INCONSISTENT"

// ConfidenceLevel grades a passing compliance decision
type ConfidenceLevel string

const (
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceModerate ConfidenceLevel = "MODERATE"
	ConfidenceLow      ConfidenceLevel = "LOW"
	ConfidenceNone     ConfidenceLevel = "NONE"
)

// NormalizedVerdict is a validation layer's verdict mapped onto the shared scale
type NormalizedVerdict string

const (
	VerdictFlawed      NormalizedVerdict = "flawed"
	VerdictValid       NormalizedVerdict = "valid"
	VerdictNeedsReview NormalizedVerdict = "needs_review"
	VerdictUnknown     NormalizedVerdict = "unknown"
)

// Sign is the signed contribution of a verdict to the consensus score
func (v NormalizedVerdict) Sign() float64 {
	switch v {
	case VerdictFlawed:
		return 1.0
	case VerdictValid:
		return -1.0
	case VerdictNeedsReview:
		return 0.5
	default:
		return 0.0
	}
}

// ConsensusVerdict is the adjudicated outcome across validation layers
type ConsensusVerdict string

const (
	ConsensusRequiresHumanReview ConsensusVerdict = "consensus_requires_human_review"
	ConsensusPaperFlawed         ConsensusVerdict = "consensus_paper_flawed"
	ConsensusPaperValid          ConsensusVerdict = "consensus_paper_valid"
	ConsensusPaperSuspicious     ConsensusVerdict = "consensus_paper_suspicious"
	ConsensusUncertain           ConsensusVerdict = "consensus_uncertain"
)

// ConflictSeverity grades disagreement between validation layers
type ConflictSeverity string

const (
	ConflictNone     ConflictSeverity = "NONE"
	ConflictModerate ConflictSeverity = "MODERATE"
	ConflictHigh     ConflictSeverity = "HIGH"
)
