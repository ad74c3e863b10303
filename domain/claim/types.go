package claim

import (
	"strings"

	"geoverify/domain/core"
)

// Claim is a proposed scientific assertion submitted for validation.
// Validators attach results alongside it and never mutate it.
type Claim struct {
	ID                core.ClaimID       `json:"id"`
	Text              string             `json:"claim_text"`
	Domain            string             `json:"domain"`
	Parameters        map[string]float64 `json:"parameters,omitempty"`
	TheoreticalSignal []float64          `json:"theoretical_signal,omitempty"`
	RealDataset       *Dataset           `json:"real_dataset,omitempty"`
}

// Identity returns the claim ID, deriving a stable fingerprint when none was supplied
func (c Claim) Identity() core.ClaimID {
	if c.ID != "" {
		return c.ID
	}
	return core.ComputeClaimFingerprint(c.Text, c.Domain, c.Parameters)
}

// Dataset is an observational dataset with its authenticity attestation,
// as supplied by a dataset loader.
type Dataset struct {
	Name                 string    `json:"name"`
	Values               []float64 `json:"values"`
	Noise                []float64 `json:"noise,omitempty"`
	InstitutionalMarkers []string  `json:"institutional_markers_found,omitempty"`
	Authentic            bool      `json:"authentic"`
}

// SNRAnalysis summarizes the detectability of a claimed signal
type SNRAnalysis struct {
	Method     string  `json:"method"`
	SNRDb      float64 `json:"snr_db"`
	Detectable bool    `json:"detectable"`
}

// StatisticalValidation carries the significance statistics backing a claim
type StatisticalValidation struct {
	PValue             float64    `json:"p_value"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"`
	SampleSize         int        `json:"sample_size"`
	Power              float64    `json:"power"`
	EffectSize         float64    `json:"effect_size"`
}

// RealDataVerification records whether the data behind a claim is authentic
type RealDataVerification struct {
	AuthenticDataConfirmed  bool     `json:"authentic_data_confirmed"`
	InstitutionalValidation bool     `json:"institutional_validation"`
	SyntheticDataDetected   bool     `json:"synthetic_data_detected"`
	ProvenanceVerified      bool     `json:"provenance_verified"`
	MarkersFound            []string `json:"markers_found,omitempty"`
	SyntheticIndicators     []string `json:"synthetic_indicators,omitempty"`
}

// EvidenceBundle aggregates the empirical evidence for one claim. Sections
// are pointers so that a missing section is distinguishable from a zero one.
type EvidenceBundle struct {
	SNRAnalysis           *SNRAnalysis           `json:"snr_analysis,omitempty"`
	StatisticalValidation *StatisticalValidation `json:"statistical_validation,omitempty"`
	RealDataVerification  *RealDataVerification  `json:"real_data_verification,omitempty"`
}

// ExtractedClaim is one claim found by the paper parser
type ExtractedClaim struct {
	Text                 string   `json:"claim_text"`
	Type                 string   `json:"claim_type"`
	ConfidenceIndicators []string `json:"confidence_indicators,omitempty"`
}

// ParsedPaper is the opaque output of the external paper parser
type ParsedPaper struct {
	Title                  string            `json:"title"`
	Abstract               string            `json:"abstract,omitempty"`
	Sections               map[string]string `json:"sections,omitempty"`
	Equations              []string          `json:"equations,omitempty"`
	Citations              []string          `json:"citations,omitempty"`
	Claims                 []ExtractedClaim  `json:"claims,omitempty"`
	MathematicalStatements []string          `json:"mathematical_statements,omitempty"`
	ExperimentalDesigns    []string          `json:"experimental_designs,omitempty"`
}

// FullText concatenates the textual parts of the paper for pattern scoring.
// Sections are emitted in a fixed order so scoring is deterministic.
func (p ParsedPaper) FullText() string {
	var b strings.Builder
	write := func(s string) {
		if strings.TrimSpace(s) == "" {
			return
		}
		b.WriteString(s)
		b.WriteString("\n")
	}

	write(p.Title)
	write(p.Abstract)
	for _, name := range sortedKeys(p.Sections) {
		write(p.Sections[name])
	}
	for _, c := range p.Claims {
		write(c.Text)
	}
	for _, s := range p.MathematicalStatements {
		write(s)
	}
	for _, d := range p.ExperimentalDesigns {
		write(d)
	}
	return b.String()
}
