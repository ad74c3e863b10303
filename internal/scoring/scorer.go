// Package scoring provides the text-pattern scorers that feed the
// plausibility risk engine.
package scoring

import (
	"math"
	"regexp"

	"geoverify/domain/claim"
)

const (
	sophisticationNormalization = 5.0
	empiricalNormalization      = 5.0
	redFlagNormalization        = 3.0

	// EmpiricalTextCap and EmpiricalEvidenceCap bound the two halves of
	// the evidence-aware empirical score.
	EmpiricalTextCap     = 0.5
	EmpiricalEvidenceCap = 0.5
	evidenceItemWeight   = 0.2
)

type termPattern struct {
	term    string
	pattern string
}

type compiledTerm struct {
	term string
	re   *regexp.Regexp
}

// ScoreResult is the output of a single scorer run
type ScoreResult struct {
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms"`
	MatchCount   int      `json:"match_count"`
}

// Scorer counts occurrences of a fixed term table in text and saturates
// linearly: score = min(count/normalization, 1).
type Scorer struct {
	name          string
	terms         []compiledTerm
	normalization float64
}

func newScorer(name string, table []termPattern, normalization float64) *Scorer {
	terms := make([]compiledTerm, len(table))
	for i, tp := range table {
		terms[i] = compiledTerm{
			term: tp.term,
			re:   regexp.MustCompile(`(?i)\b(?:` + tp.pattern + `)\b`),
		}
	}
	return &Scorer{name: name, terms: terms, normalization: normalization}
}

// NewSophisticationScorer detects mathematical machinery
func NewSophisticationScorer() *Scorer {
	return newScorer("sophistication", sophisticationTerms, sophisticationNormalization)
}

// NewRedFlagScorer detects hype vocabulary
func NewRedFlagScorer() *Scorer {
	return newScorer("red_flag", redFlagTerms, redFlagNormalization)
}

// Name returns the scorer name
func (s *Scorer) Name() string {
	return s.name
}

// Score matches every term against text
func (s *Scorer) Score(text string) ScoreResult {
	result := ScoreResult{MatchedTerms: []string{}}
	for _, t := range s.terms {
		matches := len(t.re.FindAllStringIndex(text, -1))
		if matches == 0 {
			continue
		}
		result.MatchCount += matches
		result.MatchedTerms = append(result.MatchedTerms, t.term)
	}
	result.Score = math.Min(float64(result.MatchCount)/s.normalization, 1.0)
	return result
}

// EmpiricalSupportScorer scores grounding in data, optionally crediting
// attached evidence.
type EmpiricalSupportScorer struct {
	*Scorer
}

// NewEmpiricalSupportScorer creates the empirical support scorer
func NewEmpiricalSupportScorer() *EmpiricalSupportScorer {
	return &EmpiricalSupportScorer{Scorer: newScorer("empirical_support", empiricalTerms, empiricalNormalization)}
}

// ScoreWithEvidence combines the text score (capped at 0.5) with 0.2 per
// evidence item present (capped at 0.5). A nil bundle contributes nothing.
func (s *EmpiricalSupportScorer) ScoreWithEvidence(text string, evidence *claim.EvidenceBundle) ScoreResult {
	result := s.Score(text)
	textPart := math.Min(result.Score, EmpiricalTextCap)
	evidencePart := math.Min(EvidenceCredit(evidence), EmpiricalEvidenceCap)
	result.Score = math.Min(textPart+evidencePart, 1.0)
	return result
}

// EvidenceCredit is the uncapped evidence contribution of a bundle
func EvidenceCredit(evidence *claim.EvidenceBundle) float64 {
	if evidence == nil {
		return 0
	}
	credit := 0.0
	if evidence.SNRAnalysis != nil {
		credit += evidenceItemWeight
	}
	if evidence.StatisticalValidation != nil {
		credit += evidenceItemWeight
	}
	if evidence.RealDataVerification != nil && evidence.RealDataVerification.AuthenticDataConfirmed {
		credit += evidenceItemWeight
	}
	return credit
}
