package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geoverify/domain/claim"
)

func TestSophisticationScorer(t *testing.T) {
	scorer := NewSophisticationScorer()

	tests := []struct {
		name  string
		text  string
		score float64
		terms []string
	}{
		{"no terms", "We measured temperatures at noon.", 0, []string{}},
		{"two terms", "A Volterra kernel expansion.", 0.4, []string{"volterra", "kernel"}},
		{"repeated terms count", "kernel kernel kernel", 0.6, []string{"kernel"}},
		{"saturates", "Volterra kernels, eigenvalues, tensors, manifolds and wavelets.", 1.0,
			[]string{"volterra", "kernel", "eigenvalue", "tensor", "wavelet", "manifold"}},
		{"word bounded", "kernelization and supertensors", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.text)
			assert.InDelta(t, tt.score, got.Score, 1e-12)
			assert.Equal(t, tt.terms, got.MatchedTerms)
		})
	}
}

func TestRedFlagScorer(t *testing.T) {
	scorer := NewRedFlagScorer()

	got := scorer.Score("An ELEGANT, revolutionary breakthrough.")
	assert.InDelta(t, 1.0, got.Score, 1e-12)
	assert.Equal(t, 3, got.MatchCount)

	got = scorer.Score("The undetectable effect")
	assert.InDelta(t, 1.0/3, got.Score, 1e-12)
}

func TestEmpiricalScoreWithEvidence(t *testing.T) {
	scorer := NewEmpiricalSupportScorer()
	text := "GLENS dataset observations with p-value and confidence interval from ERA5 reanalysis"

	full := &claim.EvidenceBundle{
		SNRAnalysis:           &claim.SNRAnalysis{Method: "hansen", SNRDb: 3},
		StatisticalValidation: &claim.StatisticalValidation{PValue: 0.01},
		RealDataVerification:  &claim.RealDataVerification{AuthenticDataConfirmed: true},
	}

	tests := []struct {
		name     string
		text     string
		evidence *claim.EvidenceBundle
		want     float64
	}{
		{"text only capped at half", text, nil, 0.5},
		{"text and full evidence", text, full, 1.0},
		{"evidence only", "", full, 0.5},
		{"single evidence item", "", &claim.EvidenceBundle{SNRAnalysis: &claim.SNRAnalysis{}}, 0.2},
		{"unconfirmed authenticity earns nothing", "", &claim.EvidenceBundle{
			RealDataVerification: &claim.RealDataVerification{AuthenticDataConfirmed: false},
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.ScoreWithEvidence(tt.text, tt.evidence)
			assert.InDelta(t, tt.want, got.Score, 1e-12)
		})
	}
}
