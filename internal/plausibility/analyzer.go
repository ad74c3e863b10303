package plausibility

import (
	"sync"
	"time"

	"geoverify/domain/claim"
	"geoverify/internal"
	"geoverify/internal/scoring"
)

// Assessment is a full text analysis: the three scorer outputs plus the risk verdict
type Assessment struct {
	Sophistication scoring.ScoreResult `json:"sophistication"`
	Empirical      scoring.ScoreResult `json:"empirical_support"`
	RedFlags       scoring.ScoreResult `json:"red_flags"`
	Risk           RiskAssessment      `json:"risk"`
	AnalyzedAt     time.Time           `json:"analyzed_at"`
}

// Analyzer runs the scorers over text and feeds the risk engine.
// Safe for concurrent use.
type Analyzer struct {
	sophistication *scoring.Scorer
	empirical      *scoring.EmpiricalSupportScorer
	redFlags       *scoring.Scorer
	engine         *Engine
	logger         *internal.Logger
	historyLimit   int

	mu      sync.Mutex
	history []Assessment
}

// NewAnalyzer creates an analyzer. historyLimit <= 0 keeps everything.
func NewAnalyzer(logger *internal.Logger, historyLimit int) *Analyzer {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Analyzer{
		sophistication: scoring.NewSophisticationScorer(),
		empirical:      scoring.NewEmpiricalSupportScorer(),
		redFlags:       scoring.NewRedFlagScorer(),
		engine:         NewEngine(),
		logger:         logger.With("plausibility"),
		historyLimit:   historyLimit,
	}
}

// AnalyzeText scores text and optional evidence
func (a *Analyzer) AnalyzeText(text string, evidence *claim.EvidenceBundle) Assessment {
	sophistication := a.sophistication.Score(text)
	empirical := a.empirical.ScoreWithEvidence(text, evidence)
	redFlags := a.redFlags.Score(text)

	assessment := Assessment{
		Sophistication: sophistication,
		Empirical:      empirical,
		RedFlags:       redFlags,
		Risk:           a.engine.Assess(sophistication.Score, empirical.Score, redFlags.Score),
		AnalyzedAt:     time.Now().UTC(),
	}

	a.logger.Debug("risk %.3f (%s): S=%.2f E=%.2f R=%.2f",
		assessment.Risk.OverallRisk, assessment.Risk.RiskLevel,
		sophistication.Score, empirical.Score, redFlags.Score)

	a.record(assessment)
	return assessment
}

// AnalyzePaper scores the full text of a parsed paper
func (a *Analyzer) AnalyzePaper(paper claim.ParsedPaper, evidence *claim.EvidenceBundle) Assessment {
	return a.AnalyzeText(paper.FullText(), evidence)
}

func (a *Analyzer) record(assessment Assessment) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history, assessment)
	if a.historyLimit > 0 && len(a.history) > a.historyLimit {
		a.history = a.history[len(a.history)-a.historyLimit:]
	}
}

// History returns a copy of the retained assessments, oldest first
func (a *Analyzer) History() []Assessment {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Assessment, len(a.history))
	copy(out, a.history)
	return out
}

// LevelCounts tallies retained assessments by risk level
func (a *Analyzer) LevelCounts() map[RiskLevel]int {
	counts := make(map[RiskLevel]int)
	for _, h := range a.History() {
		counts[h.Risk.RiskLevel]++
	}
	return counts
}
