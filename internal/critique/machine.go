// Package critique drives adversarial critique sessions: a bounded sequence
// of staged prompts whose externally supplied responses are graded by keyword
// severity and folded into a worst-result-wins session assessment.
package critique

import (
	"math"

	dcritique "geoverify/domain/critique"
)

// MaxIterations is the hard cap on iterations per session
const MaxIterations = 5

// NextStage applies the escalation rule. Severe results skip straight to the
// feasibility stage; the feasibility stage itself has no successor.
func NextStage(current dcritique.Stage, result dcritique.Result) (dcritique.Stage, bool) {
	if current == dcritique.StageFundamentalFeasibility || current == dcritique.StageFinalSynthesis {
		return 0, false
	}
	if result.IsSevere() {
		return dcritique.StageFundamentalFeasibility, true
	}
	return current + 1, true
}

// ResponseAnalysis is the grading of one critic response
type ResponseAnalysis struct {
	Result                dcritique.Result `json:"result"`
	Confidence            float64          `json:"confidence_rating"`
	RequiresNextIteration bool             `json:"requires_next_iteration"`
	KeyFindings           []string         `json:"key_findings"`
	RedFlags              []string         `json:"red_flags"`
	Counts                KeywordCounts    `json:"keyword_counts"`
}

// AnalyzeResponse grades a response given at stage. Precedence is
// catastrophic, then critical (>2), then critical or concerning (>3), then pass.
func AnalyzeResponse(text string, stage dcritique.Stage) ResponseAnalysis {
	counts := CountKeywords(text)
	analysis := ResponseAnalysis{
		Counts:      counts,
		KeyFindings: ExtractKeyFindings(text),
		RedFlags:    ExtractRedFlags(text),
	}

	switch {
	case counts.Catastrophic > 0:
		analysis.Result = dcritique.ResultPhysicallyImpossible
		analysis.Confidence = math.Min(0.9, 0.5+0.1*float64(counts.Catastrophic))
		analysis.RequiresNextIteration = counts.Catastrophic < 3
	case counts.Critical > 2:
		analysis.Result = dcritique.ResultFundamentalFlaws
		analysis.Confidence = math.Min(0.8, 0.4+0.1*float64(counts.Critical))
		analysis.RequiresNextIteration = true
	case counts.Critical > 0 || counts.Concerning > 3:
		analysis.Result = dcritique.ResultConcernsRaised
		analysis.Confidence = math.Min(0.7, 0.3+0.05*float64(counts.Critical+counts.Concerning))
		analysis.RequiresNextIteration = true
	default:
		analysis.Result = dcritique.ResultPassed
		analysis.Confidence = math.Min(0.8, math.Max(0.2, 0.1*float64(counts.Positive)))
		analysis.RequiresNextIteration = stage != dcritique.StageFundamentalFeasibility
	}

	return analysis
}

// UpdateSessionAssessment recomputes the overall result as the worst result
// over processed iterations and refreshes the trap score.
func UpdateSessionAssessment(session *dcritique.Session) {
	overall := dcritique.ResultPassed
	for _, it := range session.Iterations {
		if it.Processed() {
			overall = dcritique.Worst(overall, it.Result)
		}
	}
	session.OverallResult = overall
	session.PlausibilityTrapScore = overall.TrapScore()
}
