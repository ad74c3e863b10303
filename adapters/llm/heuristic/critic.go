// Package heuristic provides an offline critic that answers critique prompts
// from the plausibility assessment embedded in them.
package heuristic

import (
	"context"
	"fmt"
	"strings"

	"geoverify/internal/plausibility"
)

const riskMarker = "Plausibility risk:"

// replies per risk level. Each is phrased so the response analyzer grades it
// to the matching critique result.
var replies = map[plausibility.RiskLevel]string{
	plausibility.RiskCritical: "The proposed mechanism is physically impossible as presented. " +
		"No observational record supports an effect of this size.",
	plausibility.RiskHigh: "The framework has fundamental flaws. The detectability argument is invalid " +
		"and the attribution is unsupported by the cited data.",
	plausibility.RiskModerate: "The attribution is unsupported in places and the uncertainty budget is unclear. " +
		"These concerns should be addressed before publication.",
	plausibility.RiskLow: "The analysis appears sound and consistent with observations.",
	plausibility.RiskMinimal: "The methods are rigorous and the evidence is robust and convincing. " +
		"The analysis appears sound and consistent with observations.",
}

// Critic answers deterministically without a network call
type Critic struct{}

// NewCritic creates a heuristic critic
func NewCritic() *Critic {
	return &Critic{}
}

// Critique grades the prompt's recorded plausibility risk. Prompts without a
// risk line are treated as minimal risk.
func (c *Critic) Critique(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	risk, ok := parseRisk(prompt)
	level := plausibility.RiskMinimal
	if ok {
		level = plausibility.LevelFor(risk)
	}
	return fmt.Sprintf("Heuristic review (risk level %s). %s", level, replies[level]), nil
}

func parseRisk(prompt string) (float64, bool) {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, riskMarker) {
			continue
		}
		var risk float64
		if _, err := fmt.Sscanf(strings.TrimSpace(strings.TrimPrefix(line, riskMarker)), "%g", &risk); err != nil {
			return 0, false
		}
		return risk, true
	}
	return 0, false
}
