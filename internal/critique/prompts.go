package critique

import (
	"fmt"
	"strings"

	dcritique "geoverify/domain/critique"
)

type stageGuide struct {
	title     string
	focus     string
	questions []string
}

var stageGuides = map[dcritique.Stage]stageGuide{
	dcritique.StageInitialReview: {
		title: "Initial Review",
		focus: "Overall coherence of the claims and whether they are grounded in observable quantities.",
		questions: []string{
			"What are the central quantitative claims, and what data supports each one?",
			"Are the stated effects large enough to be observed against natural variability?",
			"Which claims rest on model output alone rather than observations?",
		},
	},
	dcritique.StageMethodologyChallenge: {
		title: "Methodology Challenge",
		focus: "Statistical and experimental methodology, including sample sizes, controls and significance testing.",
		questions: []string{
			"Are the statistical tests appropriate for the data and properly corrected for multiple comparisons?",
			"Is the signal-to-noise ratio reported, and does it exceed the detectability threshold?",
			"Could the reported results be reproduced from the described methods and data?",
		},
	},
	dcritique.StageAssumptionQuestioning: {
		title: "Assumption Questioning",
		focus: "Hidden and explicit assumptions about aerosol microphysics, transport and climate response.",
		questions: []string{
			"Which assumptions, if false, would invalidate the main conclusion?",
			"Are the parameter values used physically plausible for the stratosphere?",
			"Does the mathematical framework add explanatory power beyond simpler models?",
		},
	},
	dcritique.StageFundamentalFeasibility: {
		title: "Fundamental Feasibility",
		focus: "Physical possibility: conservation laws, energy balance and whether the intervention could ever be verified.",
		questions: []string{
			"Does any claim violate conservation of energy or mass?",
			"Is the implied climate sensitivity consistent with established estimates?",
			"Could the claimed effect be detected with any realistic observing system?",
		},
	},
}

// maxPriorFindings bounds how much history is replayed into a prompt
const maxPriorFindings = 8

// BuildPrompt renders the critique prompt for the next iteration at stage.
// followUp marks a repeated feasibility round.
func BuildPrompt(session *dcritique.Session, stage dcritique.Stage, followUp bool) string {
	guide := stageGuides[stage]

	var b strings.Builder
	fmt.Fprintf(&b, "ADVERSARIAL CRITIQUE - %s", strings.ToUpper(guide.title))
	if followUp {
		b.WriteString(" (FOLLOW-UP)")
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Paper: %s\nDomain: %s\nIteration: %d of at most %d\n\n",
		session.PaperTitle, session.Domain, len(session.Iterations)+1, MaxIterations)

	fmt.Fprintf(&b, "Focus: %s\n\nKey questions:\n", guide.focus)
	for i, q := range guide.questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}

	if session.EvidenceContext != "" {
		fmt.Fprintf(&b, "\nEvidence context:\n%s\n", session.EvidenceContext)
	}

	if prior := priorFindings(session); len(prior) > 0 {
		b.WriteString("\nPrior findings:\n")
		for _, f := range prior {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if followUp {
		b.WriteString("\nThe previous feasibility round left open questions. Address them directly.\n")
	}
	b.WriteString("\nBe specific. State plainly if any claim is physically impossible or unsupported by evidence.\n")
	return b.String()
}

// priorFindings collects red flags first, then key findings, newest iteration last
func priorFindings(session *dcritique.Session) []string {
	var flags, findings []string
	for _, it := range session.Iterations {
		if !it.Processed() {
			continue
		}
		flags = append(flags, it.RedFlags...)
		findings = append(findings, it.KeyFindings...)
	}

	out := make([]string, 0, maxPriorFindings)
	for _, f := range flags {
		if len(out) == maxPriorFindings {
			return out
		}
		out = append(out, "RED FLAG: "+f)
	}
	for _, f := range findings {
		if len(out) == maxPriorFindings {
			return out
		}
		out = append(out, f)
	}
	return out
}
