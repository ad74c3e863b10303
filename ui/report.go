package ui

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	dcritique "geoverify/domain/critique"
	"geoverify/domain/verdict"
	"geoverify/internal/compliance"
	"geoverify/internal/critique"
)

// renderMarkdown converts a report to HTML. Raw HTML in the source is dropped,
// so paper titles and critic responses cannot inject markup.
func renderMarkdown(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank,
	})
	return markdown.Render(p.Parse(md), renderer)
}

// SessionMarkdown renders a critique session as a markdown report
func SessionMarkdown(session *dcritique.Session) []byte {
	status := critique.StatusOf(session)
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Critique: %s\n\n", inline(session.PaperTitle))
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Session | `%s` |\n", session.ID)
	fmt.Fprintf(&b, "| Domain | %s |\n", cell(session.Domain))
	fmt.Fprintf(&b, "| Overall result | **%s** |\n", session.OverallResult)
	fmt.Fprintf(&b, "| Plausibility trap score | %.1f |\n", session.PlausibilityTrapScore)
	fmt.Fprintf(&b, "| Iterations | %d of %d processed |\n", status.IterationsCompleted, status.TotalIterations)
	if status.IsComplete {
		fmt.Fprintf(&b, "| Completed | %s |\n", status.CompletedAt.Time().Format("2006-01-02 15:04 MST"))
	} else {
		fmt.Fprintf(&b, "| Awaiting | iteration %d (%s) |\n", status.PendingIteration, status.CurrentStage)
	}
	b.WriteString("\n")

	if session.EvidenceContext != "" {
		b.WriteString("## Evidence context\n\n")
		quote(&b, session.EvidenceContext)
	}

	for _, it := range session.Iterations {
		fmt.Fprintf(&b, "## Iteration %d: %s\n\n", it.Number, strings.ReplaceAll(it.Stage.String(), "_", " "))
		if !it.Processed() {
			b.WriteString("_Awaiting response._\n\n")
			continue
		}
		fmt.Fprintf(&b, "Result **%s**, confidence %.2f.\n\n", it.Result, it.Confidence)
		if len(it.RedFlags) > 0 {
			b.WriteString("Red flags:\n\n")
			for _, f := range it.RedFlags {
				fmt.Fprintf(&b, "- %s\n", inline(f))
			}
			b.WriteString("\n")
		}
		if len(it.KeyFindings) > 0 {
			b.WriteString("Key findings:\n\n")
			for _, f := range it.KeyFindings {
				fmt.Fprintf(&b, "- %s\n", inline(f))
			}
			b.WriteString("\n")
		}
		if it.Response != nil {
			quote(&b, *it.Response)
		}
	}

	if session.Synthesis != "" {
		b.WriteString("## Synthesis\n\n")
		quote(&b, session.Synthesis)
	}
	return b.Bytes()
}

// SessionListMarkdown renders a table of sessions, most recent first
func SessionListMarkdown(sessions []*dcritique.Session) []byte {
	var b bytes.Buffer
	b.WriteString("# Critique sessions\n\n")
	if len(sessions) == 0 {
		b.WriteString("_No sessions yet._\n")
		return b.Bytes()
	}

	b.WriteString("| Paper | Domain | Result | Trap score | Iterations | Complete |\n|---|---|---|---|---|---|\n")
	for _, s := range sessions {
		status := critique.StatusOf(s)
		fmt.Fprintf(&b, "| [%s](/reports/sessions/%s) | %s | %s | %.1f | %d | %t |\n",
			cell(s.PaperTitle), s.ID, cell(s.Domain), s.OverallResult,
			s.PlausibilityTrapScore, status.TotalIterations, status.IsComplete)
	}
	return b.Bytes()
}

// ComplianceMarkdown renders compliance statistics
func ComplianceMarkdown(st compliance.Statistics) []byte {
	var b bytes.Buffer
	b.WriteString("# Compliance statistics\n\n")
	fmt.Fprintf(&b, "%d validations: %d passed, %d rejected (pass rate %.1f%%).\n\n",
		st.TotalValidations, st.Passed, st.Rejected, 100*st.PassRate)

	if len(st.ReasonCounts) > 0 {
		reasons := make([]verdict.RejectionReason, 0, len(st.ReasonCounts))
		for r := range st.ReasonCounts {
			reasons = append(reasons, r)
		}
		sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

		b.WriteString("| Rejection reason | Count |\n|---|---|\n")
		for _, r := range reasons {
			fmt.Fprintf(&b, "| %s | %d |\n", r, st.ReasonCounts[r])
		}
		b.WriteString("\n")
	}

	if len(st.ConfidenceCounts) > 0 {
		levels := make([]verdict.ConfidenceLevel, 0, len(st.ConfidenceCounts))
		for l := range st.ConfidenceCounts {
			levels = append(levels, l)
		}
		sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

		b.WriteString("| Confidence | Count |\n|---|---|\n")
		for _, l := range levels {
			fmt.Fprintf(&b, "| %s | %d |\n", l, st.ConfidenceCounts[l])
		}
	}
	return b.Bytes()
}

func quote(b *bytes.Buffer, text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// inline flattens text onto one line
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cell makes text safe inside a table cell
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(inline(s), "|", `\|`)
}
