package critique

import (
	"fmt"
	"strings"

	"geoverify/domain/core"
)

// Stage is one step of the adversarial critique escalation ladder
type Stage int

const (
	StageInitialReview Stage = iota
	StageMethodologyChallenge
	StageAssumptionQuestioning
	StageFundamentalFeasibility
	// StageFinalSynthesis is reachable only by recording an external synthesis
	StageFinalSynthesis
)

var stageNames = [...]string{
	"initial_review",
	"methodology_challenge",
	"assumption_questioning",
	"fundamental_feasibility",
	"final_synthesis",
}

// OrderedStages lists the auto-generated stages in escalation order
var OrderedStages = []Stage{
	StageInitialReview,
	StageMethodologyChallenge,
	StageAssumptionQuestioning,
	StageFundamentalFeasibility,
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage maps a persisted string value back to a Stage
func ParseStage(v string) (Stage, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range stageNames {
		if name == v {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown critique stage %q", core.ErrInvalidInput, v)
}

func (s Stage) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stageNames) {
		return nil, fmt.Errorf("%w: invalid critique stage %d", core.ErrInvalidInput, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Result is the outcome of one critique iteration. The numeric order is the
// severity order, so the worst of two results is their maximum.
type Result int

const (
	ResultPassed Result = iota
	ResultConcernsRaised
	ResultFundamentalFlaws
	ResultPhysicallyImpossible
)

var resultNames = [...]string{
	"passed",
	"concerns_raised",
	"fundamental_flaws",
	"physically_impossible",
}

func (r Result) String() string {
	if r < 0 || int(r) >= len(resultNames) {
		return fmt.Sprintf("result(%d)", int(r))
	}
	return resultNames[r]
}

// ParseResult maps a persisted string value back to a Result
func ParseResult(v string) (Result, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range resultNames {
		if name == v {
			return Result(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown critique result %q", core.ErrInvalidInput, v)
}

func (r Result) MarshalText() ([]byte, error) {
	if r < 0 || int(r) >= len(resultNames) {
		return nil, fmt.Errorf("%w: invalid critique result %d", core.ErrInvalidInput, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Result) UnmarshalText(text []byte) error {
	parsed, err := ParseResult(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Worst returns the more severe of two results
func Worst(a, b Result) Result {
	return max(a, b)
}

// IsSevere reports whether the result should trigger the escalation skip
func (r Result) IsSevere() bool {
	return r == ResultFundamentalFlaws || r == ResultPhysicallyImpossible
}

// TrapScore is the fixed plausibility-trap score for a session-level result
func (r Result) TrapScore() float64 {
	switch r {
	case ResultPhysicallyImpossible:
		return 0.9
	case ResultFundamentalFlaws:
		return 0.7
	case ResultConcernsRaised:
		return 0.4
	default:
		return 0.1
	}
}

// Iteration is one step of the critique state machine. It is created before a
// response exists and filled in exactly once when the response arrives.
type Iteration struct {
	Number                int            `json:"iteration_number"`
	Stage                 Stage          `json:"stage"`
	Prompt                string         `json:"critique_prompt"`
	Response              *string        `json:"response"`
	KeyFindings           []string       `json:"key_findings"`
	RedFlags              []string       `json:"red_flags"`
	Result                Result         `json:"result"`
	Confidence            float64        `json:"confidence_rating"`
	RequiresNextIteration bool           `json:"requires_next_iteration"`
	CreatedAt             core.Timestamp `json:"created_at"`
	ProcessedAt           core.Timestamp `json:"processed_at"`
}

// Processed reports whether the external response has been applied
func (it *Iteration) Processed() bool {
	return it.Response != nil
}

// Session is the persisted record of one adversarial critique run. It owns
// its iterations exclusively; the list is append-only.
type Session struct {
	ID                    core.SessionID  `json:"session_id"`
	PaperTitle            string          `json:"paper_title"`
	Domain                string          `json:"domain"`
	Iterations            []*Iteration    `json:"iterations"`
	OverallResult         Result          `json:"overall_result"`
	PlausibilityTrapScore float64         `json:"plausibility_trap_score"`
	EvidenceContext       string          `json:"evidence_context,omitempty"`
	Synthesis             string          `json:"synthesis,omitempty"`
	CreatedAt             core.Timestamp  `json:"created_at"`
	UpdatedAt             core.Timestamp  `json:"updated_at"`
	CompletedAt           *core.Timestamp `json:"completed_at"`
}

// NewSession starts a session that is innocent until proven guilty
func NewSession(id core.SessionID, title, domain string) *Session {
	now := core.Now()
	return &Session{
		ID:                    id,
		PaperTitle:            title,
		Domain:                domain,
		Iterations:            []*Iteration{},
		OverallResult:         ResultPassed,
		PlausibilityTrapScore: ResultPassed.TrapScore(),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// IsComplete reports whether the session has stopped issuing iterations
func (s *Session) IsComplete() bool {
	return s.CompletedAt != nil
}

// Latest returns the most recent iteration or nil
func (s *Session) Latest() *Iteration {
	if len(s.Iterations) == 0 {
		return nil
	}
	return s.Iterations[len(s.Iterations)-1]
}

// Iteration returns the iteration with the given 1-based number
func (s *Session) Iteration(number int) (*Iteration, bool) {
	if number < 1 || number > len(s.Iterations) {
		return nil, false
	}
	return s.Iterations[number-1], true
}

// CurrentStage is the stage of the latest iteration, or final synthesis once recorded
func (s *Session) CurrentStage() Stage {
	if s.Synthesis != "" {
		return StageFinalSynthesis
	}
	if latest := s.Latest(); latest != nil {
		return latest.Stage
	}
	return StageInitialReview
}

// Status is the externally visible summary of a session
type Status struct {
	SessionID             core.SessionID  `json:"session_id"`
	PaperTitle            string          `json:"paper_title"`
	Domain                string          `json:"domain"`
	CurrentStage          Stage           `json:"current_stage"`
	IterationsCompleted   int             `json:"iterations_completed"`
	TotalIterations       int             `json:"total_iterations"`
	PendingIteration      int             `json:"pending_iteration,omitempty"`
	OverallResult         Result          `json:"overall_result"`
	PlausibilityTrapScore float64         `json:"plausibility_trap_score"`
	IsComplete            bool            `json:"is_complete"`
	RedFlags              []string        `json:"red_flags"`
	CompletedAt           *core.Timestamp `json:"completed_at"`
}
