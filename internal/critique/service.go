package critique

import (
	"context"
	"fmt"
	"strings"

	"geoverify/domain/claim"
	"geoverify/domain/core"
	dcritique "geoverify/domain/critique"
	"geoverify/internal"
	"geoverify/internal/errors"
	"geoverify/internal/plausibility"
	"geoverify/internal/usage"
	"geoverify/ports"
)

// ProcessResult reports the grading of one response and what comes next
type ProcessResult struct {
	SessionID             core.SessionID       `json:"session_id"`
	IterationNumber       int                  `json:"iteration_number"`
	Stage                 dcritique.Stage      `json:"stage"`
	Result                dcritique.Result     `json:"result"`
	Confidence            float64              `json:"confidence_rating"`
	RequiresNextIteration bool                 `json:"requires_next_iteration"`
	KeyFindings           []string             `json:"key_findings"`
	RedFlags              []string             `json:"red_flags"`
	NextIteration         *dcritique.Iteration `json:"next_iteration,omitempty"`
	SessionComplete       bool                 `json:"session_complete"`
	IterationCapReached   bool                 `json:"iteration_cap_reached"`
	OverallResult         dcritique.Result     `json:"overall_result"`
	PlausibilityTrapScore float64              `json:"plausibility_trap_score"`
}

// Service runs critique sessions against a repository. Calls for the same
// session are serialized; different sessions proceed independently.
type Service struct {
	repo          ports.CritiqueSessionRepository
	maxIterations int
	logger        *internal.Logger
	locks         *sessionLocks
}

// NewService creates a critique service. maxIterations is clamped to [1, MaxIterations].
func NewService(repo ports.CritiqueSessionRepository, maxIterations int, logger *internal.Logger) *Service {
	if maxIterations <= 0 || maxIterations > MaxIterations {
		maxIterations = MaxIterations
	}
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Service{
		repo:          repo,
		maxIterations: maxIterations,
		logger:        logger.With("critique"),
		locks:         newSessionLocks(),
	}
}

// StartSession creates a session for paper and issues the initial review prompt.
// assessment, when present, is summarized into the evidence context of every prompt.
func (s *Service) StartSession(ctx context.Context, paper claim.ParsedPaper, domain string, assessment *plausibility.Assessment) (core.SessionID, error) {
	if strings.TrimSpace(paper.Title) == "" {
		return "", errors.InvalidInput("paper title is required")
	}

	session := dcritique.NewSession(core.NewSessionID(), paper.Title, domain)
	session.EvidenceContext = evidenceContext(paper, assessment)
	s.appendIteration(session, dcritique.StageInitialReview, false)

	if err := s.repo.Save(ctx, session); err != nil {
		return "", errors.Wrap(err, "failed to save new critique session")
	}

	s.logger.Info("started critique session %s for %q (%s)", session.ID, paper.Title, domain)
	return session.ID, nil
}

// PendingIteration returns the iteration awaiting a response, or nil when the session is complete
func (s *Service) PendingIteration(ctx context.Context, id core.SessionID) (*dcritique.Iteration, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if latest := session.Latest(); latest != nil && !latest.Processed() && !session.IsComplete() {
		return latest, nil
	}
	return nil, nil
}

// ProcessResponse applies the critic's response to an iteration, updates the
// session assessment and issues the next iteration when one is required.
func (s *Service) ProcessResponse(ctx context.Context, id core.SessionID, iterationNumber int, response string) (*ProcessResult, error) {
	release := s.locks.acquire(id)
	defer release()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsComplete() {
		return nil, errors.Conflict(fmt.Sprintf("critique session %s is complete", id), core.ErrSessionComplete)
	}

	iteration, ok := session.Iteration(iterationNumber)
	if !ok {
		return nil, errors.IterationNotFound(id.String(), iterationNumber)
	}
	if iteration.Processed() {
		return nil, errors.Conflict(
			fmt.Sprintf("iteration %d of session %s already processed", iterationNumber, id), core.ErrIterationProcessed)
	}

	analysis := AnalyzeResponse(response, iteration.Stage)
	iteration.Response = &response
	iteration.Result = analysis.Result
	iteration.Confidence = analysis.Confidence
	iteration.RequiresNextIteration = analysis.RequiresNextIteration
	iteration.KeyFindings = analysis.KeyFindings
	iteration.RedFlags = analysis.RedFlags
	iteration.ProcessedAt = core.Now()

	UpdateSessionAssessment(session)

	result := &ProcessResult{
		SessionID:             id,
		IterationNumber:       iterationNumber,
		Stage:                 iteration.Stage,
		Result:                analysis.Result,
		Confidence:            analysis.Confidence,
		RequiresNextIteration: analysis.RequiresNextIteration,
		KeyFindings:           analysis.KeyFindings,
		RedFlags:              analysis.RedFlags,
	}

	switch {
	case !analysis.RequiresNextIteration:
		s.complete(session)
	case len(session.Iterations) >= s.maxIterations:
		result.IterationCapReached = true
		s.complete(session)
		s.logger.Warn("critique session %s reached the %d iteration cap", id, s.maxIterations)
	default:
		next, ok := NextStage(iteration.Stage, analysis.Result)
		followUp := !ok
		if followUp {
			next = dcritique.StageFundamentalFeasibility
		}
		result.NextIteration = s.appendIteration(session, next, followUp)
	}

	session.UpdatedAt = core.Now()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, errors.Wrapf(err, "failed to save critique session %s", id)
	}

	result.SessionComplete = session.IsComplete()
	result.OverallResult = session.OverallResult
	result.PlausibilityTrapScore = session.PlausibilityTrapScore

	s.logger.Debug("session %s iteration %d (%s): %s, confidence %.2f",
		id, iterationNumber, iteration.Stage, analysis.Result, analysis.Confidence)
	return result, nil
}

// GetSessionStatus summarizes a session
func (s *Service) GetSessionStatus(ctx context.Context, id core.SessionID) (*dcritique.Status, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return StatusOf(session), nil
}

// GetSession returns the full session record
func (s *Service) GetSession(ctx context.Context, id core.SessionID) (*dcritique.Session, error) {
	return s.repo.Get(ctx, id)
}

// ListSessions returns recent sessions, newest first
func (s *Service) ListSessions(ctx context.Context, limit int) ([]*dcritique.Session, error) {
	return s.repo.List(ctx, limit)
}

// RecordSynthesis attaches the external final synthesis to a completed session
func (s *Service) RecordSynthesis(ctx context.Context, id core.SessionID, synthesis string) (*dcritique.Status, error) {
	if strings.TrimSpace(synthesis) == "" {
		return nil, errors.InvalidInput("synthesis text is required")
	}

	release := s.locks.acquire(id)
	defer release()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsComplete() {
		return nil, errors.InvalidInput(fmt.Sprintf("critique session %s is still awaiting responses", id))
	}

	session.Synthesis = synthesis
	session.UpdatedAt = core.Now()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, errors.Wrapf(err, "failed to save critique session %s", id)
	}
	return StatusOf(session), nil
}

// RunWithCritic drives a session to completion by sending each pending prompt
// to critic and processing its reply. Critic calls are attributed to the
// session through ctx for usage accounting.
func (s *Service) RunWithCritic(ctx context.Context, id core.SessionID, critic ports.Critic) (*dcritique.Status, error) {
	ctx = usage.WithSession(ctx, id)
	for range s.maxIterations {
		pending, err := s.PendingIteration(ctx, id)
		if err != nil {
			return nil, err
		}
		if pending == nil {
			break
		}

		response, err := critic.Critique(ctx, pending.Prompt)
		if err != nil {
			return nil, errors.ExternalServiceError("critic", err)
		}

		result, err := s.ProcessResponse(ctx, id, pending.Number, response)
		if err != nil {
			return nil, err
		}
		if result.SessionComplete {
			break
		}
	}
	return s.GetSessionStatus(ctx, id)
}

func (s *Service) appendIteration(session *dcritique.Session, stage dcritique.Stage, followUp bool) *dcritique.Iteration {
	iteration := &dcritique.Iteration{
		Number:      len(session.Iterations) + 1,
		Stage:       stage,
		Prompt:      BuildPrompt(session, stage, followUp),
		KeyFindings: []string{},
		RedFlags:    []string{},
		CreatedAt:   core.Now(),
	}
	session.Iterations = append(session.Iterations, iteration)
	return iteration
}

func (s *Service) complete(session *dcritique.Session) {
	now := core.Now()
	session.CompletedAt = &now
	s.logger.Info("critique session %s complete: %s (trap score %.1f)",
		session.ID, session.OverallResult, session.PlausibilityTrapScore)
}

// StatusOf builds the externally visible status of a session
func StatusOf(session *dcritique.Session) *dcritique.Status {
	status := &dcritique.Status{
		SessionID:             session.ID,
		PaperTitle:            session.PaperTitle,
		Domain:                session.Domain,
		CurrentStage:          session.CurrentStage(),
		TotalIterations:       len(session.Iterations),
		OverallResult:         session.OverallResult,
		PlausibilityTrapScore: session.PlausibilityTrapScore,
		IsComplete:            session.IsComplete(),
		RedFlags:              []string{},
		CompletedAt:           session.CompletedAt,
	}
	for _, it := range session.Iterations {
		if it.Processed() {
			status.IterationsCompleted++
			status.RedFlags = append(status.RedFlags, it.RedFlags...)
		} else if !session.IsComplete() {
			status.PendingIteration = it.Number
		}
	}
	return status
}

func evidenceContext(paper claim.ParsedPaper, assessment *plausibility.Assessment) string {
	var lines []string
	if paper.Abstract != "" {
		lines = append(lines, "Abstract: "+paper.Abstract)
	}
	if assessment != nil {
		r := assessment.Risk
		lines = append(lines,
			fmt.Sprintf("Plausibility risk: %.2f (%s, %s)", r.OverallRisk, r.RiskLevel, r.Assessment),
			fmt.Sprintf("Sophistication %.2f, empirical support %.2f, red flags %.2f",
				r.SophisticationScore, r.EmpiricalScore, r.RedFlagScore))
		if len(assessment.RedFlags.MatchedTerms) > 0 {
			lines = append(lines, "Red-flag vocabulary: "+strings.Join(assessment.RedFlags.MatchedTerms, ", "))
		}
	}
	return strings.Join(lines, "\n")
}
