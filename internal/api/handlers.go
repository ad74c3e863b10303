// Package api exposes critique sessions, claim validation and adjudication
// as a JSON HTTP API.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"geoverify/app"
	"geoverify/domain/claim"
	"geoverify/domain/core"
	dcritique "geoverify/domain/critique"
	"geoverify/internal"
	"geoverify/internal/adjudication"
	"geoverify/internal/compliance"
	"geoverify/internal/critique"
	"geoverify/internal/errors"
	"geoverify/internal/plausibility"
	"geoverify/internal/usage"
	"geoverify/ports"
)

const (
	defaultListLimit = 20
	maxBatchSize     = 100
)

// Dependencies are the services the handlers call. Critic, Events and Usage
// are optional.
type Dependencies struct {
	Critiques   *critique.Service
	Claims      *app.ClaimValidationService
	Compliance  *compliance.Engine
	Adjudicator *adjudication.Adjudicator
	Analyzer    *plausibility.Analyzer
	Critic      ports.Critic
	Events      EventBroadcaster
	Usage       *usage.Service
	ListLimit   int
	Logger      *internal.Logger
}

// Handler serves the JSON API
type Handler struct {
	critiques   *critique.Service
	claims      *app.ClaimValidationService
	compliance  *compliance.Engine
	adjudicator *adjudication.Adjudicator
	analyzer    *plausibility.Analyzer
	critic      ports.Critic
	events      EventBroadcaster
	usage       *usage.Service
	listLimit   int
	started     time.Time
	logger      *internal.Logger
}

// NewHandler creates the API handler
func NewHandler(deps Dependencies) *Handler {
	if deps.Logger == nil {
		deps.Logger = internal.NopLogger()
	}
	if deps.ListLimit <= 0 {
		deps.ListLimit = defaultListLimit
	}
	return &Handler{
		critiques:   deps.Critiques,
		claims:      deps.Claims,
		compliance:  deps.Compliance,
		adjudicator: deps.Adjudicator,
		analyzer:    deps.Analyzer,
		critic:      deps.Critic,
		events:      deps.Events,
		usage:       deps.Usage,
		listLimit:   deps.ListLimit,
		started:     time.Now().UTC(),
		logger:      deps.Logger.With("api"),
	}
}

type startSessionRequest struct {
	Paper    claim.ParsedPaper     `json:"paper"`
	Domain   string                `json:"domain"`
	Evidence *claim.EvidenceBundle `json:"evidence,omitempty"`
}

type startSessionResponse struct {
	SessionID    core.SessionID          `json:"session_id"`
	Iteration    *dcritique.Iteration    `json:"iteration"`
	Plausibility plausibility.Assessment `json:"plausibility"`
}

// StartSession handles POST /critique/sessions
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest(err))
		return
	}

	ctx := c.Request.Context()
	assessment := h.analyzer.AnalyzePaper(req.Paper, req.Evidence)
	id, err := h.critiques.StartSession(ctx, req.Paper, req.Domain, &assessment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pending, err := h.critiques.PendingIteration(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(SessionEvent{
		SessionID: id.String(),
		EventType: EventSessionStarted,
		Iteration: pending.Number,
		Data:      map[string]any{"paper_title": req.Paper.Title, "domain": req.Domain},
	})
	c.JSON(http.StatusCreated, startSessionResponse{SessionID: id, Iteration: pending, Plausibility: assessment})
}

// ListSessions handles GET /critique/sessions?limit=N
func (h *Handler) ListSessions(c *gin.Context) {
	limit := h.listLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondError(c, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	sessions, err := h.critiques.ListSessions(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	statuses := make([]*dcritique.Status, 0, len(sessions))
	for _, s := range sessions {
		statuses = append(statuses, critique.StatusOf(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": statuses, "count": len(statuses)})
}

type sessionView struct {
	Status     *dcritique.Status      `json:"status"`
	Iterations []*dcritique.Iteration `json:"iterations"`
	Synthesis  string                 `json:"synthesis,omitempty"`
}

// GetSession handles GET /critique/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	id, err := sessionParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	session, err := h.critiques.GetSession(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView{
		Status:     critique.StatusOf(session),
		Iterations: session.Iterations,
		Synthesis:  session.Synthesis,
	})
}

type submitResponseRequest struct {
	IterationNumber int    `json:"iteration_number" binding:"required,min=1"`
	Response        string `json:"response"`
}

// SubmitResponse handles POST /critique/sessions/:id/responses
func (h *Handler) SubmitResponse(c *gin.Context) {
	id, err := sessionParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest(err))
		return
	}

	result, err := h.critiques.ProcessResponse(c.Request.Context(), id, req.IterationNumber, req.Response)
	if err != nil {
		h.respondError(c, err)
		return
	}

	for _, event := range processEvents(result) {
		h.publish(event)
	}
	c.JSON(http.StatusOK, result)
}

type synthesisRequest struct {
	Synthesis string `json:"synthesis"`
}

// RecordSynthesis handles POST /critique/sessions/:id/synthesis
func (h *Handler) RecordSynthesis(c *gin.Context) {
	id, err := sessionParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req synthesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest(err))
		return
	}

	status, err := h.critiques.RecordSynthesis(c.Request.Context(), id, req.Synthesis)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(statusEvent(EventSynthesisRecorded, status))
	c.JSON(http.StatusOK, status)
}

// RunCritic handles POST /critique/sessions/:id/run, driving the session with
// the configured critic until it completes
func (h *Handler) RunCritic(c *gin.Context) {
	if h.critic == nil {
		h.respondError(c, errors.ConfigurationError("no critic is configured"))
		return
	}

	id, err := sessionParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status, err := h.critiques.RunWithCritic(c.Request.Context(), id, h.critic)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if status.IsComplete {
		h.publish(statusEvent(EventSessionCompleted, status))
	}
	c.JSON(http.StatusOK, status)
}

// SessionUsage handles GET /critique/sessions/:id/usage
func (h *Handler) SessionUsage(c *gin.Context) {
	id, err := sessionParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.critiques.GetSessionStatus(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	summary, err := h.usage.SessionUsage(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// validateRequest is a single claim request, or a batch when Batch is non-empty
type validateRequest struct {
	app.ClaimRequest
	Batch []app.ClaimRequest `json:"batch,omitempty"`
}

// ValidateClaims handles POST /claims/validate
func (h *Handler) ValidateClaims(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest(err))
		return
	}

	ctx := c.Request.Context()
	if len(req.Batch) > 0 {
		if len(req.Batch) > maxBatchSize {
			h.respondError(c, errors.InvalidInput("batch exceeds "+strconv.Itoa(maxBatchSize)+" claims"))
			return
		}
		result, err := h.claims.ValidateBatch(ctx, req.Batch)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	report, err := h.claims.Validate(ctx, req.ClaimRequest)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type complianceRequest struct {
	Claim    claim.Claim           `json:"claim"`
	Evidence *claim.EvidenceBundle `json:"evidence"`
}

// ValidateCompliance handles POST /compliance/validate
func (h *Handler) ValidateCompliance(c *gin.Context) {
	var req complianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest(err))
		return
	}

	result, err := h.compliance.Validate(req.Claim, req.Evidence)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ComplianceStatistics handles GET /compliance/statistics
func (h *Handler) ComplianceStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.compliance.Statistics())
}

type adjudicateRequest struct {
	Layers map[string]adjudication.LayerResult `json:"layers"`
}

// Adjudicate handles POST /adjudicate
func (h *Handler) Adjudicate(c *gin.Context) {
	var req adjudicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest(err))
		return
	}

	result, err := h.adjudicator.Adjudicate(req.Layers)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"critic_enabled": h.critic != nil,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

func (h *Handler) publish(event SessionEvent) {
	if h.events != nil {
		h.events.Broadcast(event)
	}
}

// sessionParam parses the :id path parameter. A malformed ID cannot name a
// stored session, so it is reported as not found.
func sessionParam(c *gin.Context) (core.SessionID, error) {
	raw := c.Param("id")
	id, err := core.ParseSessionID(raw)
	if err != nil {
		return "", errors.SessionNotFound(raw)
	}
	return id, nil
}
