package app

import (
	"context"
	"time"

	"geoverify/domain/claim"
	"geoverify/domain/core"
	dcritique "geoverify/domain/critique"
	"geoverify/domain/verdict"
	"geoverify/internal"
	"geoverify/internal/adjudication"
	"geoverify/internal/compliance"
	"geoverify/internal/critique"
	"geoverify/internal/errors"
	"geoverify/internal/evidence"
	"geoverify/internal/plausibility"
	"geoverify/internal/snr"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Layer names reported to the adjudicator by the pipeline itself
const (
	LayerNameInternal = "internal_verification"
	LayerNameSakana   = "sakana_compliance"
	LayerNameCritique = "internal_adversarial_critique"
)

// ClaimRequest is one claim plus whatever the caller already knows about it
type ClaimRequest struct {
	Claim             claim.Claim                         `json:"claim"`
	Evidence          *claim.EvidenceBundle               `json:"evidence,omitempty"`
	ExternalLayers    map[string]adjudication.LayerResult `json:"external_layers,omitempty"`
	CritiqueSessionID core.SessionID                      `json:"critique_session_id,omitempty"`
}

// ClaimReport is the full validation outcome for one claim
type ClaimReport struct {
	ClaimID      core.ClaimID            `json:"claim_id"`
	Evidence     *claim.EvidenceBundle   `json:"evidence"`
	SNR          *snr.Result             `json:"snr,omitempty"`
	TTest        *evidence.TTestResult   `json:"t_test,omitempty"`
	Plausibility plausibility.Assessment `json:"plausibility"`
	Compliance   *compliance.Result      `json:"compliance"`
	Critique     *dcritique.Status       `json:"critique,omitempty"`
	Adjudication *adjudication.Result    `json:"adjudication"`
	RuntimeMs    int64                   `json:"runtime_ms"`
}

// BatchItem is the outcome of one claim in a batch. Exactly one of Report
// and Error is set.
type BatchItem struct {
	Index     int          `json:"index"`
	ClaimID   core.ClaimID `json:"claim_id"`
	Report    *ClaimReport `json:"report,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorCode string       `json:"error_code,omitempty"`
}

// BatchResult collects a batch run in input order
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Compliant int         `json:"compliant"`
	RuntimeMs int64       `json:"runtime_ms"`
}

// ClaimValidationService runs the claim pipeline: evidence, plausibility,
// compliance and adjudication
type ClaimValidationService struct {
	builder     *evidence.Builder
	analyzer    *plausibility.Analyzer
	compliance  *compliance.Engine
	adjudicator *adjudication.Adjudicator
	critiques   *critique.Service
	method      snr.Method
	concurrency int64
	logger      *internal.Logger
}

// ClaimValidationDeps wires the engines the service drives. Critiques is optional.
type ClaimValidationDeps struct {
	Builder     *evidence.Builder
	Analyzer    *plausibility.Analyzer
	Compliance  *compliance.Engine
	Adjudicator *adjudication.Adjudicator
	Critiques   *critique.Service
	Method      snr.Method
	Concurrency int
	Logger      *internal.Logger
}

// NewClaimValidationService creates a claim validation service
func NewClaimValidationService(deps ClaimValidationDeps) *ClaimValidationService {
	logger := deps.Logger
	if logger == nil {
		logger = internal.NopLogger()
	}
	method := deps.Method
	if method == "" {
		method = snr.MethodHansen
	}
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &ClaimValidationService{
		builder:     deps.Builder,
		analyzer:    deps.Analyzer,
		compliance:  deps.Compliance,
		adjudicator: deps.Adjudicator,
		critiques:   deps.Critiques,
		method:      method,
		concurrency: int64(concurrency),
		logger:      logger.With("claim_validation"),
	}
}

// ValidateClaim validates one claim with optional caller-supplied evidence
func (s *ClaimValidationService) ValidateClaim(ctx context.Context, c claim.Claim, supplied *claim.EvidenceBundle) (*ClaimReport, error) {
	return s.Validate(ctx, ClaimRequest{Claim: c, Evidence: supplied})
}

// Validate runs the full pipeline for one request. Only structural errors are
// returned; rejections are part of the report.
func (s *ClaimValidationService) Validate(ctx context.Context, req ClaimRequest) (*ClaimReport, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := req.Claim
	report := &ClaimReport{ClaimID: c.Identity()}

	bundle := req.Evidence
	if !complete(bundle) {
		built, err := s.builder.Build(c, s.method)
		if err != nil {
			return nil, errors.Wrapf(err, "evidence for claim %s", report.ClaimID)
		}
		bundle = evidence.Merge(bundle, built.Bundle)
		if req.Evidence == nil || req.Evidence.SNRAnalysis == nil {
			report.SNR = built.SNR
		}
		if req.Evidence == nil || req.Evidence.StatisticalValidation == nil {
			report.TTest = built.TTest
		}
	}
	report.Evidence = bundle

	report.Plausibility = s.analyzer.AnalyzeText(c.Text, bundle)

	result, err := s.compliance.Validate(c, bundle)
	if err != nil {
		return nil, err
	}
	report.Compliance = result

	layers := make(map[string]adjudication.LayerResult, len(req.ExternalLayers)+3)
	for name, layer := range req.ExternalLayers {
		layers[name] = layer
	}
	layers[LayerNameInternal] = internalLayer(report.Plausibility)
	layers[LayerNameSakana] = sakanaLayer(result)

	if req.CritiqueSessionID != "" {
		if s.critiques == nil {
			return nil, errors.ConfigurationError("critique sessions are not available")
		}
		status, err := s.critiques.GetSessionStatus(ctx, req.CritiqueSessionID)
		if err != nil {
			return nil, err
		}
		report.Critique = status
		layers[LayerNameCritique] = critiqueLayer(status)
	}

	adjudicated, err := s.adjudicator.Adjudicate(layers)
	if err != nil {
		return nil, err
	}
	report.Adjudication = adjudicated
	report.RuntimeMs = time.Since(start).Milliseconds()

	s.logger.Info("claim %s: %s, risk %s, consensus %s", report.ClaimID,
		result.Decision, report.Plausibility.Risk.RiskLevel, adjudicated.Verdict)
	return report, nil
}

// ValidateBatch validates claims concurrently, bounded by the configured
// concurrency. A failed claim is recorded on its item and does not stop the
// batch; only cancellation of ctx aborts it.
func (s *ClaimValidationService) ValidateBatch(ctx context.Context, reqs []ClaimRequest) (*BatchResult, error) {
	start := time.Now()
	items := make([]BatchItem, len(reqs))
	sem := semaphore.NewWeighted(s.concurrency)
	g, gctx := errgroup.WithContext(ctx)

	for i := range reqs {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			item := BatchItem{Index: i, ClaimID: reqs[i].Claim.Identity()}
			report, err := s.Validate(gctx, reqs[i])
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				item.Error = err.Error()
				item.ErrorCode = errors.GetCode(err)
				s.logger.Warn("batch claim %d (%s) failed: %v", i, item.ClaimID, err)
			} else {
				item.Report = report
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &BatchResult{Items: items, RuntimeMs: time.Since(start).Milliseconds()}
	for _, item := range items {
		if item.Report == nil {
			batch.Failed++
			continue
		}
		batch.Succeeded++
		if item.Report.Compliance.Compliant {
			batch.Compliant++
		}
	}
	s.logger.Info("batch of %d claims: %d succeeded, %d failed, %d compliant",
		len(reqs), batch.Succeeded, batch.Failed, batch.Compliant)
	return batch, nil
}

func complete(b *claim.EvidenceBundle) bool {
	return b != nil && b.SNRAnalysis != nil && b.StatisticalValidation != nil && b.RealDataVerification != nil
}

// internalLayer turns the plausibility risk into a flaw-detector verdict
func internalLayer(a plausibility.Assessment) adjudication.LayerResult {
	risk := a.Risk
	layer := adjudication.LayerResult{
		Details: adjudication.LayerDetails{Status: "completed"},
	}
	switch risk.RiskLevel {
	case plausibility.RiskCritical, plausibility.RiskHigh:
		layer.Verdict = "flawed"
		layer.Confidence = risk.OverallRisk
		layer.Details.FlawsDetected = a.RedFlags.MatchCount
	case plausibility.RiskModerate:
		layer.Verdict = "needs_review"
		layer.Confidence = 0.5
		layer.Details.FlawsDetected = a.RedFlags.MatchCount
	default:
		layer.Verdict = "valid"
		layer.Confidence = 1 - risk.OverallRisk
	}
	return layer
}

func sakanaLayer(r *compliance.Result) adjudication.LayerResult {
	layer := adjudication.LayerResult{
		Details: adjudication.LayerDetails{
			Status:        "completed",
			FlawsDetected: len(r.Reasons),
		},
	}
	if r.Compliant {
		layer.Verdict = "compliant"
		layer.Confidence = complianceConfidence[r.Confidence]
	} else {
		layer.Verdict = "non_compliant"
		layer.Confidence = 0.9
	}
	return layer
}

var complianceConfidence = map[verdict.ConfidenceLevel]float64{
	verdict.ConfidenceHigh:     0.9,
	verdict.ConfidenceModerate: 0.7,
	verdict.ConfidenceLow:      0.5,
}

func critiqueLayer(status *dcritique.Status) adjudication.LayerResult {
	layer := adjudication.LayerResult{
		Confidence: status.PlausibilityTrapScore,
		Details: adjudication.LayerDetails{
			FlawsDetected: len(status.RedFlags),
		},
	}
	if status.IsComplete {
		layer.Details.Status = "completed"
	} else {
		layer.Details.Status = "in_progress"
		layer.Details.Extra = map[string]any{
			"iterations_completed": status.IterationsCompleted,
			"total_iterations":     status.TotalIterations,
		}
	}
	switch status.OverallResult {
	case dcritique.ResultPhysicallyImpossible, dcritique.ResultFundamentalFlaws:
		layer.Verdict = "flawed"
	case dcritique.ResultConcernsRaised:
		layer.Verdict = "needs_review"
	default:
		layer.Verdict = "valid"
		layer.Confidence = 1 - status.PlausibilityTrapScore
	}
	return layer
}
