package compliance

import (
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoverify/domain/claim"
	"geoverify/domain/core"
	"geoverify/domain/verdict"
	"geoverify/internal/domainparams"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	params, err := domainparams.NewValidator(nil)
	require.NoError(t, err)
	return NewEngine(params, nil, 0)
}

func evidenceWith(snrDb float64, authentic bool) *claim.EvidenceBundle {
	return &claim.EvidenceBundle{
		SNRAnalysis:          &claim.SNRAnalysis{Method: "hansen", SNRDb: snrDb, Detectable: snrDb >= 0},
		RealDataVerification: &claim.RealDataVerification{AuthenticDataConfirmed: authentic},
	}
}

func climateClaim(params map[string]float64) claim.Claim {
	return claim.Claim{
		Text:       "Stratospheric sulfate injection cools the surface",
		Domain:     "climate",
		Parameters: params,
	}
}

func TestValidateEndToEndRejection(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Validate(climateClaim(map[string]float64{"temperature_change_k": 2.0}), evidenceWith(-15.54, false))
	require.NoError(t, err)

	assert.Equal(t, verdict.DecisionReject, result.Decision)
	assert.False(t, result.Compliant)
	assert.True(t, result.HasReason(verdict.ReasonUndetectableSignal))
	assert.True(t, result.HasReason(verdict.ReasonSyntheticDataDetected))
	assert.True(t, result.HasReason(verdict.ReasonAuthenticDataNotConfirmed))
	assert.False(t, result.HasReason(verdict.ReasonDomainParameterViolation))
	assert.Empty(t, result.ParameterViolations)
}

func TestValidatePass(t *testing.T) {
	tests := []struct {
		name       string
		snrDb      float64
		confidence verdict.ConfidenceLevel
	}{
		{"high confidence", 12, verdict.ConfidenceHigh},
		{"detectable", 7, verdict.ConfidenceModerate},
		{"marginal", 1, verdict.ConfidenceModerate},
		{"below threshold", -3, verdict.ConfidenceLow},
	}

	engine := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Validate(climateClaim(map[string]float64{"temperature_change_k": -1.0}), evidenceWith(tt.snrDb, true))
			require.NoError(t, err)
			assert.Equal(t, verdict.DecisionPass, result.Decision)
			assert.Equal(t, tt.confidence, result.Confidence)
			assert.Empty(t, result.Reasons)
		})
	}
}

func TestValidateParameterViolations(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Validate(climateClaim(map[string]float64{"temperature_change_k": 50}), evidenceWith(8, true))
	require.NoError(t, err)
	assert.Equal(t, verdict.DecisionReject, result.Decision)
	assert.True(t, result.HasReason(verdict.ReasonDomainParameterViolation))
	require.Len(t, result.ParameterViolations, 1)
	assert.True(t, strings.HasPrefix(result.ParameterViolations[0], "CLIMATE_PARAMETER_OUT_OF_RANGE"))
	assert.True(t, result.HasReason(verdict.RejectionReason(result.ParameterViolations[0])))
}

func TestValidateStructuralErrors(t *testing.T) {
	engine := newTestEngine(t)
	c := climateClaim(nil)

	_, err := engine.Validate(c, &claim.EvidenceBundle{RealDataVerification: &claim.RealDataVerification{}})
	assert.True(t, stderrors.Is(err, core.ErrConfiguration))

	_, err = engine.Validate(c, &claim.EvidenceBundle{SNRAnalysis: &claim.SNRAnalysis{}})
	assert.True(t, stderrors.Is(err, core.ErrConfiguration))

	_, err = engine.Validate(c, nil)
	assert.True(t, stderrors.Is(err, core.ErrConfiguration))

	_, err = engine.Validate(c, evidenceWith(math.NaN(), true))
	assert.True(t, stderrors.Is(err, core.ErrConfiguration))

	c.Domain = "astrology"
	_, err = engine.Validate(c, evidenceWith(5, true))
	assert.True(t, stderrors.Is(err, core.ErrUnknownMethod))

	assert.Equal(t, 0, engine.Statistics().TotalValidations, "errors are not recorded")
}

func TestDetectabilityWarning(t *testing.T) {
	engine := newTestEngine(t)
	evidence := evidenceWith(-5, true)
	evidence.SNRAnalysis.Detectable = true

	result, err := engine.Validate(climateClaim(nil), evidence)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], verdict.WarningDetectabilityInconsistent)
	assert.True(t, evidence.SNRAnalysis.Detectable, "flag is not corrected")
}

func TestValidateInfiniteSNR(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Validate(climateClaim(nil), evidenceWith(math.Inf(-1), true))
	require.NoError(t, err)
	assert.True(t, result.HasReason(verdict.ReasonUndetectableSignal))

	result, err = engine.Validate(climateClaim(nil), evidenceWith(math.Inf(1), true))
	require.NoError(t, err)
	assert.Equal(t, verdict.ConfidenceHigh, result.Confidence)
}

func TestStatistics(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Validate(climateClaim(nil), evidenceWith(8, true))
	require.NoError(t, err)
	_, err = engine.Validate(climateClaim(nil), evidenceWith(-20, true))
	require.NoError(t, err)
	_, err = engine.Validate(climateClaim(nil), evidenceWith(12, false))
	require.NoError(t, err)
	_, err = engine.Validate(climateClaim(nil), evidenceWith(10, true))
	require.NoError(t, err)

	st := engine.Statistics()
	assert.Equal(t, 4, st.TotalValidations)
	assert.Equal(t, 2, st.Passed)
	assert.Equal(t, 2, st.Rejected)
	assert.InDelta(t, 0.5, st.PassRate, 1e-12)
	assert.Equal(t, 1, st.ReasonCounts[verdict.ReasonUndetectableSignal])
	assert.Equal(t, 1, st.ReasonCounts[verdict.ReasonSyntheticDataDetected])
	assert.Len(t, engine.History(), 4)
}
