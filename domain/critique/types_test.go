package critique

import (
	"encoding/json"
	"testing"

	"geoverify/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorstIsMaxSeverity(t *testing.T) {
	results := []Result{ResultPassed, ResultConcernsRaised, ResultFundamentalFlaws, ResultPhysicallyImpossible}
	for _, a := range results {
		for _, b := range results {
			w := Worst(a, b)
			assert.Equal(t, Worst(b, a), w, "commutative for %s,%s", a, b)
			assert.GreaterOrEqual(t, int(w), int(a))
			assert.GreaterOrEqual(t, int(w), int(b))
		}
	}
	assert.Equal(t, ResultFundamentalFlaws, Worst(ResultFundamentalFlaws, ResultConcernsRaised))
}

func TestTrapScoreLookup(t *testing.T) {
	assert.Equal(t, 0.9, ResultPhysicallyImpossible.TrapScore())
	assert.Equal(t, 0.7, ResultFundamentalFlaws.TrapScore())
	assert.Equal(t, 0.4, ResultConcernsRaised.TrapScore())
	assert.Equal(t, 0.1, ResultPassed.TrapScore())
}

func TestSessionJSONRoundTripUsesStringEnums(t *testing.T) {
	session := NewSession(core.NewSessionID(), "Paper", "climate")
	response := "robust analysis"
	session.Iterations = append(session.Iterations, &Iteration{
		Number:   1,
		Stage:    StageMethodologyChallenge,
		Response: &response,
		Result:   ResultConcernsRaised,
	})
	session.OverallResult = ResultConcernsRaised

	raw, err := json.Marshal(session)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stage":"methodology_challenge"`)
	assert.Contains(t, string(raw), `"overall_result":"concerns_raised"`)

	var decoded Session
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, StageMethodologyChallenge, decoded.Iterations[0].Stage)
	assert.Equal(t, ResultConcernsRaised, decoded.OverallResult)
	assert.True(t, decoded.Iterations[0].Processed())
}

func TestParseRejectsUnknownValues(t *testing.T) {
	_, err := ParseStage("peer_review")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	_, err = ParseResult("maybe")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	stage, err := ParseStage(" FUNDAMENTAL_FEASIBILITY ")
	require.NoError(t, err)
	assert.Equal(t, StageFundamentalFeasibility, stage)
}

func TestNewSessionStartsPassed(t *testing.T) {
	session := NewSession(core.NewSessionID(), "Paper", "climate")
	assert.Equal(t, ResultPassed, session.OverallResult)
	assert.Equal(t, 0.1, session.PlausibilityTrapScore)
	assert.False(t, session.IsComplete())
	assert.Nil(t, session.Latest())
	assert.Equal(t, StageInitialReview, session.CurrentStage())
}
