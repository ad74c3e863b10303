package evidence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoverify/domain/claim"
	"geoverify/internal/snr"
)

func TestWelchTTest(t *testing.T) {
	result, ok := welchTTest([]float64{1, 2, 3, 4, 5}, []float64{2, 3, 4, 5, 6})
	require.True(t, ok)

	assert.InDelta(t, -1.0, result.TStatistic, 1e-12)
	assert.InDelta(t, 8.0, result.DegreesOfFreedom, 1e-12)
	assert.InDelta(t, 0.3466, result.PValue, 1e-3)
	assert.InDelta(t, -3.306, result.ConfidenceInterval[0], 1e-3)
	assert.InDelta(t, 1.306, result.ConfidenceInterval[1], 1e-3)
	assert.InDelta(t, -1/math.Sqrt(2.5), result.EffectSize, 1e-12)
	assert.Equal(t, 10, result.SampleSize)
	assert.Greater(t, result.Power, 0.0)
	assert.Less(t, result.Power, 0.5)
}

func TestWelchTTestDegenerate(t *testing.T) {
	_, ok := welchTTest([]float64{1}, []float64{1, 2})
	assert.False(t, ok)

	_, ok = welchTTest([]float64{3, 3, 3}, []float64{3, 3})
	assert.False(t, ok)
}

func TestSyntheticIndicators(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []string
	}{
		{"too short to judge", []float64{1, 1}, []string{}},
		{"zero variance", []float64{4, 4, 4, 4}, []string{IndicatorZeroVariance}},
		{"constant step", []float64{1, 2, 3, 4, 5}, []string{IndicatorConstantStep}},
		{"duplicates", []float64{1, 2, 2, 2, 1, 1, 3}, []string{IndicatorExcessiveDuplicates}},
		{"plausible", []float64{0.31, -0.12, 0.57, 0.08, -0.44, 0.19}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SyntheticIndicators(tt.values))
		})
	}
}

func TestMatchInstitutions(t *testing.T) {
	got := MatchInstitutions([]string{"NCAR CESM1 GLENS ensemble", "ERA5 reanalysis", "ecmwf archive", "my laptop"})
	assert.Equal(t, []string{"NCAR", "GLENS", "ECMWF"}, got)
	assert.Empty(t, MatchInstitutions(nil))
}

func observed() []float64 {
	return []float64{0.42, -0.31, 0.15, 0.88, -0.57, 0.23, -0.11, 0.64, -0.45, 0.09, 0.37, -0.72}
}

func TestBuild(t *testing.T) {
	builder := NewBuilder(snr.NewEngine(snr.Options{}), nil)

	signal := make([]float64, 12)
	for i := range signal {
		signal[i] = 2 * math.Sin(float64(i))
	}

	c := claim.Claim{
		Text:              "Injection cools by 1 K",
		Domain:            "climate",
		TheoreticalSignal: signal,
		RealDataset: &claim.Dataset{
			Name:                 "glens",
			Values:               observed(),
			InstitutionalMarkers: []string{"NCAR GLENS"},
			Authentic:            true,
		},
	}

	ev, err := builder.Build(c, snr.MethodHansen)
	require.NoError(t, err)

	require.NotNil(t, ev.Bundle.SNRAnalysis)
	assert.Equal(t, "hansen", ev.Bundle.SNRAnalysis.Method)
	assert.Equal(t, ev.SNR.SNRDb, ev.Bundle.SNRAnalysis.SNRDb)
	assert.True(t, ev.Bundle.SNRAnalysis.Detectable)

	require.NotNil(t, ev.Bundle.StatisticalValidation)
	assert.Equal(t, 24, ev.Bundle.StatisticalValidation.SampleSize)

	rdv := ev.Bundle.RealDataVerification
	require.NotNil(t, rdv)
	assert.True(t, rdv.AuthenticDataConfirmed)
	assert.True(t, rdv.InstitutionalValidation)
	assert.True(t, rdv.ProvenanceVerified)
	assert.False(t, rdv.SyntheticDataDetected)
	assert.Equal(t, []string{"NCAR", "GLENS"}, rdv.MarkersFound)
}

func TestBuildWithoutData(t *testing.T) {
	builder := NewBuilder(snr.NewEngine(snr.Options{}), nil)

	ev, err := builder.Build(claim.Claim{Text: "no data", Domain: "climate"}, snr.MethodHansen)
	require.NoError(t, err)
	assert.Nil(t, ev.Bundle.SNRAnalysis)
	assert.Nil(t, ev.Bundle.StatisticalValidation)
	require.NotNil(t, ev.Bundle.RealDataVerification)
	assert.False(t, ev.Bundle.RealDataVerification.AuthenticDataConfirmed)
}

func TestBuildSyntheticAttestedData(t *testing.T) {
	builder := NewBuilder(snr.NewEngine(snr.Options{}), nil)

	ev, err := builder.Build(claim.Claim{
		TheoreticalSignal: []float64{1, 2, 3},
		RealDataset:       &claim.Dataset{Values: []float64{1, 2, 3, 4}, Authentic: true},
	}, snr.MethodHansen)
	require.NoError(t, err)

	rdv := ev.Bundle.RealDataVerification
	assert.True(t, rdv.SyntheticDataDetected)
	assert.False(t, rdv.AuthenticDataConfirmed, "attestation does not override synthetic indicators")
	assert.Equal(t, []string{IndicatorConstantStep}, rdv.SyntheticIndicators)
}

func TestMerge(t *testing.T) {
	built := claim.EvidenceBundle{
		SNRAnalysis:          &claim.SNRAnalysis{Method: "hansen", SNRDb: 3},
		RealDataVerification: &claim.RealDataVerification{},
	}
	supplied := &claim.EvidenceBundle{SNRAnalysis: &claim.SNRAnalysis{Method: "welch", SNRDb: -20}}

	merged := Merge(supplied, built)
	assert.Equal(t, "welch", merged.SNRAnalysis.Method)
	assert.NotNil(t, merged.RealDataVerification)
	assert.Nil(t, merged.StatisticalValidation)

	assert.Equal(t, "hansen", Merge(nil, built).SNRAnalysis.Method)
}
