package evidence

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// significanceLevel is the two-sided alpha for intervals and power
const significanceLevel = 0.05

// TTestResult is a Welch two-sample comparison of a claimed signal against observations
type TTestResult struct {
	TStatistic         float64    `json:"t_statistic"`
	DegreesOfFreedom   float64    `json:"degrees_of_freedom"`
	PValue             float64    `json:"p_value"`
	MeanDifference     float64    `json:"mean_difference"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"`
	EffectSize         float64    `json:"effect_size"`
	Power              float64    `json:"power"`
	SampleSize         int        `json:"sample_size"`
}

// welchTTest compares two samples with unequal variances. It returns false
// when either sample has fewer than two values or both have zero variance.
func welchTTest(group1, group2 []float64) (TTestResult, bool) {
	n1, n2 := float64(len(group1)), float64(len(group2))
	if n1 < 2 || n2 < 2 {
		return TTestResult{}, false
	}

	mean1, _ := stats.Mean(group1)
	mean2, _ := stats.Mean(group2)
	var1, _ := stats.SampleVariance(group1)
	var2, _ := stats.SampleVariance(group2)

	// Welch's t-statistic: t = (mean1 - mean2) / sqrt(var1/n1 + var2/n2)
	se := math.Sqrt(var1/n1 + var2/n2)
	if se == 0 {
		return TTestResult{}, false
	}
	diff := mean1 - mean2
	tStat := diff / se

	// Degrees of freedom using Welch-Satterthwaite equation
	df := math.Pow(var1/n1+var2/n2, 2) / (math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue := 2 * dist.Survival(math.Abs(tStat))
	tCrit := dist.Quantile(1 - significanceLevel/2)

	// Effect size (Cohen's d with pooled standard deviation)
	effectSize := 0.0
	if pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2)); pooledSD > 0 {
		effectSize = diff / pooledSD
	}

	return TTestResult{
		TStatistic:         tStat,
		DegreesOfFreedom:   df,
		PValue:             math.Min(1, math.Max(0, pValue)),
		MeanDifference:     diff,
		ConfidenceInterval: [2]float64{diff - tCrit*se, diff + tCrit*se},
		EffectSize:         effectSize,
		Power:              approximatePower(math.Abs(tStat)),
		SampleSize:         len(group1) + len(group2),
	}, true
}

// approximatePower is the normal approximation to the power of a two-sided
// test whose noncentrality equals the observed |t|.
func approximatePower(noncentrality float64) float64 {
	z := distuv.UnitNormal.Quantile(1 - significanceLevel/2)
	return distuv.UnitNormal.CDF(noncentrality-z) + distuv.UnitNormal.CDF(-noncentrality-z)
}
