package evidence

import (
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"geoverify/domain/claim"
)

// Synthetic-data indicators
const (
	IndicatorZeroVariance        = "ZERO_VARIANCE"
	IndicatorConstantStep        = "CONSTANT_STEP"
	IndicatorExcessiveDuplicates = "EXCESSIVE_DUPLICATES"
)

// maxDuplicateFraction is the share of repeated values tolerated in real observations
const maxDuplicateFraction = 0.5

// knownInstitutions maps lowercase marker fragments to canonical sources
var knownInstitutions = []struct {
	fragment string
	name     string
}{
	{"ncar", "NCAR"},
	{"noaa", "NOAA"},
	{"nasa", "NASA"},
	{"glens", "GLENS"},
	{"geomip", "GeoMIP"},
	{"cmip", "CMIP"},
	{"ecmwf", "ECMWF"},
	{"era5", "ECMWF"},
	{"merra", "NASA"},
	{"met office", "Met Office"},
	{"hadcrut", "Met Office"},
}

// MatchInstitutions returns the canonical institutions named by markers, in first-seen order
func MatchInstitutions(markers []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, m := range markers {
		lower := strings.ToLower(m)
		for _, inst := range knownInstitutions {
			if strings.Contains(lower, inst.fragment) && !seen[inst.name] {
				seen[inst.name] = true
				out = append(out, inst.name)
			}
		}
	}
	return out
}

// SyntheticIndicators flags value patterns that are implausible for observations
func SyntheticIndicators(values []float64) []string {
	out := []string{}
	if len(values) < 3 {
		return out
	}

	if variance, _ := stats.PopulationVariance(values); variance == 0 {
		return append(out, IndicatorZeroVariance)
	}

	step := values[1] - values[0]
	constant := true
	for i := 2; i < len(values); i++ {
		if math.Abs((values[i]-values[i-1])-step) > 1e-12 {
			constant = false
			break
		}
	}
	if constant {
		out = append(out, IndicatorConstantStep)
	}

	counts := make(map[float64]int, len(values))
	duplicates := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > 1 {
			duplicates++
		}
	}
	if float64(duplicates)/float64(len(values)) > maxDuplicateFraction {
		out = append(out, IndicatorExcessiveDuplicates)
	}
	return out
}

// verifyDataset builds the real-data verification for a dataset. A missing
// dataset yields an unconfirmed verification rather than none.
func verifyDataset(ds *claim.Dataset) *claim.RealDataVerification {
	if ds == nil {
		return &claim.RealDataVerification{MarkersFound: []string{}, SyntheticIndicators: []string{}}
	}

	markers := MatchInstitutions(ds.InstitutionalMarkers)
	indicators := SyntheticIndicators(ds.Values)
	synthetic := len(indicators) > 0
	institutional := len(markers) > 0

	return &claim.RealDataVerification{
		AuthenticDataConfirmed:  ds.Authentic && !synthetic,
		InstitutionalValidation: institutional,
		SyntheticDataDetected:   synthetic,
		ProvenanceVerified:      ds.Authentic && institutional,
		MarkersFound:            markers,
		SyntheticIndicators:     indicators,
	}
}
