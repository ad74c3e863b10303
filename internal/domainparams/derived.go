package domainparams

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type derivedCheck func(params map[string]float64) []string

var derivedChecks = map[string][]derivedCheck{
	DomainClimate: {
		checkEnergyBalance,
		checkForcingResponseSign,
	},
	DomainChemicalComposition: {
		checkMixingRatios,
		checkMassFractionSum,
		checkPH,
	},
	DomainRadiativeForcing: {
		checkOpticalPropertySum,
		checkForcingEfficiency,
		checkEnergyBalance,
	},
	DomainAtmosphericTransport: {
		checkWindSpeed,
		checkMixingRatios,
		checkMassBalance,
	},
	DomainSignalDetection: {
		checkSNRConversion,
		checkNoiseLevel,
		checkDetectionProbability,
	},
}

// Climate sensitivity bounds, K per W/m^2
const (
	minSensitivity = 0.4
	maxSensitivity = 1.6

	maxForcingEfficiency = 50.0
	opticalSumTolerance  = 0.01
	massBalanceTolerance = 0.1
	windSpeedTolerance   = 0.1
	snrConversionTolDb   = 0.1
)

func checkEnergyBalance(p map[string]float64) []string {
	dT, okT := p["temperature_change_k"]
	rf, okRF := p["radiative_forcing_wm2"]
	if !okT || !okRF || rf == 0 {
		return nil
	}
	sensitivity := math.Abs(dT / rf)
	if sensitivity < minSensitivity || sensitivity > maxSensitivity {
		return []string{fmt.Sprintf(
			"ENERGY_BALANCE_INCONSISTENT: implied sensitivity %.3f K/(W/m2) outside [%g, %g]",
			sensitivity, minSensitivity, maxSensitivity)}
	}
	return nil
}

func checkForcingResponseSign(p map[string]float64) []string {
	dT, okT := p["temperature_change_k"]
	rf, okRF := p["radiative_forcing_wm2"]
	if !okT || !okRF || dT == 0 || rf == 0 {
		return nil
	}
	if (dT > 0) != (rf > 0) {
		return []string{fmt.Sprintf(
			"FORCING_RESPONSE_SIGN_MISMATCH: temperature_change_k=%g opposes radiative_forcing_wm2=%g", dT, rf)}
	}
	return nil
}

// paramsWith returns the sorted names of parameters containing every fragment
func paramsWith(p map[string]float64, fragments ...string) []string {
	var names []string
	for name := range p {
		parts := fragmentsOf(name)
		all := true
		for _, f := range fragments {
			if !parts[f] {
				all = false
				break
			}
		}
		if all {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func checkMixingRatios(p map[string]float64) []string {
	var out []string
	for _, name := range paramsWith(p, "mixing", "ratio") {
		switch v := p[name]; {
		case v < 0:
			out = append(out, fmt.Sprintf("NEGATIVE_MIXING_RATIO: %s=%g", name, v))
		case v > 1:
			out = append(out, fmt.Sprintf("MIXING_RATIO_EXCEEDS_UNITY: %s=%g", name, v))
		}
	}
	return out
}

func checkMassFractionSum(p map[string]float64) []string {
	names := paramsWith(p, "mass", "fraction")
	if len(names) < 2 {
		return nil
	}
	sum := 0.0
	for _, name := range names {
		sum += p[name]
	}
	if sum > 1+1e-9 {
		return []string{fmt.Sprintf("MASS_FRACTION_SUM_EXCEEDS_UNITY: %s sum to %g",
			strings.Join(names, "+"), sum)}
	}
	return nil
}

func checkPH(p map[string]float64) []string {
	var out []string
	for _, name := range paramsWith(p, "ph") {
		if v := p[name]; v < 0 || v > 14 {
			out = append(out, fmt.Sprintf("PH_OUT_OF_RANGE: %s=%g outside [0, 14]", name, v))
		}
	}
	return out
}

func checkOpticalPropertySum(p map[string]float64) []string {
	scattering, okS := p["scattering_fraction"]
	absorption, okA := p["absorption_fraction"]
	if !okS || !okA {
		return nil
	}
	if sum := scattering + absorption; math.Abs(sum-1) > opticalSumTolerance {
		return []string{fmt.Sprintf(
			"OPTICAL_PROPERTY_SUM_INCONSISTENT: scattering_fraction+absorption_fraction=%g, expected 1", sum)}
	}
	return nil
}

func checkForcingEfficiency(p map[string]float64) []string {
	rf, okRF := p["radiative_forcing_wm2"]
	aod, okAOD := p["aerosol_optical_depth"]
	if !okRF || !okAOD || aod == 0 {
		return nil
	}
	if efficiency := math.Abs(rf / aod); efficiency > maxForcingEfficiency {
		return []string{fmt.Sprintf(
			"FORCING_EFFICIENCY_IMPLAUSIBLE: |forcing/AOD|=%.2f W/m2 exceeds %g", efficiency, maxForcingEfficiency)}
	}
	return nil
}

func checkWindSpeed(p map[string]float64) []string {
	u, okU := p["zonal_wind_ms"]
	v, okV := p["meridional_wind_ms"]
	speed, okS := p["wind_speed_ms"]
	if !okU || !okV || !okS {
		return nil
	}
	magnitude := math.Hypot(u, v)
	if math.Abs(magnitude-speed) > windSpeedTolerance*math.Abs(speed)+1e-9 {
		return []string{fmt.Sprintf(
			"WIND_SPEED_INCONSISTENCY: |(u,v)|=%.3f but wind_speed_ms=%g", magnitude, speed)}
	}
	return nil
}

func checkMassBalance(p map[string]float64) []string {
	source, okSrc := p["source_rate_tg_yr"]
	sink, okSink := p["sink_rate_tg_yr"]
	change, okChg := p["burden_change_tg_yr"]
	if !okSrc || !okSink || !okChg {
		return nil
	}
	residual := source - sink - change
	if math.Abs(residual) > massBalanceTolerance*math.Abs(source)+1e-9 {
		return []string{fmt.Sprintf(
			"MASS_BALANCE_VIOLATION: source-sink-burden_change=%g exceeds 10%% of source %g", residual, source)}
	}
	return nil
}

func checkSNRConversion(p map[string]float64) []string {
	db, okDb := p["snr_db"]
	linear, okLin := p["snr_linear"]
	if !okDb || !okLin {
		return nil
	}
	if linear <= 0 {
		return []string{fmt.Sprintf("SNR_CONVERSION_INCONSISTENT: snr_linear=%g is not positive", linear)}
	}
	if implied := 10 * math.Log10(linear); math.Abs(implied-db) > snrConversionTolDb {
		return []string{fmt.Sprintf(
			"SNR_CONVERSION_INCONSISTENT: snr_linear=%g implies %.2f dB, snr_db=%g", linear, implied, db)}
	}
	return nil
}

func checkNoiseLevel(p map[string]float64) []string {
	var out []string
	for _, name := range paramsWith(p, "noise") {
		if v := p[name]; v <= 0 {
			out = append(out, fmt.Sprintf("NON_POSITIVE_NOISE_LEVEL: %s=%g", name, v))
		}
	}
	return out
}

func checkDetectionProbability(p map[string]float64) []string {
	pd, okD := p["detection_probability"]
	pfa, okF := p["false_alarm_probability"]
	if !okD || !okF {
		return nil
	}
	if pd < pfa {
		return []string{fmt.Sprintf(
			"DETECTION_PROBABILITY_BELOW_FALSE_ALARM: detection_probability=%g < false_alarm_probability=%g", pd, pfa)}
	}
	return nil
}
