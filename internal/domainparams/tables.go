package domainparams

// Range tables are ordered; the first entry whose fragments intersect a
// parameter name wins. Keys are kept to distinctive fragments so that
// generic words (change, rate, level) do not capture unrelated parameters.

// Domain names
const (
	DomainClimate              = "climate"
	DomainChemicalComposition  = "chemical_composition"
	DomainRadiativeForcing     = "radiative_forcing"
	DomainAtmosphericTransport = "atmospheric_transport"
	DomainSignalDetection      = "signal_detection"
)

var domainAliases = map[string]string{
	"chemistry": DomainChemicalComposition,
	"chemical":  DomainChemicalComposition,
	"radiative": DomainRadiativeForcing,
	"transport": DomainAtmosphericTransport,
	"signal":    DomainSignalDetection,
}

var violationPrefixes = map[string]string{
	DomainClimate:              "CLIMATE",
	DomainChemicalComposition:  "CHEMICAL",
	DomainRadiativeForcing:     "RADIATIVE",
	DomainAtmosphericTransport: "TRANSPORT",
	DomainSignalDetection:      "SIGNAL",
}

// unitTokens are dropped from names before fragment matching
var unitTokens = map[string]bool{
	"k": true, "c": true, "m": true, "ms": true, "km": true, "mkm2": true,
	"wm2": true, "ppv": true, "ppm": true, "ppb": true, "pct": true, "percent": true,
	"tg": true, "yr": true, "s": true, "pa": true, "hpa": true, "kg": true,
	"kgm3": true, "um": true, "nm": true, "db": true, "hz": true, "per": true,
}

var defaultTables = map[string][]RangeEntry{
	DomainClimate: {
		{Fragment: "temperature", Min: -15, Max: 15},
		{Fragment: "forcing", Min: -20, Max: 20},
		{Fragment: "sensitivity", Min: 1.5, Max: 6.0},
		{Fragment: "precipitation", Min: -50, Max: 50},
		{Fragment: "sea_level", Min: -0.5, Max: 3.0},
		{Fragment: "injection", Min: 0, Max: 100},
		{Fragment: "optical_depth", Min: 0, Max: 5},
		{Fragment: "albedo", Min: 0, Max: 1},
		{Fragment: "co2", Min: 180, Max: 2000},
		{Fragment: "ice_extent", Min: 0, Max: 30},
	},
	DomainChemicalComposition: {
		{Fragment: "fraction", Min: 0, Max: 1},
		{Fragment: "concentration", Min: 0, Max: 1e6},
		{Fragment: "radius", Min: 0.01, Max: 10},
		{Fragment: "ozone", Min: 0, Max: 100},
		{Fragment: "lifetime", Min: 0, Max: 10},
		{Fragment: "weight", Min: 0, Max: 100},
	},
	DomainRadiativeForcing: {
		{Fragment: "forcing", Min: -20, Max: 20},
		{Fragment: "optical_depth", Min: 0, Max: 5},
		{Fragment: "albedo", Min: 0, Max: 1},
		{Fragment: "fraction", Min: 0, Max: 1},
		{Fragment: "asymmetry", Min: -1, Max: 1},
		{Fragment: "radius", Min: 0.01, Max: 10},
		{Fragment: "irradiance", Min: 1300, Max: 1420},
		{Fragment: "temperature", Min: -15, Max: 15},
	},
	DomainAtmosphericTransport: {
		{Fragment: "zonal", Min: -150, Max: 150},
		{Fragment: "meridional", Min: -100, Max: 100},
		{Fragment: "vertical", Min: -1, Max: 1},
		{Fragment: "wind_speed", Min: 0, Max: 150},
		{Fragment: "residence", Min: 0, Max: 10},
		{Fragment: "diffusivity", Min: 0, Max: 1e7},
		{Fragment: "altitude", Min: 0, Max: 50},
		{Fragment: "tropopause", Min: 5, Max: 20},
		{Fragment: "source", Min: 0, Max: 1000},
		{Fragment: "sink", Min: 0, Max: 1000},
	},
	DomainSignalDetection: {
		{Fragment: "linear", Min: 0, Max: 1e6},
		{Fragment: "snr", Min: -60, Max: 60},
		{Fragment: "probability", Min: 0, Max: 1},
		{Fragment: "significance", Min: 0, Max: 1},
		{Fragment: "sample_size", Min: 1, Max: 1e9},
		{Fragment: "record_length", Min: 1, Max: 500},
	},
}
