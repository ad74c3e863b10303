package scoring

// Term tables. Each entry pairs the reported term with the case-insensitive
// pattern that counts it; patterns are wrapped in word boundaries at compile time.

var sophisticationTerms = []termPattern{
	{"volterra", `volterra`},
	{"kernel", `kernels?`},
	{"eigenvalue", `eigen(?:value|vector)s?`},
	{"green's function", `green'?s functions?`},
	{"hilbert space", `hilbert spaces?`},
	{"stochastic differential", `stochastic differential`},
	{"bayesian hierarchical", `bayesian hierarchical`},
	{"tensor", `tensors?`},
	{"lagrangian", `lagrangians?`},
	{"fourier", `fourier`},
	{"wavelet", `wavelets?`},
	{"manifold", `manifolds?`},
	{"nonlinear", `non-?linear`},
	{"perturbation theory", `perturbation theory`},
	{"variational", `variational`},
}

var empiricalTerms = []termPattern{
	{"GLENS", `glens`},
	{"GeoMIP", `geomip`},
	{"CMIP6", `cmip6`},
	{"ERA5", `era5`},
	{"MERRA-2", `merra-?2`},
	{"dataset", `datasets?`},
	{"observation", `observations?|observational`},
	{"p-value", `p-values?`},
	{"confidence interval", `confidence intervals?`},
	{"sample size", `sample sizes?`},
	{"statistical significance", `statistical(?:ly)? significan(?:ce|t)`},
	{"measurement", `measurements?`},
	{"satellite", `satellites?`},
	{"in situ", `in[ -]situ`},
	{"reanalysis", `reanalys[ie]s`},
}

var redFlagTerms = []termPattern{
	{"elegant", `elegant(?:ly)?`},
	{"undetectable", `undetectable`},
	{"breakthrough", `breakthroughs?`},
	{"revolutionary", `revolutionary`},
	{"paradigm shift", `paradigm shifts?`},
	{"unprecedented", `unprecedented`},
	{"perfectly", `perfect(?:ly)?`},
	{"novel framework", `novel frameworks?`},
	{"first ever", `first[ -]ever`},
	{"complete solution", `complete solutions?`},
}
