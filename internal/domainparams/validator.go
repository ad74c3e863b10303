// Package domainparams range-checks claim parameters against per-domain
// tables and runs the domain's derived consistency checks.
package domainparams

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"geoverify/internal/errors"
)

// RangeEntry bounds parameters whose names share a fragment with Fragment
type RangeEntry struct {
	Fragment string  `yaml:"fragment" json:"fragment"`
	Min      float64 `yaml:"min" json:"min"`
	Max      float64 `yaml:"max" json:"max"`
}

type compiledEntry struct {
	RangeEntry
	fragments map[string]bool
}

// Result is the outcome of validating one parameter set
type Result struct {
	Domain     string   `json:"domain"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

// Validator checks parameters against ordered range tables
type Validator struct {
	tables map[string][]compiledEntry
}

// NewValidator creates a validator over the built-in tables, replacing any
// domain present in overrides.
func NewValidator(overrides map[string][]RangeEntry) (*Validator, error) {
	v := &Validator{tables: make(map[string][]compiledEntry, len(defaultTables))}
	for domain, entries := range defaultTables {
		v.tables[domain] = compile(entries)
	}

	for name, entries := range overrides {
		domain, ok := CanonicalDomain(name)
		if !ok {
			return nil, errors.ConfigurationError(fmt.Sprintf("range table for unknown domain %q", name))
		}
		for _, e := range entries {
			if e.Min > e.Max {
				return nil, errors.ConfigurationError(
					fmt.Sprintf("range %s/%s has min %g above max %g", domain, e.Fragment, e.Min, e.Max))
			}
			if len(fragmentsOf(e.Fragment)) == 0 {
				return nil, errors.ConfigurationError(
					fmt.Sprintf("range %s/%q has no significant fragments", domain, e.Fragment))
			}
		}
		v.tables[domain] = compile(entries)
	}
	return v, nil
}

// CanonicalDomain resolves aliases such as "chemistry" to table names
func CanonicalDomain(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := domainAliases[name]; ok {
		name = alias
	}
	_, ok := violationPrefixes[name]
	return name, ok
}

// Domains lists the supported table names in sorted order
func Domains() []string {
	out := make([]string, 0, len(violationPrefixes))
	for d := range violationPrefixes {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Validate checks every parameter against the domain's table, then runs the
// domain's derived checks. Physical violations are data; only an unknown
// domain is an error.
func (v *Validator) Validate(parameters map[string]float64, domain string) (*Result, error) {
	canonical, ok := CanonicalDomain(domain)
	if !ok {
		return nil, errors.UnknownMethod("parameter domain", domain)
	}

	prefix := violationPrefixes[canonical]
	table := v.tables[canonical]
	violations := []string{}

	names := make([]string, 0, len(parameters))
	for name := range parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	finite := make(map[string]float64, len(parameters))
	for _, name := range names {
		value := parameters[name]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			violations = append(violations, fmt.Sprintf("NON_FINITE_PARAMETER: %s=%g", name, value))
			continue
		}
		finite[name] = value

		entry, matched := match(table, name)
		if !matched {
			continue
		}
		if value < entry.Min || value > entry.Max {
			violations = append(violations, fmt.Sprintf("%s_PARAMETER_OUT_OF_RANGE: %s=%g outside [%g, %g]",
				prefix, name, value, entry.Min, entry.Max))
		}
	}

	for _, check := range derivedChecks[canonical] {
		violations = append(violations, check(finite)...)
	}

	return &Result{
		Domain:     canonical,
		Valid:      len(violations) == 0,
		Violations: violations,
	}, nil
}

// MatchRange reports which range entry, if any, a parameter name resolves to in a domain
func (v *Validator) MatchRange(domain, name string) (RangeEntry, bool) {
	canonical, ok := CanonicalDomain(domain)
	if !ok {
		return RangeEntry{}, false
	}
	entry, matched := match(v.tables[canonical], name)
	return entry.RangeEntry, matched
}

func match(table []compiledEntry, name string) (compiledEntry, bool) {
	fragments := fragmentsOf(name)
	for _, entry := range table {
		for f := range fragments {
			if entry.fragments[f] {
				return entry, true
			}
		}
	}
	return compiledEntry{}, false
}

func compile(entries []RangeEntry) []compiledEntry {
	out := make([]compiledEntry, len(entries))
	for i, e := range entries {
		out[i] = compiledEntry{RangeEntry: e, fragments: fragmentsOf(e.Fragment)}
	}
	return out
}

// fragmentsOf splits a name on underscores and drops unit tokens
func fragmentsOf(name string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.Split(strings.ToLower(name), "_") {
		if f == "" || unitTokens[f] {
			continue
		}
		out[f] = true
	}
	return out
}
