package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeClaimFingerprint derives a stable identifier for a claim from its
// text, domain and parameters. Parameter keys are sorted so map order never
// changes the fingerprint.
func ComputeClaimFingerprint(text, domain string, parameters map[string]float64) ClaimID {
	keys := make([]string, 0, len(parameters))
	for k := range parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(strings.TrimSpace(text))
	data.WriteString("|")
	data.WriteString(domain)
	for _, key := range keys {
		data.WriteString("|")
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("=%g", parameters[key]))
	}

	return ClaimID("claim-" + NewHash([]byte(data.String())).String()[:16])
}
