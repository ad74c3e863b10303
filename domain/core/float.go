package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// JSONFloat returns a JSON-encodable form of v. Finite values stay numbers;
// infinities and NaN become the strings "+Inf", "-Inf" and "NaN".
func JSONFloat(v float64) any {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return v
	}
}

// ParseJSONFloat decodes a number or one of the non-finite string forms
// accepted by strconv ("inf", "-Infinity", "NaN").
func ParseJSONFloat(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, string(raw))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, s)
	}
	return v, nil
}
