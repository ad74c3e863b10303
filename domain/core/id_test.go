package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseSessionID tests session ID parsing
func TestParseSessionID(t *testing.T) {
	valid := NewSessionID().String()

	tests := []struct {
		input    string
		expected SessionID
		hasError bool
	}{
		{valid, SessionID(valid), false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseSessionID(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("Expected error for input '%s', but got none", test.input)
			} else if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput for input '%s', got %v", test.input, err)
			}
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestComputeClaimFingerprint tests that fingerprints ignore map ordering
func TestComputeClaimFingerprint(t *testing.T) {
	a := ComputeClaimFingerprint("SAI cools", "climate", map[string]float64{"a_k": 1, "b_k": 2})
	b := ComputeClaimFingerprint("SAI cools", "climate", map[string]float64{"b_k": 2, "a_k": 1})
	c := ComputeClaimFingerprint("SAI cools", "climate", map[string]float64{"a_k": 1, "b_k": 3})

	if a != b {
		t.Errorf("Expected identical fingerprints, got %s and %s", a, b)
	}
	if a == c {
		t.Errorf("Expected different fingerprints for different parameters")
	}
}

// TestIsHardError tests the structural error classification
func TestIsHardError(t *testing.T) {
	if !IsHardError(NewMissingEvidenceError("snr_analysis")) {
		t.Error("Expected missing evidence to be a hard error")
	}
	if !IsHardError(NewShapeMismatchError(0, 3)) {
		t.Error("Expected shape mismatch to be a hard error")
	}
	if IsHardError(ErrSessionNotFound) {
		t.Error("Expected session not found not to be a structural error")
	}
	if !IsNotFoundError(ErrSessionNotFound) {
		t.Error("Expected session not found to be a not-found error")
	}
}
