package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID ID
	ClaimID   ID
)

// NewSessionID creates a time-ordered critique session identifier
func NewSessionID() SessionID { return SessionID(NewID()) }

// String conversions for domain IDs
func (id SessionID) String() string { return ID(id).String() }
func (id ClaimID) String() string   { return ID(id).String() }

// ParseSessionID parses a UUID string into a SessionID
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("%w: session ID %q is not a UUID", ErrInvalidInput, s)
	}
	return SessionID(s), nil
}

// ParseClaimID parses a string into ClaimID
func ParseClaimID(s string) (ClaimID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: claim ID cannot be empty", ErrInvalidInput)
	}
	return ClaimID(s), nil
}
