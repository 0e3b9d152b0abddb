package model

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidEvidence matches any InvalidEvidenceError via errors.Is
	ErrInvalidEvidence = errors.New("invalid evidence")

	// ErrInvalidConfiguration matches any InvalidConfigurationError via errors.Is
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// InvalidEvidenceError rejects a reservation or signal that cannot be scored
type InvalidEvidenceError struct {
	ItemID string // Reservation or signal id
	Field  string // e.g. "penalty.tier", "amount"
	Reason string
}

func (e *InvalidEvidenceError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("invalid evidence: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid evidence %s: %s: %s", quote(e.ItemID), e.Field, e.Reason)
}

func (e *InvalidEvidenceError) Is(target error) bool {
	return target == ErrInvalidEvidence
}

// InvalidConfigurationError rejects a scoring table or override the engine cannot honor
type InvalidConfigurationError struct {
	Key    string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Key, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

func quote(s string) string {
	return strconv.Quote(s)
}
