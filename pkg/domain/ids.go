// Package domain defines typed identifiers shared across modules. Wrapping
// uuid.UUID in distinct types prevents accidentally passing a seeker ID where
// an evaluation ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "peakform/pkg/domain-errors"
)

// UserID identifies a platform user. Seekers and guides are both users; the
// guide role is a credential held by a user, not a separate identity space.
type UserID uuid.UUID

func (u UserID) String() string {
	return uuid.UUID(u).String()
}

// IsNil returns true for the zero UserID.
func (u UserID) IsNil() bool {
	return uuid.UUID(u) == uuid.Nil
}

// MarshalText renders the canonical UUID string for JSON and log output.
func (u UserID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseUserID validates an external identifier string.
// Invariant: IDs must be valid, non-nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// EvaluationID identifies an evaluation request.
type EvaluationID uuid.UUID

func (e EvaluationID) String() string {
	return uuid.UUID(e).String()
}

// IsNil returns true for the zero EvaluationID.
func (e EvaluationID) IsNil() bool {
	return uuid.UUID(e) == uuid.Nil
}

// MarshalText renders the canonical UUID string for JSON and log output.
func (e EvaluationID) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EvaluationID) UnmarshalText(b []byte) error {
	parsed, err := ParseEvaluationID(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// NewEvaluationID mints a fresh evaluation identifier.
func NewEvaluationID() EvaluationID {
	return EvaluationID(uuid.New())
}

// ParseEvaluationID validates an external identifier string.
func ParseEvaluationID(s string) (EvaluationID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return EvaluationID{}, err
	}
	return EvaluationID(parsed), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "identifier is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "identifier must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "identifier must not be the nil UUID")
	}
	return parsed, nil
}
