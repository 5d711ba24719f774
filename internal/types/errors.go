package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// ErrorClass groups registered errors by how callers should react to them.
type ErrorClass string

const (
	ClassPhase      ErrorClass = "PhaseError"
	ClassValidation ErrorClass = "ValidationError"
	ClassProof      ErrorClass = "ProofError"
	ClassIntegrity  ErrorClass = "IntegrityError"
	ClassState      ErrorClass = "StateError"
	ClassUnknown    ErrorClass = "Unknown"
)

var errorClasses = map[uint32]ErrorClass{}

func register(class ErrorClass, code uint32, description string) *errorsmod.Error {
	err := errorsmod.Register(ModuleName, code, description)
	errorClasses[code] = class
	return err
}

// x/spellblock sentinel errors.
var (
	ErrWrongPhase       = register(ClassPhase, 2, "operation not allowed in current phase")
	ErrRoundNotOpenable = register(ClassPhase, 3, "previous round not finalized")

	ErrInvalidRequest  = register(ClassValidation, 10, "invalid request")
	ErrInvalidLength   = register(ClassValidation, 11, "invalid word length")
	ErrInvalidWord     = register(ClassValidation, 12, "invalid word")
	ErrLetterNotInPool = register(ClassValidation, 13, "letter not in pool")
	ErrStakeTooLow     = register(ClassValidation, 14, "stake below minimum")

	ErrInvalidProof    = register(ClassProof, 20, "invalid dictionary proof")
	ErrNotInDictionary = register(ClassProof, 21, "word not in dictionary")

	ErrHashMismatch = register(ClassIntegrity, 30, "commit hash mismatch")
	ErrSeedMismatch = register(ClassIntegrity, 31, "seed mismatch")
	ErrConservation = register(ClassIntegrity, 32, "pot conservation violated")

	ErrDuplicateCommit   = register(ClassState, 40, "already committed this round")
	ErrAlreadyRevealed   = register(ClassState, 41, "already revealed")
	ErrNotCommitted      = register(ClassState, 42, "no commitment for round")
	ErrAlreadyFinalized  = register(ClassState, 43, "round already finalized")
	ErrRoundNotFound     = register(ClassState, 44, "round not found")
	ErrNotFinalized      = register(ClassState, 45, "round not finalized")
	ErrNothingToClaim    = register(ClassState, 46, "nothing to claim")
	ErrAlreadyClaimed    = register(ClassState, 47, "payout already claimed")
	ErrInsufficientFunds = register(ClassState, 48, "insufficient funds")
	ErrUnauthorized      = register(ClassState, 49, "unauthorized")
)

// ClassOf returns the taxonomy class of err, or ClassUnknown when err does
// not wrap a spellblock error.
func ClassOf(err error) ErrorClass {
	var e *errorsmod.Error
	if !errors.As(err, &e) || e.Codespace() != ModuleName {
		return ClassUnknown
	}
	if c, ok := errorClasses[e.ABCICode()]; ok {
		return c
	}
	return ClassUnknown
}
