package rp

import "errors"

var (
	// ErrInvalidInput is a missing or malformed required field.
	ErrInvalidInput = errors.New("rp: invalid input")
	// ErrUserNotFound is surfaced distinctly so callers can prompt registration.
	ErrUserNotFound = errors.New("rp: user not found")
	// ErrInvalidCeremonyState means finish was called with no bound challenge,
	// typically without a prior begin or after the challenge was consumed.
	ErrInvalidCeremonyState = errors.New("rp: invalid ceremony state")
	// ErrAuthenticatorNotFound means the asserted credential ID is not
	// registered in the scope being authenticated.
	ErrAuthenticatorNotFound = errors.New("rp: authenticator not found")
	// ErrVerificationFailed covers every cryptographic, challenge, origin and
	// flag mismatch. It is deliberately a single category so a forger cannot
	// learn which check a crafted response failed.
	ErrVerificationFailed = errors.New("rp: verification failed")
	// ErrUnsupportedFormat is an attestation format the verifier cannot parse.
	ErrUnsupportedFormat = errors.New("rp: unsupported attestation format")
)

// VerificationError keeps the failing stage and cause for server-side logs
// while presenting a uniform message to callers. It unwraps to
// ErrVerificationFailed, which is the only discrimination contract.
type VerificationError struct {
	Stage string
	Cause error
}

func newVerificationError(stage string, cause error) *VerificationError {
	return &VerificationError{
		Stage: stage,
		Cause: cause,
	}
}

func (e *VerificationError) Error() string {
	return ErrVerificationFailed.Error()
}

func (e *VerificationError) Unwrap() error {
	return ErrVerificationFailed
}
