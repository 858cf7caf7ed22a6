package authdata

import "errors"

var (
	ErrDataTooShort       = errors.New("authdata: authenticator data too short")
	ErrTrailingBytes      = errors.New("authdata: unexpected trailing bytes")
	ErrNoAttestedCredData = errors.New("authdata: attested credential data missing")
	ErrMalformedStatement = errors.New("authdata: malformed attestation statement")
)
