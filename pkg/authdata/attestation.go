package authdata

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-ctap/webauthnrp/pkg/webauthntypes"
)

// emptyCBORMap is the canonical encoding of the "none" attestation statement.
var emptyCBORMap = []byte{0xa0}

// AttestationObject is the CBOR envelope an authenticator returns at
// registration time.
// https://www.w3.org/TR/webauthn-3/#sctn-attestation
type AttestationObject struct {
	AuthDataRaw          []byte                                             `cbor:"authData"`
	Format               webauthntypes.AttestationStatementFormatIdentifier `cbor:"fmt"`
	AttestationStatement cbor.RawMessage                                    `cbor:"attStmt"`
	AuthData             *AuthenticatorData                                 `cbor:"-"`
}

// ParseAttestationObject decodes the attestation object and the authenticator
// data inside it. Registration requires attested credential data, so its
// absence is an error here.
func ParseAttestationObject(data []byte) (*AttestationObject, error) {
	var obj *AttestationObject
	if err := cbor.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("cannot decode attestation object CBOR: %w", err)
	}

	authData, err := Parse(obj.AuthDataRaw)
	if err != nil {
		return nil, err
	}
	if authData.AttestedCredentialData == nil {
		return nil, ErrNoAttestedCredData
	}
	obj.AuthData = authData

	return obj, nil
}

// VerifyNoneStatement checks that a "none" format statement is the empty map
// it must be.
// https://www.w3.org/TR/webauthn-3/#sctn-none-attestation
func (o *AttestationObject) VerifyNoneStatement() error {
	if !bytes.Equal(o.AttestationStatement, emptyCBORMap) {
		return fmt.Errorf("%w: none statement must be an empty map, got % 02x",
			ErrMalformedStatement, []byte(o.AttestationStatement))
	}

	return nil
}

// PackedStatement decodes a "packed" format attestation statement.
func (o *AttestationObject) PackedStatement() (*webauthntypes.PackedAttestationStatementFormat, error) {
	var stmt *webauthntypes.PackedAttestationStatementFormat
	if err := cbor.Unmarshal(o.AttestationStatement, &stmt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedStatement, err)
	}
	if len(stmt.Signature) == 0 {
		return nil, fmt.Errorf("%w: packed statement without signature", ErrMalformedStatement)
	}

	return stmt, nil
}
