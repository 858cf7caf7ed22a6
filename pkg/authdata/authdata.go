// Package authdata decodes the binary authenticator data structure embedded in
// attestation objects and assertion responses.
// https://www.w3.org/TR/webauthn-3/#sctn-authenticator-data
package authdata

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/ldclabs/cose/key"
)

type Flag byte

const (
	FlagUserPresent Flag = 1 << iota
	_
	FlagUserVerified
	FlagBackupEligible
	FlagBackupState
	_
	FlagAttestedCredentialDataIncluded
	FlagExtensionDataIncluded
)

func (f Flag) UserPresent() bool {
	return f&FlagUserPresent != 0
}
func (f Flag) UserVerified() bool {
	return f&FlagUserVerified != 0
}
func (f Flag) BackupEligible() bool {
	return f&FlagBackupEligible != 0
}
func (f Flag) BackupState() bool {
	return f&FlagBackupState != 0
}
func (f Flag) AttestedCredentialDataIncluded() bool {
	return f&FlagAttestedCredentialDataIncluded != 0
}
func (f Flag) ExtensionDataIncluded() bool {
	return f&FlagExtensionDataIncluded != 0
}

// AttestedCredentialData is present when an authenticator binds a new
// credential. CredentialPublicKeyBytes keeps the raw COSE_Key encoding so it
// can be persisted verbatim; CredentialPublicKey is its decoded form.
type AttestedCredentialData struct {
	AAGUID                   uuid.UUID
	CredentialID             []byte
	CredentialPublicKey      key.Key
	CredentialPublicKeyBytes []byte
}

type AuthenticatorData struct {
	RPIDHash               []byte
	Flags                  Flag
	SignCount              uint32
	AttestedCredentialData *AttestedCredentialData
	Extensions             []byte
}

const fixedLength = 32 + 1 + 4

// Parse decodes authenticator data. The input is attacker-controlled, so every
// length is checked before slicing.
func Parse(data []byte) (*AuthenticatorData, error) {
	if len(data) < fixedLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooShort, len(data))
	}

	d := &AuthenticatorData{
		RPIDHash:  data[:32],
		Flags:     Flag(data[32]),
		SignCount: binary.BigEndian.Uint32(data[33:37]),
	}
	offset := fixedLength

	if d.Flags.AttestedCredentialDataIncluded() {
		if len(data) < offset+16+2 {
			return nil, fmt.Errorf("%w: truncated attested credential data", ErrDataTooShort)
		}
		credData := &AttestedCredentialData{
			AAGUID: uuid.UUID(data[offset : offset+16]),
		}
		offset += 16

		// Credential ID
		length := int(binary.BigEndian.Uint16(data[offset : offset+2]))
		offset += 2
		if len(data) < offset+length {
			return nil, fmt.Errorf("%w: truncated credential ID", ErrDataTooShort)
		}
		credData.CredentialID = data[offset : offset+length]
		offset += length

		// Credential Public Key
		dec := cbor.NewDecoder(bytes.NewReader(data[offset:]))
		var raw cbor.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("cannot decode credential public key CBOR: %w", err)
		}
		if err := cbor.Unmarshal(raw, &credData.CredentialPublicKey); err != nil {
			return nil, fmt.Errorf("cannot decode COSE_Key: %w", err)
		}
		credData.CredentialPublicKeyBytes = raw
		offset += dec.NumBytesRead()

		d.AttestedCredentialData = credData
	}

	if d.Flags.ExtensionDataIncluded() {
		d.Extensions = data[offset:]
	} else if offset != len(data) {
		return nil, ErrTrailingBytes
	}

	return d, nil
}

// CheckRPIDHash reports whether the embedded RP ID hash matches SHA-256(rpID).
func (d *AuthenticatorData) CheckRPIDHash(rpID string) bool {
	h := sha256.Sum256([]byte(rpID))
	return subtle.ConstantTimeCompare(d.RPIDHash, h[:]) == 1
}
