// Package clientdata parses and checks the collectedClientData structure the
// browser serializes and the authenticator signs over.
// https://www.w3.org/TR/webauthn-3/#dictionary-client-data
package clientdata

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Ceremony type values carried in collectedClientData.
const (
	CeremonyCreate = "webauthn.create"
	CeremonyGet    = "webauthn.get"
)

var (
	ErrTypeMismatch      = errors.New("clientdata: ceremony type mismatch")
	ErrChallengeMismatch = errors.New("clientdata: challenge mismatch")
	ErrOriginMismatch    = errors.New("clientdata: origin mismatch")
)

// CollectedClientData is the contextual binding of both the Relying Party and
// the client, signed by the authenticator after JSON serialization.
type CollectedClientData struct {
	Type        string `json:"type"`
	Challenge   string `json:"challenge"`
	Origin      string `json:"origin"`
	CrossOrigin bool   `json:"crossOrigin,omitempty"`
}

func Parse(data []byte) (*CollectedClientData, error) {
	var cd *CollectedClientData
	if err := json.Unmarshal(data, &cd); err != nil {
		return nil, fmt.Errorf("clientdata: cannot decode JSON: %w", err)
	}

	return cd, nil
}

// Verify checks the ceremony type, the challenge binding and the origin
// binding. The challenge is compared byte-for-byte after base64url decoding,
// in constant time.
func (cd *CollectedClientData) Verify(ceremony string, challenge []byte, origin string) error {
	if cd.Type != ceremony {
		return fmt.Errorf("%w: want %q, got %q", ErrTypeMismatch, ceremony, cd.Type)
	}

	got, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(cd.Challenge, "="))
	if err != nil {
		return fmt.Errorf("%w: undecodable challenge", ErrChallengeMismatch)
	}
	if len(got) != len(challenge) || subtle.ConstantTimeCompare(got, challenge) != 1 {
		return ErrChallengeMismatch
	}

	if cd.Origin != origin {
		return fmt.Errorf("%w: want %q, got %q", ErrOriginMismatch, origin, cd.Origin)
	}

	return nil
}
