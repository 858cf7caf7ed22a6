// Package challenge issues and tracks the unguessable per-ceremony values a
// Relying Party binds its WebAuthn ceremonies to.
package challenge

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// Size is the number of random bytes per challenge. WebAuthn requires at least 16;
// 32 matches what browsers and authenticators commonly see in the wild.
// https://www.w3.org/TR/webauthn-3/#sctn-cryptographic-challenges
const Size = 32

type Challenge []byte

// New returns Size bytes from a cryptographically secure source.
func New() (Challenge, error) {
	c := make(Challenge, Size)
	if _, err := rand.Read(c); err != nil {
		return nil, fmt.Errorf("challenge: cannot read random bytes: %w", err)
	}

	return c, nil
}

// String is the base64url transport encoding sent to the browser.
func (c Challenge) String() string {
	return base64.RawURLEncoding.EncodeToString(c)
}

// Equal compares two challenges byte-for-byte in constant time.
func (c Challenge) Equal(other []byte) bool {
	return len(c) == len(other) && subtle.ConstantTimeCompare(c, other) == 1
}
