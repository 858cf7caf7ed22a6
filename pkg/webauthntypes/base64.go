package webauthntypes

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// URLEncodedBase64 is a byte slice that marshals to and from the unpadded
// base64url strings browsers produce for WebAuthn binary fields.
type URLEncodedBase64 []byte

func (b URLEncodedBase64) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}

	return json.Marshal(base64.RawURLEncoding.EncodeToString(b))
}

func (b *URLEncodedBase64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Some clients pad, some don't.
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return err
	}

	*b = decoded
	return nil
}

func (b URLEncodedBase64) String() string {
	return base64.RawURLEncoding.EncodeToString(b)
}
