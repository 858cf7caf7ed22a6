package clientdata

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cd, err := Parse([]byte(`{"type":"webauthn.get","challenge":"AQID","origin":"https://example.org"}`))
	require.NoError(t, err)

	assert.Equal(t, CeremonyGet, cd.Type)
	assert.Equal(t, "AQID", cd.Challenge)
	assert.Equal(t, "https://example.org", cd.Origin)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	challenge := []byte{1, 2, 3, 4}
	encoded := base64.RawURLEncoding.EncodeToString(challenge)

	valid := &CollectedClientData{
		Type:      CeremonyCreate,
		Challenge: encoded,
		Origin:    "https://example.org",
	}

	tests := []struct {
		name    string
		cd      CollectedClientData
		wantErr error
	}{
		{
			name: "valid",
			cd:   *valid,
		},
		{
			name: "valid with padding",
			cd: CollectedClientData{
				Type:      CeremonyCreate,
				Challenge: base64.URLEncoding.EncodeToString(challenge),
				Origin:    "https://example.org",
			},
		},
		{
			name: "wrong ceremony type",
			cd: CollectedClientData{
				Type:      CeremonyGet,
				Challenge: encoded,
				Origin:    "https://example.org",
			},
			wantErr: ErrTypeMismatch,
		},
		{
			name: "wrong challenge",
			cd: CollectedClientData{
				Type:      CeremonyCreate,
				Challenge: base64.RawURLEncoding.EncodeToString([]byte{9, 9, 9, 9}),
				Origin:    "https://example.org",
			},
			wantErr: ErrChallengeMismatch,
		},
		{
			name: "undecodable challenge",
			cd: CollectedClientData{
				Type:      CeremonyCreate,
				Challenge: "!!!not-base64!!!",
				Origin:    "https://example.org",
			},
			wantErr: ErrChallengeMismatch,
		},
		{
			name: "wrong origin",
			cd: CollectedClientData{
				Type:      CeremonyCreate,
				Challenge: encoded,
				Origin:    "https://attacker.example",
			},
			wantErr: ErrOriginMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cd.Verify(CeremonyCreate, challenge, "https://example.org")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
