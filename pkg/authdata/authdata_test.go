package authdata

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/ldclabs/cose/iana"
	"github.com/ldclabs/cose/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAuthData(t *testing.T, flags Flag, signCount uint32, withCredData bool) []byte {
	t.Helper()

	rpIDHash := sha256.Sum256([]byte("example.org"))
	out := append([]byte{}, rpIDHash[:]...)
	out = append(out, byte(flags))
	out = binary.BigEndian.AppendUint32(out, signCount)

	if withCredData {
		aaguid := uuid.New()
		credID := []byte("test-credential-id")

		coseKey := key.Key{
			iana.KeyParameterKty:    iana.KeyTypeEC2,
			iana.KeyParameterAlg:    iana.AlgorithmES256,
			iana.EC2KeyParameterCrv: iana.EllipticCurveP_256,
			iana.EC2KeyParameterX:   bytes.Repeat([]byte{0xaa}, 32),
			iana.EC2KeyParameterY:   bytes.Repeat([]byte{0xbb}, 32),
		}
		keyBytes, err := cbor.Marshal(coseKey)
		require.NoError(t, err)

		out = append(out, aaguid[:]...)
		out = binary.BigEndian.AppendUint16(out, uint16(len(credID)))
		out = append(out, credID...)
		out = append(out, keyBytes...)
	}

	return out
}

func TestParse(t *testing.T) {
	flags := FlagUserPresent | FlagUserVerified | FlagAttestedCredentialDataIncluded
	data := buildAuthData(t, flags, 42, true)

	d, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, d.Flags.UserPresent())
	assert.True(t, d.Flags.UserVerified())
	assert.True(t, d.Flags.AttestedCredentialDataIncluded())
	assert.False(t, d.Flags.BackupEligible())
	assert.False(t, d.Flags.ExtensionDataIncluded())
	assert.EqualValues(t, 42, d.SignCount)

	require.NotNil(t, d.AttestedCredentialData)
	assert.Equal(t, []byte("test-credential-id"), d.AttestedCredentialData.CredentialID)
	assert.Equal(t, iana.KeyTypeEC2, d.AttestedCredentialData.CredentialPublicKey.Kty())
	assert.NotEmpty(t, d.AttestedCredentialData.CredentialPublicKeyBytes)
}

func TestParseAssertionData(t *testing.T) {
	data := buildAuthData(t, FlagUserPresent, 7, false)

	d, err := Parse(data)
	require.NoError(t, err)

	assert.Nil(t, d.AttestedCredentialData)
	assert.EqualValues(t, 7, d.SignCount)
	assert.True(t, d.CheckRPIDHash("example.org"))
	assert.False(t, d.CheckRPIDHash("evil.example.org"))
}

func TestParseTruncated(t *testing.T) {
	full := buildAuthData(t, FlagUserPresent|FlagAttestedCredentialDataIncluded, 0, true)

	for _, n := range []int{0, 10, 36, 37, 40, 54} {
		_, err := Parse(full[:n])
		assert.Error(t, err, "length %d", n)
	}
}

func TestParseTrailingBytes(t *testing.T) {
	data := buildAuthData(t, FlagUserPresent, 0, false)
	data = append(data, 0xde, 0xad)

	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrTrailingBytes)
}

func TestParseAttestationObject(t *testing.T) {
	authDataRaw := buildAuthData(t, FlagUserPresent|FlagAttestedCredentialDataIncluded, 0, true)

	raw, err := cbor.Marshal(&struct {
		AuthData []byte          `cbor:"authData"`
		Format   string          `cbor:"fmt"`
		AttStmt  cbor.RawMessage `cbor:"attStmt"`
	}{
		AuthData: authDataRaw,
		Format:   "none",
		AttStmt:  cbor.RawMessage{0xa0},
	})
	require.NoError(t, err)

	obj, err := ParseAttestationObject(raw)
	require.NoError(t, err)

	assert.EqualValues(t, "none", obj.Format)
	assert.NoError(t, obj.VerifyNoneStatement())
	require.NotNil(t, obj.AuthData)
	assert.Equal(t, []byte("test-credential-id"), obj.AuthData.AttestedCredentialData.CredentialID)
}

func TestParseAttestationObjectWithoutCredentialData(t *testing.T) {
	authDataRaw := buildAuthData(t, FlagUserPresent, 0, false)

	raw, err := cbor.Marshal(&struct {
		AuthData []byte          `cbor:"authData"`
		Format   string          `cbor:"fmt"`
		AttStmt  cbor.RawMessage `cbor:"attStmt"`
	}{
		AuthData: authDataRaw,
		Format:   "none",
		AttStmt:  cbor.RawMessage{0xa0},
	})
	require.NoError(t, err)

	_, err = ParseAttestationObject(raw)
	assert.ErrorIs(t, err, ErrNoAttestedCredData)
}

func TestVerifyNoneStatementRejectsPayload(t *testing.T) {
	stmt, err := cbor.Marshal(map[string]any{"sig": []byte{1, 2, 3}})
	require.NoError(t, err)

	obj := &AttestationObject{AttestationStatement: stmt}
	assert.ErrorIs(t, obj.VerifyNoneStatement(), ErrMalformedStatement)
}
