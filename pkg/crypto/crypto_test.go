package crypto

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/ldclabs/cose/iana"
	"github.com/ldclabs/cose/key"
	ecdsa2 "github.com/ldclabs/cose/key/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var message = []byte("authenticator data || client data hash")

func TestEC2RoundTrip(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	coseKey, err := ecdsa2.KeyFromPublic(&priv.PublicKey)
	require.NoError(t, err)
	require.NoError(t, coseKey.Set(iana.KeyParameterAlg, iana.AlgorithmES256))

	encoded, err := cbor.Marshal(coseKey)
	require.NoError(t, err)

	vk, err := ParseCOSEKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, key.Alg(iana.AlgorithmES256), vk.Alg())

	digest := sha256.Sum256(message)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	assert.NoError(t, vk.Verify(message, sig))
	assert.ErrorIs(t, vk.Verify([]byte("different message"), sig), ErrInvalidSignature)
	assert.ErrorIs(t, vk.Verify(message, []byte("garbage")), ErrInvalidSignature)
}

func TestRSARoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	coseKey := key.Key{
		iana.KeyParameterKty:  iana.KeyTypeRSA,
		iana.KeyParameterAlg:  iana.AlgorithmRS256,
		iana.RSAKeyParameterN: priv.PublicKey.N.Bytes(),
		iana.RSAKeyParameterE: big.NewInt(int64(priv.PublicKey.E)).Bytes(),
	}
	encoded, err := cbor.Marshal(coseKey)
	require.NoError(t, err)

	vk, err := ParseCOSEKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, key.Alg(iana.AlgorithmRS256), vk.Alg())

	digest := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, stdcrypto.SHA256, digest[:])
	require.NoError(t, err)

	assert.NoError(t, vk.Verify(message, sig))
	assert.ErrorIs(t, vk.Verify([]byte("different message"), sig), ErrInvalidSignature)
}

func TestUnsupportedKeyType(t *testing.T) {
	coseKey := key.Key{
		iana.KeyParameterKty: iana.KeyTypeOKP,
		iana.KeyParameterAlg: iana.AlgorithmEdDSA,
	}
	encoded, err := cbor.Marshal(coseKey)
	require.NoError(t, err)

	_, err = ParseCOSEKey(encoded)
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)
}

func TestUnsupportedAlgorithm(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	coseKey, err := ecdsa2.KeyFromPublic(&priv.PublicKey)
	require.NoError(t, err)
	require.NoError(t, coseKey.Set(iana.KeyParameterAlg, iana.AlgorithmES384))

	_, err = KeyToVerificationKey(coseKey)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestParseCOSEKeyGarbage(t *testing.T) {
	_, err := ParseCOSEKey([]byte{0xff, 0x00, 0x13, 0x37})
	assert.Error(t, err)
}
