// Package crypto converts COSE-encoded credential public keys into verifiable
// keys and dispatches WebAuthn signature verification by key type.
package crypto

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/ldclabs/cose/iana"
	"github.com/ldclabs/cose/key"
	ecdsa2 "github.com/ldclabs/cose/key/ecdsa"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// VerificationKey is a credential public key ready to verify WebAuthn
// signatures. Message is the raw signed data; hashing is the key's concern.
type VerificationKey interface {
	Alg() key.Alg
	Verify(message, signature []byte) error
}

// SupportedAlgorithms lists the COSE algorithms this package can verify, in
// preference order. It doubles as the default pubKeyCredParams set.
func SupportedAlgorithms() []key.Alg {
	return []key.Alg{
		iana.AlgorithmES256,
		iana.AlgorithmRS256,
	}
}

// ParseCOSEKey decodes a CBOR-encoded COSE_Key and returns the matching
// verification key variant.
func ParseCOSEKey(data []byte) (VerificationKey, error) {
	var k key.Key
	if err := cbor.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("cannot decode COSE_Key CBOR: %w", err)
	}

	return KeyToVerificationKey(k)
}

// KeyToVerificationKey dispatches an already-decoded COSE_Key by its key type.
func KeyToVerificationKey(k key.Key) (VerificationKey, error) {
	switch k.Kty() {
	case iana.KeyTypeEC2:
		return newEC2Key(k)
	case iana.KeyTypeRSA:
		return newRSAKey(k)
	default:
		return nil, fmt.Errorf("%w: kty %d", ErrUnsupportedKeyType, k.Kty())
	}
}

type ec2Key struct {
	pub *ecdsa.PublicKey
	alg key.Alg
}

func newEC2Key(k key.Key) (*ec2Key, error) {
	alg := k.Alg()
	if alg == iana.AlgorithmReserved {
		alg = iana.AlgorithmES256
	}
	if alg != iana.AlgorithmES256 {
		return nil, fmt.Errorf("%w: EC2 alg %d", ErrUnsupportedAlgorithm, alg)
	}

	pub, err := ecdsa2.KeyToPublic(k)
	if err != nil {
		return nil, fmt.Errorf("cannot convert COSE_Key to *ecdsa.PublicKey: %w", err)
	}

	return &ec2Key{pub: pub, alg: alg}, nil
}

func (e *ec2Key) Alg() key.Alg {
	return e.alg
}

// Verify checks an ES256 signature. WebAuthn signatures are ASN.1
// DER-encoded, unlike the raw r||s concatenation COSE itself uses.
func (e *ec2Key) Verify(message, signature []byte) error {
	digest := sha256.Sum256(message)

	var (
		r, s  = new(big.Int), new(big.Int)
		inner cryptobyte.String
	)
	input := cryptobyte.String(signature)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return ErrInvalidSignature
	}

	if !ecdsa.Verify(e.pub, digest[:], r, s) {
		return ErrInvalidSignature
	}

	return nil
}

type rsaKey struct {
	pub *rsa.PublicKey
	alg key.Alg
}

func newRSAKey(k key.Key) (*rsaKey, error) {
	alg := k.Alg()
	if alg == iana.AlgorithmReserved {
		alg = iana.AlgorithmRS256
	}
	if alg != iana.AlgorithmRS256 {
		return nil, fmt.Errorf("%w: RSA alg %d", ErrUnsupportedAlgorithm, alg)
	}

	n, err := k.GetBytes(iana.RSAKeyParameterN)
	if err != nil {
		return nil, fmt.Errorf("cannot read RSA modulus: %w", err)
	}
	e, err := k.GetBytes(iana.RSAKeyParameterE)
	if err != nil {
		return nil, fmt.Errorf("cannot read RSA exponent: %w", err)
	}

	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() < 3 {
		return nil, fmt.Errorf("%w: implausible RSA exponent", ErrUnsupportedAlgorithm)
	}

	return &rsaKey{
		pub: &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(exp.Int64()),
		},
		alg: alg,
	}, nil
}

func (r *rsaKey) Alg() key.Alg {
	return r.alg
}

// Verify checks an RS256 (RSASSA-PKCS1-v1_5 over SHA-256) signature.
func (r *rsaKey) Verify(message, signature []byte) error {
	digest := sha256.Sum256(message)

	if err := rsa.VerifyPKCS1v15(r.pub, stdcrypto.SHA256, digest[:], signature); err != nil {
		return ErrInvalidSignature
	}

	return nil
}
