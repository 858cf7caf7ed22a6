// Package softauthn is a minimal software authenticator. It plays the
// browser/platform-authenticator role against the rp package in tests and
// examples: it answers creation options with "none"/packed attestations and
// request options with signed assertions.
package softauthn

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/ldclabs/cose/iana"
	"github.com/ldclabs/cose/key"
	ecdsa2 "github.com/ldclabs/cose/key/ecdsa"

	"github.com/go-ctap/webauthnrp/pkg/authdata"
	"github.com/go-ctap/webauthnrp/pkg/clientdata"
	"github.com/go-ctap/webauthnrp/pkg/webauthntypes"
)

var ErrNoMatchingCredential = errors.New("softauthn: no matching credential")

type credential struct {
	id         []byte
	rpID       string
	userHandle []byte
	signCount  uint32

	ecdsaKey *ecdsa.PrivateKey
	rsaKey   *rsa.PrivateKey
	coseKey  key.Key
}

type Authenticator struct {
	aaguid uuid.UUID
	alg    key.Alg
	format webauthntypes.AttestationStatementFormatIdentifier
	noUV   bool
	creds  []*credential
}

type Option func(*Authenticator)

// WithAlgorithm selects the key algorithm for newly created credentials,
// ES256 by default; RS256 is also supported.
func WithAlgorithm(alg key.Alg) Option {
	return func(a *Authenticator) {
		a.alg = alg
	}
}

// WithPackedAttestation makes Create emit a packed self-attestation statement
// instead of the default "none".
func WithPackedAttestation() Option {
	return func(a *Authenticator) {
		a.format = webauthntypes.AttestationStatementFormatIdentifierPacked
	}
}

// WithoutUserVerification simulates an authenticator that checks presence only
// (no PIN or biometric), leaving the UV flag clear.
func WithoutUserVerification() Option {
	return func(a *Authenticator) {
		a.noUV = true
	}
}

func New(opts ...Option) *Authenticator {
	a := &Authenticator{
		aaguid: uuid.New(),
		alg:    iana.AlgorithmES256,
		format: webauthntypes.AttestationStatementFormatIdentifierNone,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Create answers navigator.credentials.create(): it mints a key pair, builds
// the authenticator data with attested credential data, and wraps it in an
// attestation object.
func (a *Authenticator) Create(origin string, opts *webauthntypes.PublicKeyCredentialCreationOptions) (*webauthntypes.CredentialCreationResponse, error) {
	for _, excluded := range opts.ExcludeCredentials {
		for _, c := range a.creds {
			if slices.Equal(c.id, []byte(excluded.ID)) {
				return nil, fmt.Errorf("softauthn: credential already registered for %s", opts.RP.ID)
			}
		}
	}

	cred := &credential{
		id:         make([]byte, 32),
		rpID:       opts.RP.ID,
		userHandle: slices.Clone(opts.User.ID),
	}
	if _, err := rand.Read(cred.id); err != nil {
		return nil, err
	}

	switch a.alg {
	case iana.AlgorithmES256:
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, err
		}
		coseKey, err := ecdsa2.KeyFromPublic(&priv.PublicKey)
		if err != nil {
			return nil, err
		}
		if err := coseKey.Set(iana.KeyParameterAlg, iana.AlgorithmES256); err != nil {
			return nil, err
		}
		cred.ecdsaKey = priv
		cred.coseKey = coseKey

	case iana.AlgorithmRS256:
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, err
		}
		cred.rsaKey = priv
		cred.coseKey = key.Key{
			iana.KeyParameterKty:  iana.KeyTypeRSA,
			iana.KeyParameterAlg:  iana.AlgorithmRS256,
			iana.RSAKeyParameterN: priv.PublicKey.N.Bytes(),
			iana.RSAKeyParameterE: big.NewInt(int64(priv.PublicKey.E)).Bytes(),
		}

	default:
		return nil, fmt.Errorf("softauthn: unsupported algorithm %d", a.alg)
	}

	clientDataJSON, err := json.Marshal(&clientdata.CollectedClientData{
		Type:      clientdata.CeremonyCreate,
		Challenge: opts.Challenge.String(),
		Origin:    origin,
	})
	if err != nil {
		return nil, err
	}

	keyBytes, err := cbor.Marshal(cred.coseKey)
	if err != nil {
		return nil, err
	}

	authDataRaw := a.buildAuthData(cred.rpID, a.flags(authdata.FlagAttestedCredentialDataIncluded), cred.signCount)
	authDataRaw = append(authDataRaw, a.aaguid[:]...)
	authDataRaw = binary.BigEndian.AppendUint16(authDataRaw, uint16(len(cred.id)))
	authDataRaw = append(authDataRaw, cred.id...)
	authDataRaw = append(authDataRaw, keyBytes...)

	attStmt := cbor.RawMessage{0xa0}
	if a.format == webauthntypes.AttestationStatementFormatIdentifierPacked {
		clientDataHash := sha256.Sum256(clientDataJSON)
		sig, err := cred.sign(slices.Concat(authDataRaw, clientDataHash[:]))
		if err != nil {
			return nil, err
		}
		attStmt, err = cbor.Marshal(&webauthntypes.PackedAttestationStatementFormat{
			Algorithm: a.alg,
			Signature: sig,
		})
		if err != nil {
			return nil, err
		}
	}

	attObj, err := cbor.Marshal(&struct {
		AuthData []byte          `cbor:"authData"`
		Format   string          `cbor:"fmt"`
		AttStmt  cbor.RawMessage `cbor:"attStmt"`
	}{
		AuthData: authDataRaw,
		Format:   string(a.format),
		AttStmt:  attStmt,
	})
	if err != nil {
		return nil, err
	}

	a.creds = append(a.creds, cred)

	return &webauthntypes.CredentialCreationResponse{
		ID:    base64.RawURLEncoding.EncodeToString(cred.id),
		RawID: webauthntypes.URLEncodedBase64(cred.id),
		Type:  webauthntypes.PublicKeyCredentialTypePublicKey,
		Response: webauthntypes.AuthenticatorAttestationResponse{
			ClientDataJSON:    clientDataJSON,
			AttestationObject: attObj,
			Transports: []webauthntypes.AuthenticatorTransport{
				webauthntypes.AuthenticatorTransportInternal,
			},
		},
	}, nil
}

// Get answers navigator.credentials.get(). With a non-empty allowCredentials
// list it uses the first match; with an empty list it acts as a discoverable
// credential and picks any credential scoped to the RP ID.
func (a *Authenticator) Get(origin string, opts *webauthntypes.PublicKeyCredentialRequestOptions) (*webauthntypes.CredentialAssertionResponse, error) {
	cred, err := a.selectCredential(opts)
	if err != nil {
		return nil, err
	}

	clientDataJSON, err := json.Marshal(&clientdata.CollectedClientData{
		Type:      clientdata.CeremonyGet,
		Challenge: opts.Challenge.String(),
		Origin:    origin,
	})
	if err != nil {
		return nil, err
	}

	cred.signCount++
	authDataRaw := a.buildAuthData(cred.rpID, a.flags(0), cred.signCount)

	clientDataHash := sha256.Sum256(clientDataJSON)
	sig, err := cred.sign(slices.Concat(authDataRaw, clientDataHash[:]))
	if err != nil {
		return nil, err
	}

	return &webauthntypes.CredentialAssertionResponse{
		ID:    base64.RawURLEncoding.EncodeToString(cred.id),
		RawID: webauthntypes.URLEncodedBase64(cred.id),
		Type:  webauthntypes.PublicKeyCredentialTypePublicKey,
		Response: webauthntypes.AuthenticatorAssertionResponse{
			ClientDataJSON:    clientDataJSON,
			AuthenticatorData: authDataRaw,
			Signature:         sig,
			UserHandle:        webauthntypes.URLEncodedBase64(cred.userHandle),
		},
	}, nil
}

// SetSignCount overrides the stored counter of a credential; tests use it to
// simulate cloned or stalled authenticators.
func (a *Authenticator) SetSignCount(credentialID []byte, signCount uint32) {
	for _, c := range a.creds {
		if slices.Equal(c.id, credentialID) {
			c.signCount = signCount
			return
		}
	}
}

func (a *Authenticator) selectCredential(opts *webauthntypes.PublicKeyCredentialRequestOptions) (*credential, error) {
	if len(opts.AllowCredentials) > 0 {
		for _, allowed := range opts.AllowCredentials {
			for _, c := range a.creds {
				if slices.Equal(c.id, []byte(allowed.ID)) {
					return c, nil
				}
			}
		}
		return nil, fmt.Errorf("%w: rpId %q", ErrNoMatchingCredential, opts.RPID)
	}

	for _, c := range a.creds {
		if c.rpID == opts.RPID {
			return c, nil
		}
	}

	return nil, fmt.Errorf("%w: rpId %q", ErrNoMatchingCredential, opts.RPID)
}

func (a *Authenticator) flags(extra authdata.Flag) authdata.Flag {
	flags := authdata.FlagUserPresent | extra
	if !a.noUV {
		flags |= authdata.FlagUserVerified
	}

	return flags
}

func (a *Authenticator) buildAuthData(rpID string, flags authdata.Flag, signCount uint32) []byte {
	rpIDHash := sha256.Sum256([]byte(rpID))

	out := make([]byte, 0, 37)
	out = append(out, rpIDHash[:]...)
	out = append(out, byte(flags))
	out = binary.BigEndian.AppendUint32(out, signCount)

	return out
}

func (c *credential) sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)

	switch {
	case c.ecdsaKey != nil:
		return ecdsa.SignASN1(rand.Reader, c.ecdsaKey, digest[:])
	case c.rsaKey != nil:
		return rsa.SignPKCS1v15(rand.Reader, c.rsaKey, stdcrypto.SHA256, digest[:])
	default:
		return nil, errors.New("softauthn: credential has no private key")
	}
}
