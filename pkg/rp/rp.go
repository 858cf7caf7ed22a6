// Package rp implements the Relying-Party side of the WebAuthn registration
// and authentication ceremonies: challenge issuance, option building, and
// attestation/assertion verification, independent of any HTTP framework.
package rp

import (
	"log/slog"
	"time"

	"github.com/ldclabs/cose/key"
	"github.com/samber/lo"

	"github.com/go-ctap/webauthnrp/pkg/challenge"
	"github.com/go-ctap/webauthnrp/pkg/options"
	"github.com/go-ctap/webauthnrp/pkg/store"
	"github.com/go-ctap/webauthnrp/pkg/webauthntypes"
)

// RelyingParty drives WebAuthn ceremonies against a single RP identity.
// Configuration is immutable after New.
type RelyingParty struct {
	name   string
	id     string
	origin string

	store        store.Store
	discoverable *challenge.Table

	logger     *slog.Logger
	timeout    time.Duration
	algorithms []key.Alg

	userVerification webauthntypes.UserVerificationRequirement
	residentKey      webauthntypes.ResidentKeyRequirement
	attestation      webauthntypes.AttestationConveyancePreference
	hints            []webauthntypes.PublicKeyCredentialHint
}

// Identity is the public identity of an authenticated user.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// New builds a RelyingParty. name is the human-readable RP name, id the RP ID
// (a hostname), origin the exact web origin responses must carry.
func New(name, id, origin string, s store.Store, opts ...options.Option) (*RelyingParty, error) {
	if name == "" || id == "" || origin == "" || s == nil {
		return nil, ErrInvalidInput
	}

	oo := options.NewOptions(opts...)

	return &RelyingParty{
		name:             name,
		id:               id,
		origin:           origin,
		store:            s,
		discoverable:     challenge.NewTable(oo.ChallengeTTL),
		logger:           oo.Logger,
		timeout:          oo.Timeout,
		algorithms:       oo.Algorithms,
		userVerification: oo.UserVerification,
		residentKey:      oo.ResidentKey,
		attestation:      oo.Attestation,
		hints:            oo.Hints,
	}, nil
}

// timeoutMillis is the advisory hint communicated to the browser.
func (rp *RelyingParty) timeoutMillis() uint {
	return uint(rp.timeout.Milliseconds())
}

func (rp *RelyingParty) credentialParameters() []webauthntypes.PublicKeyCredentialParameters {
	return lo.Map(rp.algorithms, func(alg key.Alg, _ int) webauthntypes.PublicKeyCredentialParameters {
		return webauthntypes.PublicKeyCredentialParameters{
			Type:      webauthntypes.PublicKeyCredentialTypePublicKey,
			Algorithm: alg,
		}
	})
}

func descriptors(creds []store.Credential) []webauthntypes.PublicKeyCredentialDescriptor {
	return lo.Map(creds, func(c store.Credential, _ int) webauthntypes.PublicKeyCredentialDescriptor {
		return c.Descriptor()
	})
}
