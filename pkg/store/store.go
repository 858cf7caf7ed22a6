// Package store defines the persistence contract the WebAuthn ceremonies run
// against: users, their bound credentials, and the challenge each scope
// currently has outstanding.
package store

import (
	"context"
	"errors"

	"github.com/samber/mo"

	"github.com/go-ctap/webauthnrp/pkg/webauthntypes"
)

var (
	ErrUnknownUser       = errors.New("store: unknown user")
	ErrUnknownCredential = errors.New("store: unknown credential")
	ErrCredentialExists  = errors.New("store: credential ID already registered")
)

// User is an account that owns credentials. CurrentChallenge is the challenge
// bound to the user's in-flight ceremony, if any; a new begin overwrites it.
type User struct {
	ID               string
	Username         string
	CurrentChallenge []byte
	Credentials      []Credential
}

// Credential is one authenticator-bound public key credential. PublicKey holds
// the raw COSE_Key encoding exactly as the authenticator produced it.
type Credential struct {
	ID         []byte
	PublicKey  []byte
	SignCount  uint32
	DeviceType webauthntypes.CredentialDeviceType
	BackedUp   bool
	Transports []webauthntypes.AuthenticatorTransport
}

// Descriptor renders the credential as the wire shape used in
// excludeCredentials and allowCredentials lists.
func (c Credential) Descriptor() webauthntypes.PublicKeyCredentialDescriptor {
	return webauthntypes.PublicKeyCredentialDescriptor{
		Type:       webauthntypes.PublicKeyCredentialTypePublicKey,
		ID:         webauthntypes.URLEncodedBase64(c.ID),
		Transports: c.Transports,
	}
}

// Owner pairs a credential with the user it belongs to, for lookups where the
// user is not known up front.
type Owner struct {
	User       User
	Credential Credential
}

// Store is the abstract persistence consumed by the ceremonies. Every mutation
// must be atomic with respect to its scope key (username or credential ID) so
// concurrent ceremonies for the same identity cannot lose updates.
type Store interface {
	// GetUser looks a user up by username.
	GetUser(ctx context.Context, username string) (mo.Option[User], error)

	// GetOrCreateUser returns the user, creating the account on first
	// registration. Creation is atomic: concurrent calls with the same
	// username observe a single account.
	GetOrCreateUser(ctx context.Context, username string) (User, error)

	// FindCredential resolves a credential ID to its owner across all users.
	// This is the discoverable-login index; implementations should back it
	// with a dedicated credential-ID index rather than a scan.
	FindCredential(ctx context.Context, credentialID []byte) (mo.Option[Owner], error)

	// AddCredential binds a new credential to the user. Credential IDs are
	// unique across the whole store, not just per user; a clash anywhere is
	// ErrCredentialExists.
	AddCredential(ctx context.Context, username string, cred Credential) error

	// UpdateSignCount records the counter reported by a verified assertion.
	UpdateSignCount(ctx context.Context, credentialID []byte, signCount uint32) error

	// SetChallenge binds a challenge to the user, replacing any previous one.
	SetChallenge(ctx context.Context, username string, challenge []byte) error

	// TakeChallenge atomically reads and clears the user's bound challenge.
	// Absence means no ceremony is in flight.
	TakeChallenge(ctx context.Context, username string) (mo.Option[[]byte], error)
}
