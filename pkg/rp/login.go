package rp

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/go-ctap/webauthnrp/pkg/challenge"
	"github.com/go-ctap/webauthnrp/pkg/store"
	"github.com/go-ctap/webauthnrp/pkg/webauthntypes"
)

// BeginLogin starts a username-bound authentication ceremony. The options
// restrict the browser to the user's registered credentials.
func (rp *RelyingParty) BeginLogin(ctx context.Context, username string) (*webauthntypes.PublicKeyCredentialRequestOptions, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalidInput)
	}

	userOpt, err := rp.store.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("cannot look up user: %w", err)
	}
	user, ok := userOpt.Get()
	if !ok {
		return nil, ErrUserNotFound
	}

	ch, err := challenge.New()
	if err != nil {
		return nil, err
	}
	if err := rp.store.SetChallenge(ctx, username, ch); err != nil {
		return nil, fmt.Errorf("cannot bind challenge: %w", err)
	}

	rp.logger.Debug("authentication ceremony started", "username", username)

	return &webauthntypes.PublicKeyCredentialRequestOptions{
		Challenge:        webauthntypes.URLEncodedBase64(ch),
		Timeout:          rp.timeoutMillis(),
		RPID:             rp.id,
		AllowCredentials: descriptors(user.Credentials),
		UserVerification: rp.userVerification,
		Hints:            rp.hints,
	}, nil
}

// FinishLogin verifies an assertion for a username-bound ceremony. The bound
// challenge is consumed whatever the outcome.
func (rp *RelyingParty) FinishLogin(ctx context.Context, username string, res *webauthntypes.CredentialAssertionResponse) (*Identity, error) {
	if username == "" || res == nil {
		return nil, ErrInvalidInput
	}

	userOpt, err := rp.store.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("cannot look up user: %w", err)
	}
	user, ok := userOpt.Get()
	if !ok {
		return nil, ErrInvalidCeremonyState
	}

	chOpt, err := rp.store.TakeChallenge(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("cannot take challenge: %w", err)
	}
	ch, ok := chOpt.Get()
	if !ok {
		return nil, ErrInvalidCeremonyState
	}

	var cred *store.Credential
	for i := range user.Credentials {
		if slices.Equal(user.Credentials[i].ID, []byte(res.RawID)) {
			cred = &user.Credentials[i]
			break
		}
	}
	if cred == nil {
		return nil, ErrAuthenticatorNotFound
	}

	ident, err := rp.verifyAssertion(ctx, user, *cred, ch, res)
	if err != nil {
		rp.logCeremonyFailure("authentication", username, err)
		return nil, err
	}

	return ident, nil
}

// BeginDiscoverableLogin starts a usernameless ceremony. The empty
// allowCredentials list tells the authenticator to offer any discoverable
// credential it holds for this RP. The returned token identifies the ceremony
// and must be threaded back through FinishDiscoverableLogin; each token is
// redeemable once, within the configured TTL.
func (rp *RelyingParty) BeginDiscoverableLogin(_ context.Context) (*webauthntypes.PublicKeyCredentialRequestOptions, uuid.UUID, error) {
	ch, err := challenge.New()
	if err != nil {
		return nil, uuid.Nil, err
	}
	token := rp.discoverable.Put(ch)

	rp.logger.Debug("discoverable authentication ceremony started", "token", token)

	return &webauthntypes.PublicKeyCredentialRequestOptions{
		Challenge:        webauthntypes.URLEncodedBase64(ch),
		Timeout:          rp.timeoutMillis(),
		RPID:             rp.id,
		AllowCredentials: []webauthntypes.PublicKeyCredentialDescriptor{},
		UserVerification: rp.userVerification,
		Hints:            rp.hints,
	}, token, nil
}

// FinishDiscoverableLogin verifies an assertion for a usernameless ceremony.
// The owning user is resolved by credential ID across the whole store.
func (rp *RelyingParty) FinishDiscoverableLogin(ctx context.Context, token uuid.UUID, res *webauthntypes.CredentialAssertionResponse) (*Identity, error) {
	if res == nil {
		return nil, ErrInvalidInput
	}

	ch, ok := rp.discoverable.Take(token)
	if !ok {
		return nil, ErrInvalidCeremonyState
	}

	ownerOpt, err := rp.store.FindCredential(ctx, res.RawID)
	if err != nil {
		return nil, fmt.Errorf("cannot look up credential: %w", err)
	}
	owner, ok := ownerOpt.Get()
	if !ok {
		return nil, ErrAuthenticatorNotFound
	}

	// A discoverable assertion names its account; it must agree with ours.
	if len(res.Response.UserHandle) > 0 && string(res.Response.UserHandle) != owner.User.ID {
		verr := newVerificationError("user handle", nil)
		rp.logCeremonyFailure("discoverable authentication", token.String(), verr)
		return nil, verr
	}

	ident, err := rp.verifyAssertion(ctx, owner.User, owner.Credential, ch, res)
	if err != nil {
		rp.logCeremonyFailure("discoverable authentication", token.String(), err)
		return nil, err
	}

	return ident, nil
}
