package rp

import (
	"context"
	"crypto/sha256"
	"fmt"
	"slices"

	"github.com/go-ctap/webauthnrp/pkg/authdata"
	"github.com/go-ctap/webauthnrp/pkg/clientdata"
	"github.com/go-ctap/webauthnrp/pkg/crypto"
	"github.com/go-ctap/webauthnrp/pkg/store"
	"github.com/go-ctap/webauthnrp/pkg/webauthntypes"
)

// verifyAssertion is the verifier shared by the bound and discoverable login
// paths. On success the stored signature counter is advanced; on failure no
// credential state is touched.
// https://www.w3.org/TR/webauthn-3/#sctn-verifying-assertion
func (rp *RelyingParty) verifyAssertion(
	ctx context.Context,
	user store.User,
	cred store.Credential,
	ch []byte,
	res *webauthntypes.CredentialAssertionResponse,
) (*Identity, error) {
	cd, err := clientdata.Parse(res.Response.ClientDataJSON)
	if err != nil {
		return nil, newVerificationError("client data", err)
	}
	if err := cd.Verify(clientdata.CeremonyGet, ch, rp.origin); err != nil {
		return nil, newVerificationError("client data", err)
	}

	ad, err := authdata.Parse(res.Response.AuthenticatorData)
	if err != nil {
		return nil, newVerificationError("authenticator data", err)
	}
	if !ad.CheckRPIDHash(rp.id) {
		return nil, newVerificationError("rp id hash", nil)
	}
	if !ad.Flags.UserPresent() {
		return nil, newVerificationError("user presence", nil)
	}
	if rp.userVerification == webauthntypes.UserVerificationRequirementRequired && !ad.Flags.UserVerified() {
		return nil, newVerificationError("user verification", nil)
	}

	vk, err := crypto.ParseCOSEKey(cred.PublicKey)
	if err != nil {
		return nil, newVerificationError("credential public key", err)
	}

	// The authenticator signs authenticatorData || SHA-256(clientDataJSON).
	clientDataHash := sha256.Sum256(res.Response.ClientDataJSON)
	signed := slices.Concat([]byte(res.Response.AuthenticatorData), clientDataHash[:])
	if err := vk.Verify(signed, res.Response.Signature); err != nil {
		return nil, newVerificationError("signature", err)
	}

	// Clone detection: a counter below the stored value means another copy of
	// the key has signed since we last saw this one. A stalled counter is
	// accepted because many platform authenticators never increment it.
	if cred.SignCount != 0 && ad.SignCount < cred.SignCount {
		return nil, newVerificationError("signature counter",
			fmt.Errorf("reported %d below stored %d", ad.SignCount, cred.SignCount))
	}

	if err := rp.store.UpdateSignCount(ctx, cred.ID, ad.SignCount); err != nil {
		return nil, fmt.Errorf("cannot update signature counter: %w", err)
	}

	rp.logger.Debug("authentication ceremony finished",
		"username", user.Username,
		"credential_id", webauthntypes.URLEncodedBase64(cred.ID).String(),
		"sign_count", ad.SignCount,
	)

	return &Identity{
		ID:       user.ID,
		Username: user.Username,
	}, nil
}
