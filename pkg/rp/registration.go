package rp

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"

	"github.com/go-ctap/webauthnrp/pkg/authdata"
	"github.com/go-ctap/webauthnrp/pkg/challenge"
	"github.com/go-ctap/webauthnrp/pkg/clientdata"
	"github.com/go-ctap/webauthnrp/pkg/crypto"
	"github.com/go-ctap/webauthnrp/pkg/store"
	"github.com/go-ctap/webauthnrp/pkg/webauthntypes"
)

// BeginRegistration starts a registration ceremony for username, creating the
// account on first contact. The returned options carry a fresh challenge; any
// previously bound challenge for this user is superseded.
func (rp *RelyingParty) BeginRegistration(ctx context.Context, username string) (*webauthntypes.PublicKeyCredentialCreationOptions, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalidInput)
	}

	user, err := rp.store.GetOrCreateUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("cannot get or create user: %w", err)
	}

	ch, err := challenge.New()
	if err != nil {
		return nil, err
	}
	if err := rp.store.SetChallenge(ctx, username, ch); err != nil {
		return nil, fmt.Errorf("cannot bind challenge: %w", err)
	}

	rp.logger.Debug("registration ceremony started",
		"username", username,
		"existing_credentials", len(user.Credentials),
	)

	return &webauthntypes.PublicKeyCredentialCreationOptions{
		RP: webauthntypes.PublicKeyCredentialRpEntity{
			ID:   rp.id,
			Name: rp.name,
		},
		User: webauthntypes.PublicKeyCredentialUserEntity{
			ID:          webauthntypes.URLEncodedBase64(user.ID),
			Name:        user.Username,
			DisplayName: user.Username,
		},
		Challenge:        webauthntypes.URLEncodedBase64(ch),
		PubKeyCredParams: rp.credentialParameters(),
		Timeout:          rp.timeoutMillis(),
		// Prevents re-registering an authenticator already bound to this user.
		ExcludeCredentials: descriptors(user.Credentials),
		AuthenticatorSelection: webauthntypes.AuthenticatorSelectionCriteria{
			ResidentKey:      rp.residentKey,
			UserVerification: rp.userVerification,
		},
		Hints:       rp.hints,
		Attestation: rp.attestation,
	}, nil
}

// FinishRegistration verifies the browser's attestation response and binds the
// new credential to the user. The bound challenge is consumed up front, so a
// failed ceremony cannot be retried against the same challenge; callers
// restart with BeginRegistration.
func (rp *RelyingParty) FinishRegistration(ctx context.Context, username string, res *webauthntypes.CredentialCreationResponse) (*store.Credential, error) {
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

	cred, err := rp.verifyAttestation(ch, res)
	if err != nil {
		rp.logCeremonyFailure("registration", username, err)
		return nil, err
	}

	if err := rp.store.AddCredential(ctx, username, *cred); err != nil {
		if errors.Is(err, store.ErrCredentialExists) {
			verr := newVerificationError("credential binding", err)
			rp.logCeremonyFailure("registration", username, verr)
			return nil, verr
		}
		return nil, fmt.Errorf("cannot persist credential: %w", err)
	}

	rp.logger.Debug("registration ceremony finished",
		"username", user.Username,
		"credential_id", webauthntypes.URLEncodedBase64(cred.ID).String(),
		"device_type", cred.DeviceType,
	)

	return cred, nil
}

// verifyAttestation runs the WebAuthn registration verification chain and
// extracts the credential to persist.
// https://www.w3.org/TR/webauthn-3/#sctn-registering-a-new-credential
func (rp *RelyingParty) verifyAttestation(ch []byte, res *webauthntypes.CredentialCreationResponse) (*store.Credential, error) {
	cd, err := clientdata.Parse(res.Response.ClientDataJSON)
	if err != nil {
		return nil, newVerificationError("client data", err)
	}
	if err := cd.Verify(clientdata.CeremonyCreate, ch, rp.origin); err != nil {
		return nil, newVerificationError("client data", err)
	}

	obj, err := authdata.ParseAttestationObject(res.Response.AttestationObject)
	if err != nil {
		return nil, newVerificationError("attestation object", err)
	}
	ad := obj.AuthData

	if !ad.CheckRPIDHash(rp.id) {
		return nil, newVerificationError("rp id hash", nil)
	}
	if !ad.Flags.UserPresent() {
		return nil, newVerificationError("user presence", nil)
	}
	if rp.userVerification == webauthntypes.UserVerificationRequirementRequired && !ad.Flags.UserVerified() {
		return nil, newVerificationError("user verification", nil)
	}

	acd := ad.AttestedCredentialData
	if len(res.RawID) > 0 && !slices.Equal([]byte(res.RawID), acd.CredentialID) {
		return nil, newVerificationError("credential id", nil)
	}

	// The key must be one we can later verify assertions with.
	vk, err := crypto.KeyToVerificationKey(acd.CredentialPublicKey)
	if err != nil {
		return nil, newVerificationError("credential public key", err)
	}
	if !slices.Contains(rp.algorithms, vk.Alg()) {
		return nil, newVerificationError("credential public key", crypto.ErrUnsupportedAlgorithm)
	}

	if err := rp.verifyAttestationStatement(obj, vk, res.Response.ClientDataJSON); err != nil {
		return nil, err
	}

	deviceType := webauthntypes.CredentialDeviceTypeSingleDevice
	if ad.Flags.BackupEligible() {
		deviceType = webauthntypes.CredentialDeviceTypeMultiDevice
	}

	return &store.Credential{
		ID:         slices.Clone(acd.CredentialID),
		PublicKey:  slices.Clone(acd.CredentialPublicKeyBytes),
		SignCount:  ad.SignCount,
		DeviceType: deviceType,
		BackedUp:   ad.Flags.BackupState(),
		Transports: res.Response.Transports,
	}, nil
}

// verifyAttestationStatement dispatches on the declared format. "none" needs
// no cryptographic check; "packed" without a certificate chain is
// self-attestation and is verified against the credential's own key. Formats
// needing a hardware trust chain are rejected as unsupported.
func (rp *RelyingParty) verifyAttestationStatement(obj *authdata.AttestationObject, vk crypto.VerificationKey, clientDataJSON []byte) error {
	switch obj.Format {
	case webauthntypes.AttestationStatementFormatIdentifierNone:
		if err := obj.VerifyNoneStatement(); err != nil {
			return newVerificationError("attestation statement", err)
		}
		return nil

	case webauthntypes.AttestationStatementFormatIdentifierPacked:
		stmt, err := obj.PackedStatement()
		if err != nil {
			return newVerificationError("attestation statement", err)
		}
		if len(stmt.X509Chain) > 0 {
			// Full attestation needs trust-chain validation against
			// authenticator metadata, which this RP does not do.
			return fmt.Errorf("%w: packed with x5c", ErrUnsupportedFormat)
		}
		if stmt.Algorithm != vk.Alg() {
			return newVerificationError("attestation statement", crypto.ErrUnsupportedAlgorithm)
		}

		clientDataHash := sha256.Sum256(clientDataJSON)
		signed := slices.Concat(obj.AuthDataRaw, clientDataHash[:])
		if err := vk.Verify(signed, stmt.Signature); err != nil {
			return newVerificationError("attestation statement", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, obj.Format)
	}
}

func (rp *RelyingParty) logCeremonyFailure(ceremony, scope string, err error) {
	var verr *VerificationError
	if errors.As(err, &verr) {
		rp.logger.Debug("ceremony rejected",
			"ceremony", ceremony,
			"scope", scope,
			"stage", verr.Stage,
			"cause", verr.Cause,
		)
		return
	}

	rp.logger.Debug("ceremony rejected", "ceremony", ceremony, "scope", scope, "err", err)
}
