package webauthntypes

import "github.com/ldclabs/cose/key"

type (
	// PublicKeyCredentialType defines the valid credential types.
	// https://www.w3.org/TR/webauthn-3/#enumdef-publickeycredentialtype
	PublicKeyCredentialType string
	// AuthenticatorTransport defines hints as to how clients might communicate
	// with a particular authenticator in order to obtain an assertion for a specific credential.
	// https://www.w3.org/TR/webauthn-3/#enumdef-authenticatortransport
	AuthenticatorTransport string
	// AttestationStatementFormatIdentifier is an enum consisting of IANA registered Attestation Statement Format Identifiers.
	// https://www.iana.org/assignments/webauthn/webauthn.xhtml
	AttestationStatementFormatIdentifier string
	// AttestationConveyancePreference expresses the Relying Party's interest in
	// receiving an attestation statement.
	// https://www.w3.org/TR/webauthn-3/#enumdef-attestationconveyancepreference
	AttestationConveyancePreference string
	// AuthenticatorAttachment describes an authenticator's attachment modality.
	// https://www.w3.org/TR/webauthn-3/#enumdef-authenticatorattachment
	AuthenticatorAttachment string
	// ResidentKeyRequirement expresses the Relying Party's requirement for
	// client-side discoverable credentials.
	// https://www.w3.org/TR/webauthn-3/#enumdef-residentkeyrequirement
	ResidentKeyRequirement string
	// UserVerificationRequirement expresses the Relying Party's user verification
	// requirements for a ceremony.
	// https://www.w3.org/TR/webauthn-3/#enumdef-userverificationrequirement
	UserVerificationRequirement string
	// CredentialDeviceType describes whether a credential is bound to a single
	// authenticator or may be synced between several ("multi-device passkey").
	CredentialDeviceType string
	// PublicKeyCredentialHint is used by WebAuthn Relying Parties to communicate hints to the user-agent about
	// how a request may be best completed.
	// https://www.w3.org/TR/webauthn-3/#enum-hints
	PublicKeyCredentialHint string
)

const (
	PublicKeyCredentialTypePublicKey PublicKeyCredentialType = "public-key"
)

const (
	AuthenticatorTransportUSB       AuthenticatorTransport = "usb"
	AuthenticatorTransportNFC       AuthenticatorTransport = "nfc"
	AuthenticatorTransportBLE       AuthenticatorTransport = "ble"
	AuthenticatorTransportSmartCard AuthenticatorTransport = "smart-card"
	AuthenticatorTransportHybrid    AuthenticatorTransport = "hybrid"
	AuthenticatorTransportInternal  AuthenticatorTransport = "internal"
)

const (
	AttestationStatementFormatIdentifierPacked           AttestationStatementFormatIdentifier = "packed"
	AttestationStatementFormatIdentifierTPM              AttestationStatementFormatIdentifier = "tpm"
	AttestationStatementFormatIdentifierAndroidKey       AttestationStatementFormatIdentifier = "android-key"
	AttestationStatementFormatIdentifierAndroidSafetyNet AttestationStatementFormatIdentifier = "android-safetynet"
	AttestationStatementFormatIdentifierFIDOU2F          AttestationStatementFormatIdentifier = "fido-u2f"
	AttestationStatementFormatIdentifierApple            AttestationStatementFormatIdentifier = "apple"
	AttestationStatementFormatIdentifierNone             AttestationStatementFormatIdentifier = "none"
)

const (
	AttestationConveyancePreferenceNone       AttestationConveyancePreference = "none"
	AttestationConveyancePreferenceIndirect   AttestationConveyancePreference = "indirect"
	AttestationConveyancePreferenceDirect     AttestationConveyancePreference = "direct"
	AttestationConveyancePreferenceEnterprise AttestationConveyancePreference = "enterprise"
)

const (
	AuthenticatorAttachmentPlatform      AuthenticatorAttachment = "platform"
	AuthenticatorAttachmentCrossPlatform AuthenticatorAttachment = "cross-platform"
)

const (
	ResidentKeyRequirementDiscouraged ResidentKeyRequirement = "discouraged"
	ResidentKeyRequirementPreferred   ResidentKeyRequirement = "preferred"
	ResidentKeyRequirementRequired    ResidentKeyRequirement = "required"
)

const (
	UserVerificationRequirementRequired    UserVerificationRequirement = "required"
	UserVerificationRequirementPreferred   UserVerificationRequirement = "preferred"
	UserVerificationRequirementDiscouraged UserVerificationRequirement = "discouraged"
)

const (
	CredentialDeviceTypeSingleDevice CredentialDeviceType = "single-device"
	CredentialDeviceTypeMultiDevice  CredentialDeviceType = "multi-device"
)

const (
	PublicKeyCredentialHintSecurityKey  PublicKeyCredentialHint = "security-key"
	PublicKeyCredentialHintClientDevice PublicKeyCredentialHint = "client-device"
	PublicKeyCredentialHintHybrid       PublicKeyCredentialHint = "hybrid"
)

// PublicKeyCredentialRpEntity is used to supply additional Relying Party attributes when creating a new credential.
// https://www.w3.org/TR/webauthn-3/#dictdef-publickeycredentialrpentity
type PublicKeyCredentialRpEntity struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PublicKeyCredentialUserEntity is used to supply additional user account attributes when creating a new credential.
// https://www.w3.org/TR/webauthn-3/#dictdef-publickeycredentialuserentity
type PublicKeyCredentialUserEntity struct {
	ID          URLEncodedBase64 `json:"id"`
	DisplayName string           `json:"displayName,omitempty"`
	Name        string           `json:"name,omitempty"`
}

// PublicKeyCredentialDescriptor identifies a specific public key credential.
// https://www.w3.org/TR/webauthn-3/#dictdef-publickeycredentialdescriptor
type PublicKeyCredentialDescriptor struct {
	Type       PublicKeyCredentialType  `json:"type"`
	ID         URLEncodedBase64         `json:"id"`
	Transports []AuthenticatorTransport `json:"transports,omitempty"`
}

// PublicKeyCredentialParameters is used to supply additional parameters when creating a new credential.
// https://www.w3.org/TR/webauthn-3/#dictdef-publickeycredentialparameters
type PublicKeyCredentialParameters struct {
	Type      PublicKeyCredentialType `json:"type"`
	Algorithm key.Alg                 `json:"alg"`
}

// AuthenticatorSelectionCriteria lets the Relying Party narrow which
// authenticators may take part in a registration ceremony.
// https://www.w3.org/TR/webauthn-3/#dictdef-authenticatorselectioncriteria
type AuthenticatorSelectionCriteria struct {
	AuthenticatorAttachment AuthenticatorAttachment     `json:"authenticatorAttachment,omitempty"`
	ResidentKey             ResidentKeyRequirement      `json:"residentKey,omitempty"`
	RequireResidentKey      bool                        `json:"requireResidentKey"`
	UserVerification        UserVerificationRequirement `json:"userVerification,omitempty"`
}

// PackedAttestationStatementFormat is a WebAuthn optimized attestation statement format.
// https://www.w3.org/TR/webauthn-3/#sctn-packed-attestation
type PackedAttestationStatementFormat struct {
	Algorithm key.Alg  `cbor:"alg"`
	Signature []byte   `cbor:"sig"`
	X509Chain [][]byte `cbor:"x5c,omitempty"`
}
