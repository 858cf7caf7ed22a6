package webauthntypes

// CredentialCreationResponse mirrors the JSON serialization of the
// PublicKeyCredential a browser returns from navigator.credentials.create().
// https://www.w3.org/TR/webauthn-3/#iface-pkcredential
type CredentialCreationResponse struct {
	ID                      string                           `json:"id"`
	RawID                   URLEncodedBase64                 `json:"rawId"`
	Type                    PublicKeyCredentialType          `json:"type"`
	AuthenticatorAttachment AuthenticatorAttachment          `json:"authenticatorAttachment,omitempty"`
	Response                AuthenticatorAttestationResponse `json:"response"`
}

// AuthenticatorAttestationResponse carries the attestation object produced at
// registration together with the client data that was signed over.
// https://www.w3.org/TR/webauthn-3/#iface-authenticatorattestationresponse
type AuthenticatorAttestationResponse struct {
	ClientDataJSON    URLEncodedBase64         `json:"clientDataJSON"`
	AttestationObject URLEncodedBase64         `json:"attestationObject"`
	Transports        []AuthenticatorTransport `json:"transports,omitempty"`
}

// CredentialAssertionResponse mirrors the JSON serialization of the
// PublicKeyCredential a browser returns from navigator.credentials.get().
type CredentialAssertionResponse struct {
	ID                      string                         `json:"id"`
	RawID                   URLEncodedBase64               `json:"rawId"`
	Type                    PublicKeyCredentialType        `json:"type"`
	AuthenticatorAttachment AuthenticatorAttachment        `json:"authenticatorAttachment,omitempty"`
	Response                AuthenticatorAssertionResponse `json:"response"`
}

// AuthenticatorAssertionResponse carries a signed assertion. UserHandle is only
// present for discoverable credentials and names the account the authenticator
// believes the credential belongs to.
// https://www.w3.org/TR/webauthn-3/#iface-authenticatorassertionresponse
type AuthenticatorAssertionResponse struct {
	ClientDataJSON    URLEncodedBase64 `json:"clientDataJSON"`
	AuthenticatorData URLEncodedBase64 `json:"authenticatorData"`
	Signature         URLEncodedBase64 `json:"signature"`
	UserHandle        URLEncodedBase64 `json:"userHandle,omitempty"`
}
