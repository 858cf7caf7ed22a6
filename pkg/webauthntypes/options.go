package webauthntypes

// PublicKeyCredentialCreationOptions is passed to the browser's
// navigator.credentials.create() to start a registration ceremony.
// https://www.w3.org/TR/webauthn-3/#dictdef-publickeycredentialcreationoptions
type PublicKeyCredentialCreationOptions struct {
	RP                     PublicKeyCredentialRpEntity     `json:"rp"`
	User                   PublicKeyCredentialUserEntity   `json:"user"`
	Challenge              URLEncodedBase64                `json:"challenge"`
	PubKeyCredParams       []PublicKeyCredentialParameters `json:"pubKeyCredParams"`
	Timeout                uint                            `json:"timeout,omitempty"`
	ExcludeCredentials     []PublicKeyCredentialDescriptor `json:"excludeCredentials"`
	AuthenticatorSelection AuthenticatorSelectionCriteria  `json:"authenticatorSelection"`
	Hints                  []PublicKeyCredentialHint       `json:"hints,omitempty"`
	Attestation            AttestationConveyancePreference `json:"attestation,omitempty"`
}

// PublicKeyCredentialRequestOptions is passed to the browser's
// navigator.credentials.get() to start an authentication ceremony. An empty
// AllowCredentials list asks the authenticator to offer any discoverable
// credential it holds for the RP.
// https://www.w3.org/TR/webauthn-3/#dictdef-publickeycredentialrequestoptions
type PublicKeyCredentialRequestOptions struct {
	Challenge        URLEncodedBase64                `json:"challenge"`
	Timeout          uint                            `json:"timeout,omitempty"`
	RPID             string                          `json:"rpId,omitempty"`
	AllowCredentials []PublicKeyCredentialDescriptor `json:"allowCredentials"`
	UserVerification UserVerificationRequirement     `json:"userVerification,omitempty"`
	Hints            []PublicKeyCredentialHint       `json:"hints,omitempty"`
}
