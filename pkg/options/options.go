package options

import (
	"log/slog"
	"time"

	"github.com/ldclabs/cose/key"

	"github.com/go-ctap/webauthnrp/pkg/crypto"
	"github.com/go-ctap/webauthnrp/pkg/webauthntypes"
)

type Options struct {
	Logger       *slog.Logger
	Timeout      time.Duration
	ChallengeTTL time.Duration
	Algorithms   []key.Alg

	UserVerification webauthntypes.UserVerificationRequirement
	ResidentKey      webauthntypes.ResidentKeyRequirement
	Attestation      webauthntypes.AttestationConveyancePreference
	Hints            []webauthntypes.PublicKeyCredentialHint
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithTimeout sets the advisory timeout hint sent to the browser. The server
// does not independently enforce it for username-bound ceremonies.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithChallengeTTL bounds how long a discoverable-login ceremony token stays
// redeemable on the server side.
func WithChallengeTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.ChallengeTTL = ttl
	}
}

// WithAlgorithms overrides the accepted COSE public key algorithms.
func WithAlgorithms(algs ...key.Alg) Option {
	return func(opts *Options) {
		opts.Algorithms = algs
	}
}

// WithUserVerification sets the user-verification policy. Only "required"
// makes verification reject assertions without the UV flag.
func WithUserVerification(uv webauthntypes.UserVerificationRequirement) Option {
	return func(opts *Options) {
		opts.UserVerification = uv
	}
}

func WithResidentKey(rk webauthntypes.ResidentKeyRequirement) Option {
	return func(opts *Options) {
		opts.ResidentKey = rk
	}
}

func WithAttestation(pref webauthntypes.AttestationConveyancePreference) Option {
	return func(opts *Options) {
		opts.Attestation = pref
	}
}

func WithHints(hints ...webauthntypes.PublicKeyCredentialHint) Option {
	return func(opts *Options) {
		opts.Hints = hints
	}
}

func NewOptions(opts ...Option) *Options {
	oo := &Options{
		Logger:           slog.Default(),
		Timeout:          60 * time.Second,
		ChallengeTTL:     5 * time.Minute,
		Algorithms:       crypto.SupportedAlgorithms(),
		UserVerification: webauthntypes.UserVerificationRequirementPreferred,
		ResidentKey:      webauthntypes.ResidentKeyRequirementDiscouraged,
		Attestation:      webauthntypes.AttestationConveyancePreferenceNone,
	}

	for _, opt := range opts {
		opt(oo)
	}

	return oo
}
