package crypto

import "errors"

var (
	ErrUnsupportedKeyType   = errors.New("crypto: unsupported COSE key type")
	ErrUnsupportedAlgorithm = errors.New("crypto: unsupported COSE algorithm")
	ErrInvalidSignature     = errors.New("crypto: invalid signature")
)
