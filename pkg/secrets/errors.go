package secrets

import "errors"

var (
	ErrInvalidKey   = errors.New("invalid encryption key: must be 32 bytes")
	ErrMissingKey   = errors.New("encryption key is not set")
	ErrMalformedKey = errors.New("encryption key is not valid base64")
	ErrMissingScope = errors.New("encryption scope is empty")

	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	ErrKeyDerivationFailed = errors.New("key derivation failed")
)
