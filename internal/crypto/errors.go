package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when a key is not exactly AESKeySize bytes.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidIVSize is returned when an IV is not exactly AESIVSize bytes.
	ErrInvalidIVSize = errors.New("invalid IV size")

	// ErrDecryptionFailed is returned when AEAD authentication fails. The
	// cause (wrong key vs. tampered data) is deliberately not distinguished.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrMalformedEnvelope is returned when a stored envelope blob cannot be
	// parsed into its iv/data fields.
	ErrMalformedEnvelope = errors.New("malformed envelope")
)
