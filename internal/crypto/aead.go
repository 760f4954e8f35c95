package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Encrypt encrypts plaintext with AES-256-GCM under key, generating a fresh
// random 12-byte IV. The IV is returned alongside the ciphertext and is never
// caller-supplied, so IV reuse under a key cannot happen by construction.
// The returned ciphertext includes the 16-byte GCM tag.
func Encrypt(key, plaintext []byte) (iv, ciphertext []byte, err error) {
	if len(key) != AESKeySize {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	iv = RandomBytes(AESIVSize)
	ciphertext = gcm.Seal(nil, iv, plaintext, nil)
	return iv, ciphertext, nil
}

// Decrypt decrypts an AES-256-GCM ciphertext produced by Encrypt. It returns
// ErrDecryptionFailed whenever the authentication tag does not verify,
// whether the key is wrong or the data was tampered with.
func Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	if len(iv) != AESIVSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), AESIVSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}
