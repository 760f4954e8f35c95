package carevault

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carevault/client-go/internal/crypto"
)

// ProfileDocument is the patient profile as an arbitrary key/value document
// (name, phone, birth date, medical notes, objectives). The SDK treats it as
// opaque JSON; only its ciphertext ever reaches the relay.
type ProfileDocument map[string]interface{}

// WrappedVault is the server-side form of a patient vault: a public random
// salt plus two sealed envelopes. The master key envelope is wrapped under a
// password-derived key; the profile envelope under the master key itself, so
// a password change only re-wraps the master key and never touches the
// profile ciphertext.
type WrappedVault struct {
	Salt               string
	EncryptedMasterKey string
	EncryptedProfile   string
}

// UnlockedVault is a vault opened client-side. MasterKeyPlain is the
// base64-encoded master key and is local-only: it may be cached in the
// KeyStore for the session but must never be transmitted.
type UnlockedVault struct {
	WrappedVault
	MasterKeyPlain string
	Profile        ProfileDocument
}

// CreateVault builds a fresh vault for a new patient: random salt, random
// master key wrapped under the password-derived key, and the profile sealed
// under the master key.
func CreateVault(password string, profile ProfileDocument) (*UnlockedVault, error) {
	salt := crypto.RandomBytes(crypto.VaultSaltSize)
	vaultKey := crypto.DeriveVaultKey(password, salt)
	masterKey := crypto.RandomBytes(crypto.MasterKeySize)

	encryptedMasterKey, err := crypto.SealToString(vaultKey, masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap master key: %w", err)
	}

	encryptedProfile, err := sealProfile(masterKey, profile)
	if err != nil {
		return nil, err
	}

	return &UnlockedVault{
		WrappedVault: WrappedVault{
			Salt:               crypto.ToBase64(salt),
			EncryptedMasterKey: encryptedMasterKey,
			EncryptedProfile:   encryptedProfile,
		},
		MasterKeyPlain: crypto.ToBase64(masterKey),
		Profile:        profile,
	}, nil
}

// OpenVault unwraps a stored vault with the patient's password.
//
// A missing salt or master key envelope is ErrIncompleteVault. A wrong
// password and a corrupted master key envelope are indistinguishable by
// design and both surface as ErrVaultLocked. A corrupt or missing profile
// envelope is NOT fatal: the master key is still recovered and Profile is
// nil, so a damaged profile never locks a patient out of their vault.
func OpenVault(password string, wrapped WrappedVault) (*UnlockedVault, error) {
	if wrapped.Salt == "" || wrapped.EncryptedMasterKey == "" {
		return nil, ErrIncompleteVault
	}

	salt, err := crypto.FromBase64(wrapped.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable salt", ErrIncompleteVault)
	}

	env, err := crypto.ParseEnvelope(wrapped.EncryptedMasterKey)
	if err != nil {
		// A master key envelope that does not even parse is fatal.
		return nil, wrapEnvelopeError(err)
	}

	vaultKey := crypto.DeriveVaultKey(password, salt)
	masterKey, err := crypto.Open(vaultKey, env)
	if err != nil || len(masterKey) != crypto.MasterKeySize {
		return nil, &VaultError{Err: err}
	}

	return &UnlockedVault{
		WrappedVault:   wrapped,
		MasterKeyPlain: crypto.ToBase64(masterKey),
		Profile:        openProfile(masterKey, wrapped.EncryptedProfile),
	}, nil
}

// ReencryptProfile seals a new profile document under the already-unwrapped
// master key. No password needed: editing is decoupled from
// re-authentication, which is the point of the two-layer envelope.
func ReencryptProfile(masterKeyPlain string, profile ProfileDocument) (string, error) {
	masterKey, err := decodeMasterKey(masterKeyPlain)
	if err != nil {
		return "", err
	}
	return sealProfile(masterKey, profile)
}

// DecryptProfile opens a profile envelope with the cached master key. Used
// when resuming a session from the KeyStore without the password.
func DecryptProfile(masterKeyPlain, encryptedProfile string) (ProfileDocument, error) {
	masterKey, err := decodeMasterKey(masterKeyPlain)
	if err != nil {
		return nil, err
	}
	return openProfile(masterKey, encryptedProfile), nil
}

// RewrapMasterKey wraps an existing master key under a new password with a
// fresh salt. Used on password change; returns the replacement salt and
// master key envelope. The profile envelope is untouched.
func RewrapMasterKey(newPassword, masterKeyPlain string) (salt, encryptedMasterKey string, err error) {
	masterKey, err := decodeMasterKey(masterKeyPlain)
	if err != nil {
		return "", "", err
	}

	saltBytes := crypto.RandomBytes(crypto.VaultSaltSize)
	vaultKey := crypto.DeriveVaultKey(newPassword, saltBytes)

	encryptedMasterKey, err = crypto.SealToString(vaultKey, masterKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to wrap master key: %w", err)
	}

	return crypto.ToBase64(saltBytes), encryptedMasterKey, nil
}

func decodeMasterKey(masterKeyPlain string) ([]byte, error) {
	masterKey, err := crypto.FromBase64(masterKeyPlain)
	if err != nil || len(masterKey) != crypto.MasterKeySize {
		return nil, errors.New("invalid master key material")
	}
	return masterKey, nil
}

func sealProfile(masterKey []byte, profile ProfileDocument) (string, error) {
	if profile == nil {
		profile = ProfileDocument{}
	}
	plaintext, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to serialize profile: %w", err)
	}
	return crypto.SealToString(masterKey, plaintext)
}

// openProfile degrades gracefully: any failure (absent, malformed, wrong
// key, invalid JSON) yields a nil profile rather than an error.
func openProfile(masterKey []byte, encryptedProfile string) ProfileDocument {
	if encryptedProfile == "" {
		return nil
	}

	plaintext, err := crypto.OpenFromString(masterKey, encryptedProfile)
	if err != nil {
		return nil
	}

	var profile ProfileDocument
	if err := json.Unmarshal(plaintext, &profile); err != nil {
		return nil
	}
	return profile
}
