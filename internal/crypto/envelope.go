package crypto

import (
	"encoding/json"
	"fmt"
)

// Envelope is the persisted form of one AEAD encryption: a fresh IV and the
// tagged ciphertext, both standard base64. The two-field shape and the
// "iv"/"data" key names are wire format shared with the mobile client and
// must round-trip losslessly.
type Envelope struct {
	IV   string `json:"iv"`
	Data string `json:"data"`
}

// Seal encrypts plaintext under key and returns the resulting envelope.
func Seal(key, plaintext []byte) (Envelope, error) {
	iv, ciphertext, err := Encrypt(key, plaintext)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{IV: ToBase64(iv), Data: ToBase64(ciphertext)}, nil
}

// Open decrypts an envelope under key. Undecodable fields surface as
// ErrMalformedEnvelope; a failed authentication tag as ErrDecryptionFailed.
func Open(key []byte, env Envelope) ([]byte, error) {
	iv, err := FromBase64(env.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad iv encoding", ErrMalformedEnvelope)
	}

	ciphertext, err := FromBase64(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: bad data encoding", ErrMalformedEnvelope)
	}

	return Decrypt(key, iv, ciphertext)
}

// Marshal serializes an envelope to its JSON wire form.
func (e Envelope) Marshal() string {
	// Two string fields never fail to marshal.
	raw, _ := json.Marshal(e)
	return string(raw)
}

// ParseEnvelope parses the JSON wire form of an envelope. Parsing is a
// result, not an exception: callers decide whether a malformed blob is fatal
// (master key wrap) or recoverable (profile).
func ParseEnvelope(raw string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %s", ErrMalformedEnvelope, "not valid JSON")
	}
	if env.IV == "" || env.Data == "" {
		return Envelope{}, fmt.Errorf("%w: missing iv or data field", ErrMalformedEnvelope)
	}
	return env, nil
}

// SealToString is Seal followed by Marshal, the common path for fields that
// are stored server-side as opaque strings.
func SealToString(key, plaintext []byte) (string, error) {
	env, err := Seal(key, plaintext)
	if err != nil {
		return "", err
	}
	return env.Marshal(), nil
}

// OpenFromString is ParseEnvelope followed by Open.
func OpenFromString(key []byte, raw string) ([]byte, error) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return Open(key, env)
}
