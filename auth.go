package carevault

import "github.com/carevault/client-go/internal/crypto"

// AuthHash derives the credential submitted to the relay in place of the
// plaintext password, as a base64 string ready for the wire.
//
// The derivation is deterministic: the salt is bound to the normalized
// identity (trimmed, lowercased), so the client re-derives the identical
// value at every login and the server never stores or serves a salt. The
// result is an authentication credential only; it is never used as an
// encryption key.
func AuthHash(identity, password string) string {
	return crypto.ToBase64(crypto.DeriveAuthHash(identity, password))
}
