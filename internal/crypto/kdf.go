package crypto

import (
	"crypto/sha256"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params holds Argon2id cost parameters for one derivation profile. Three
// profiles exist because the call sites run under very different latency
// budgets.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
}

var (
	// AuthParams derives the server-submitted authentication hash. Budgeted
	// for a mobile login round trip (~100-300ms); the hash only gates a
	// login attempt that the server rate-limits anyway.
	AuthParams = Params{Memory: 64 * 1024, Time: 2, Threads: 1}

	// VaultParams derives the AES key wrapping the vault master key. The
	// wrap protects long-lived medical data, so this profile carries the
	// highest cost the target devices tolerate. Runs once per unlock.
	VaultParams = Params{Memory: 128 * 1024, Time: 3, Threads: 4}

	// ChatParams derives conversation keys. Runs on every conversation
	// open, so it must stay under an interactive budget (<50ms).
	ChatParams = Params{Memory: 8 * 1024, Time: 1, Threads: 1}
)

// DeriveKey runs Argon2id over secret and salt with the given profile,
// producing DerivedKeySize bytes. Deterministic for fixed inputs and params.
func DeriveKey(secret, salt []byte, p Params) []byte {
	return argon2.IDKey(secret, salt, p.Time, p.Memory, p.Threads, DerivedKeySize)
}

// NormalizeIdentity canonicalizes an identity string before salt derivation:
// trim whitespace, lowercase. " Alice@Example.COM " and "alice@example.com"
// must produce the same authentication salt.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Hash256 returns the SHA-256 digest of data. Used only to build
// deterministic salts, never as a MAC or a KDF on its own.
func Hash256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// DeriveAuthHash computes the deterministic credential sent to the server in
// place of the password. The salt is bound to the normalized identity, so
// the client re-derives the same value at every login without the server
// storing a salt.
func DeriveAuthHash(identity, password string) []byte {
	salt := Hash256([]byte(AuthSaltContext + NormalizeIdentity(identity)))
	return DeriveKey([]byte(password), salt, AuthParams)
}

// DeriveVaultKey derives the AES key that wraps the vault master key. The
// salt is the vault's random persisted salt, not identity-bound: two users
// with the same password must never share a vault key.
func DeriveVaultKey(password string, salt []byte) []byte {
	return DeriveKey([]byte(password), salt, VaultParams)
}

// DeriveConversationKey computes the symmetric key shared by exactly two
// identities. The pair is sorted lexicographically before hashing, so both
// participants derive the identical key from (self, peer) in either order.
// The salt is a fixed application-wide constant; there is no handshake and
// no stored shared secret. The scheme offers no forward secrecy: the key for
// a conversation is static for its lifetime, a documented limitation shared
// with the existing clients.
func DeriveConversationKey(idA, idB string) []byte {
	lo, hi := idA, idB
	if lo > hi {
		lo, hi = hi, lo
	}

	salt := Hash256([]byte(ChatSaltContext))
	material := []byte(ChatMaterialContext + lo + ":" + hi)
	return DeriveKey(material, salt, ChatParams)
}
