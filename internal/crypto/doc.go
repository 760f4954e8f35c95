// Package crypto provides the cryptographic primitives for the CareVault
// zero-knowledge protocol: password hardening, authenticated encryption, and
// the deterministic key derivations shared with the mobile client.
//
// # Algorithm Suite
//
//   - Argon2id (RFC 9106): memory-hard password hardening for the
//     authentication hash, the vault wrapping key, and conversation keys.
//     Three cost profiles reflect the three latency budgets; see [Params].
//
//   - AES-256-GCM: authenticated encryption for every stored or transmitted
//     secret. Provides confidentiality and integrity.
//
//   - SHA-256: builds deterministic salts from identity strings and protocol
//     constants. Never used as a MAC or as a KDF on its own.
//
// # Security Model
//
// The server is a blind relay. Everything it stores is either public (salts,
// identifiers) or sealed in an [Envelope] under a key the server never sees.
// The authentication hash it receives is an Argon2id output, not a password.
//
// # Critical Security Notes
//
// AES-GCM IVs MUST be unique for each encryption under the same key. IV
// reuse completely breaks AES-GCM. [Encrypt] therefore generates the IV
// itself and offers no way to supply one.
//
// Decryption failures never distinguish a wrong key from tampered data.
// Both surface as [ErrDecryptionFailed]; anything more specific would hand
// an attacker a decryption oracle.
//
// Conversation keys are static per identity pair and provide no forward
// secrecy. This mirrors the deployed mobile client and is a known,
// documented limitation of the protocol, not of this package.
package crypto
