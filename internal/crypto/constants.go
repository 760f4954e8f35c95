package crypto

const (
	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESIVSize is the size of an AES-GCM IV in bytes.
	AESIVSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// VaultSaltSize is the size of the random salt persisted alongside the
	// wrapped master key.
	VaultSaltSize = 16

	// MasterKeySize is the size of the vault master key in bytes.
	MasterKeySize = 32

	// DerivedKeySize is the output length of every KDF profile in bytes.
	DerivedKeySize = 32
)

// Domain-separation strings. These are part of the wire protocol: the mobile
// client derives the same salts from the same constants, so changing any of
// them invalidates every stored credential and conversation key.
const (
	// AuthSaltContext prefixes the normalized identity when deriving the
	// deterministic authentication salt.
	AuthSaltContext = "carevault:auth:"

	// ChatSaltContext is hashed once to produce the application-wide
	// conversation key salt.
	ChatSaltContext = "carevault:chat:salt"

	// ChatMaterialContext prefixes the sorted identity pair that forms the
	// conversation key input material.
	ChatMaterialContext = "carevault:chat:"
)
