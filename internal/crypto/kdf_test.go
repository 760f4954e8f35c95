package crypto

import (
	"bytes"
	"testing"
)

// testParams keeps KDF tests fast; production profiles are exercised by the
// determinism test below at reduced cost only.
var testParams = Params{Memory: 64, Time: 1, Threads: 1}

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("correct horse battery staple")
	salt := Hash256([]byte("fixed salt"))

	a := DeriveKey(secret, salt, testParams)
	b := DeriveKey(secret, salt, testParams)

	if !bytes.Equal(a, b) {
		t.Error("same inputs produced different keys")
	}
	if len(a) != DerivedKeySize {
		t.Errorf("key length = %d, want %d", len(a), DerivedKeySize)
	}
}

func TestDeriveKey_DistinctByInput(t *testing.T) {
	salt := Hash256([]byte("fixed salt"))
	base := DeriveKey([]byte("pw1"), salt, testParams)

	tests := []struct {
		name   string
		secret []byte
		salt   []byte
		params Params
	}{
		{"different secret", []byte("pw2"), salt, testParams},
		{"different salt", []byte("pw1"), Hash256([]byte("other salt")), testParams},
		{"different cost", []byte("pw1"), salt, Params{Memory: 128, Time: 2, Threads: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if bytes.Equal(base, DeriveKey(tt.secret, tt.salt, tt.params)) {
				t.Error("expected distinct key")
			}
		})
	}
}

func TestNormalizeIdentity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a@b.com", "a@b.com"},
		{" A@B.COM ", "a@b.com"},
		{"\tMixed.Case@Example.org\n", "mixed.case@example.org"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeIdentity(tt.in); got != tt.want {
			t.Errorf("NormalizeIdentity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveAuthHash_NormalizationAndDeterminism(t *testing.T) {
	a := DeriveAuthHash("a@b.com", "pw1")
	b := DeriveAuthHash(" A@B.COM ", "pw1")

	if !bytes.Equal(a, b) {
		t.Error("normalized identities must derive the same hash")
	}
	if len(a) != DerivedKeySize {
		t.Errorf("hash length = %d, want %d", len(a), DerivedKeySize)
	}

	if bytes.Equal(a, DeriveAuthHash("a@b.com", "pw2")) {
		t.Error("different passwords must derive different hashes")
	}
	if bytes.Equal(a, DeriveAuthHash("c@d.com", "pw1")) {
		t.Error("different identities must derive different hashes")
	}
}

func TestDeriveVaultKey_SaltBound(t *testing.T) {
	salt1 := RandomBytes(VaultSaltSize)
	salt2 := RandomBytes(VaultSaltSize)

	a := DeriveVaultKey("Sesame123", salt1)
	b := DeriveVaultKey("Sesame123", salt1)
	c := DeriveVaultKey("Sesame123", salt2)

	if !bytes.Equal(a, b) {
		t.Error("same password and salt must derive the same vault key")
	}
	// Two users with identical passwords never share a vault key.
	if bytes.Equal(a, c) {
		t.Error("different salts must derive different vault keys")
	}
}

func TestDeriveConversationKey_Symmetry(t *testing.T) {
	ab := DeriveConversationKey("u-alice", "u-bob")
	ba := DeriveConversationKey("u-bob", "u-alice")

	if !bytes.Equal(ab, ba) {
		t.Error("conversation key must be order-independent")
	}
	if len(ab) != DerivedKeySize {
		t.Errorf("key length = %d, want %d", len(ab), DerivedKeySize)
	}

	ac := DeriveConversationKey("u-alice", "u-carol")
	if bytes.Equal(ab, ac) {
		t.Error("different pairs must derive different keys")
	}
}

func TestDeriveConversationKey_Deterministic(t *testing.T) {
	a := DeriveConversationKey("u1", "u2")
	b := DeriveConversationKey("u1", "u2")
	if !bytes.Equal(a, b) {
		t.Error("conversation key must be stable across derivations")
	}
}

func TestHash256(t *testing.T) {
	a := Hash256([]byte("input"))
	b := Hash256([]byte("input"))
	c := Hash256([]byte("other"))

	if len(a) != 32 {
		t.Errorf("digest length = %d, want 32", len(a))
	}
	if !bytes.Equal(a, b) {
		t.Error("hash must be deterministic")
	}
	if bytes.Equal(a, c) {
		t.Error("different inputs must hash differently")
	}
}

func BenchmarkDeriveConversationKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DeriveConversationKey("u-alice", "u-bob")
	}
}

func BenchmarkDeriveAuthHash(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DeriveAuthHash("a@b.com", "pw1")
	}
}
