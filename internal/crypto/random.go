package crypto

import "crypto/rand"

// RandomBytes returns n cryptographically secure random bytes from the
// platform CSPRNG. It panics if the random source fails, which is
// unrecoverable: generating a key from a broken source would be worse than
// crashing.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return b
}
