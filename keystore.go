package carevault

import "sync"

// Logical keys the SDK stores in the KeyStore. Values are opaque blobs; the
// store never interprets them.
const (
	StorageKeyMasterKey          = "masterKeyPlain"
	StorageKeyVaultSalt          = "vaultSalt"
	StorageKeyEncryptedMasterKey = "encryptedMasterKey"
	StorageKeyEncryptedProfile   = "encryptedProfile"
	StorageKeyAccessToken        = "accessToken"
	StorageKeyUserID             = "userId"
	StorageKeyIdentity           = "identity"
)

// KeyStore is the narrow contract to the platform's secure storage
// (keychain, keystore, encrypted preferences). Get returns (nil, nil) for an
// absent key. Implementations must be safe for concurrent use.
//
// The master key is the only raw secret ever written here, and only so a
// session can re-encrypt the profile without re-deriving from the password.
type KeyStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// MemoryKeyStore is an in-process KeyStore for tests and short-lived
// programs. Nothing survives the process.
type MemoryKeyStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryKeyStore creates an empty in-memory key store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{values: make(map[string][]byte)}
}

// Get returns the stored value, or (nil, nil) when absent.
func (m *MemoryKeyStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value under key.
func (m *MemoryKeyStore) Set(key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	m.values[key] = stored
	m.mu.Unlock()
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (m *MemoryKeyStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}
