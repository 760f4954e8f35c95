package carevault

// Session is the authenticated state for one patient, owned explicitly by
// the caller rather than held in package-level variables. The crypto core
// itself stays stateless; everything a later operation needs is in here or
// passed as a parameter.
type Session struct {
	// UserID is the relay-assigned identifier, used for conversation keys.
	UserID string
	// Identity is the login identity (normalized email).
	Identity string
	// Token is the bearer token for the relay.
	Token string
	// MasterKeyPlain is the unwrapped master key, base64. Local-only:
	// cached so profile edits skip the password-derivation cost.
	MasterKeyPlain string
	// Profile is the decrypted profile document, nil if unavailable.
	Profile ProfileDocument
}

// persist writes the session and vault fields to the key store so it can be
// resumed without the password.
func (s *Session) persist(ks KeyStore, vault WrappedVault) error {
	entries := map[string][]byte{
		StorageKeyAccessToken:        []byte(s.Token),
		StorageKeyUserID:             []byte(s.UserID),
		StorageKeyIdentity:           []byte(s.Identity),
		StorageKeyMasterKey:          []byte(s.MasterKeyPlain),
		StorageKeyVaultSalt:          []byte(vault.Salt),
		StorageKeyEncryptedMasterKey: []byte(vault.EncryptedMasterKey),
		StorageKeyEncryptedProfile:   []byte(vault.EncryptedProfile),
	}
	for key, value := range entries {
		if err := ks.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// purgeSession removes every session and vault key from the store. Called on
// logout; the vault survives server-side only.
func purgeSession(ks KeyStore) error {
	keys := []string{
		StorageKeyAccessToken,
		StorageKeyUserID,
		StorageKeyIdentity,
		StorageKeyMasterKey,
		StorageKeyVaultSalt,
		StorageKeyEncryptedMasterKey,
		StorageKeyEncryptedProfile,
	}
	for _, key := range keys {
		if err := ks.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// restoreSession rebuilds a session from the key store. Returns (nil, nil)
// when no session is stored. The profile is re-decrypted from the cached
// envelope with the cached master key; if that fails the session still
// resumes, just without profile data.
func restoreSession(ks KeyStore) (*Session, error) {
	token, err := ks.Get(StorageKeyAccessToken)
	if err != nil {
		return nil, err
	}
	masterKey, err := ks.Get(StorageKeyMasterKey)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 || len(masterKey) == 0 {
		return nil, nil
	}

	userID, err := ks.Get(StorageKeyUserID)
	if err != nil {
		return nil, err
	}
	identity, err := ks.Get(StorageKeyIdentity)
	if err != nil {
		return nil, err
	}

	session := &Session{
		UserID:         string(userID),
		Identity:       string(identity),
		Token:          string(token),
		MasterKeyPlain: string(masterKey),
	}

	if encProfile, err := ks.Get(StorageKeyEncryptedProfile); err == nil && len(encProfile) > 0 {
		if profile, derr := DecryptProfile(session.MasterKeyPlain, string(encProfile)); derr == nil {
			session.Profile = profile
		}
	}

	return session, nil
}
