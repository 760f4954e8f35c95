package carevault

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/carevault/client-go/internal/api"
	"github.com/carevault/client-go/internal/delivery"
)

// Client is the main CareVault client. It owns the transport, the secure
// key store, and the current session; all cryptography is delegated to pure
// functions that receive key material explicitly.
type Client struct {
	apiClient *api.Client
	keystore  KeyStore
	logger    zerolog.Logger
	cfg       *clientConfig

	mu      sync.RWMutex
	session *Session
	closed  bool
}

// New creates a new CareVault client for the given relay URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	cfg := &clientConfig{
		timeout:  defaultTimeout,
		keystore: NewMemoryKeyStore(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	apiOpts := []api.Option{
		api.WithTimeout(cfg.timeout),
		api.WithLogger(cfg.logger),
	}
	if cfg.retries > 0 {
		retry := api.DefaultRetryConfig()
		retry.MaxRetries = cfg.retries
		apiOpts = append(apiOpts, api.WithRetryConfig(retry))
	}

	apiClient, err := api.New(baseURL, apiOpts...)
	if err != nil {
		return nil, err
	}
	if cfg.httpClient != nil {
		apiClient.SetHTTPClient(cfg.httpClient)
	}

	c := &Client{
		apiClient: apiClient,
		keystore:  cfg.keystore,
		logger:    cfg.logger,
		cfg:       cfg,
	}

	// A session cached in the key store resumes transparently.
	if session, err := restoreSession(cfg.keystore); err == nil && session != nil {
		c.session = session
		apiClient.SetToken(session.Token)
		c.logger.Debug().Str("user", session.UserID).Msg("session resumed from key store")
	}

	return c, nil
}

// Register creates a patient account. The vault triple is generated
// client-side before any network traffic; the relay receives only the auth
// hash and sealed material.
func (c *Client) Register(ctx context.Context, identity, password string, profile ProfileDocument) (*Session, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if identity == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	vault, err := CreateVault(password, profile)
	if err != nil {
		return nil, err
	}

	resp, err := c.apiClient.Register(ctx, api.RegisterRequest{
		Identity: identity,
		AuthHash: AuthHash(identity, password),
		Vault: api.VaultRecord{
			Salt:               vault.Salt,
			EncryptedMasterKey: vault.EncryptedMasterKey,
			EncryptedProfile:   vault.EncryptedProfile,
		},
	})
	if err != nil {
		return nil, wrapError(err)
	}

	session := &Session{
		UserID:         resp.UserID,
		Identity:       identity,
		Token:          resp.Token,
		MasterKeyPlain: vault.MasterKeyPlain,
		Profile:        vault.Profile,
	}
	return session, c.installSession(session, vault.WrappedVault)
}

// Login authenticates and unlocks the stored vault. A wrong password can
// fail in two places: the relay rejects the auth hash, or the relay accepts
// a stale credential and the local unwrap fails. Both surface as generic
// errors that never reveal which layer failed.
func (c *Client) Login(ctx context.Context, identity, password string) (*Session, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if identity == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	resp, err := c.apiClient.Login(ctx, api.LoginRequest{
		Identity: identity,
		AuthHash: AuthHash(identity, password),
	})
	if err != nil {
		return nil, wrapError(err)
	}

	wrapped := WrappedVault{
		Salt:               resp.Vault.Salt,
		EncryptedMasterKey: resp.Vault.EncryptedMasterKey,
		EncryptedProfile:   resp.Vault.EncryptedProfile,
	}

	vault, err := OpenVault(password, wrapped)
	if err != nil {
		return nil, err
	}

	session := &Session{
		UserID:         resp.UserID,
		Identity:       identity,
		Token:          resp.Token,
		MasterKeyPlain: vault.MasterKeyPlain,
		Profile:        vault.Profile,
	}
	return session, c.installSession(session, wrapped)
}

// Logout destroys the local session: bearer token cleared, every cached
// vault field purged from the key store. Server-side state is untouched.
func (c *Client) Logout() error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	c.apiClient.SetToken("")
	c.logger.Debug().Msg("session destroyed")
	return purgeSession(c.keystore)
}

// Session returns the active session, or nil when logged out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// UpdateProfile re-encrypts the profile under the cached master key and
// replaces it server-side wholesale. No password required.
func (c *Client) UpdateProfile(ctx context.Context, profile ProfileDocument) error {
	session, err := c.activeSession()
	if err != nil {
		return err
	}

	encryptedProfile, err := ReencryptProfile(session.MasterKeyPlain, profile)
	if err != nil {
		return err
	}

	if err := c.apiClient.UpdateProfile(ctx, api.UpdateProfileRequest{
		EncryptedProfile: encryptedProfile,
	}); err != nil {
		return wrapError(err)
	}

	// Logout may have raced the request; cache the result only into the
	// session this call started with, never into a purged store.
	c.mu.Lock()
	stillActive := c.session == session
	if stillActive {
		c.session.Profile = profile
	}
	c.mu.Unlock()
	if !stillActive {
		return nil
	}

	return c.keystore.Set(StorageKeyEncryptedProfile, []byte(encryptedProfile))
}

// ChangePassword re-wraps the master key under the new password with a
// fresh salt and swaps salt + wrap atomically server-side. The profile
// envelope is untouched: it is sealed under the master key, which does not
// change.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	session, err := c.activeSession()
	if err != nil {
		return err
	}
	if newPassword == "" {
		return ErrMissingCredentials
	}

	salt, encryptedMasterKey, err := RewrapMasterKey(newPassword, session.MasterKeyPlain)
	if err != nil {
		return err
	}

	if err := c.apiClient.ChangePassword(ctx, api.ChangePasswordRequest{
		AuthHash:           AuthHash(session.Identity, oldPassword),
		NewAuthHash:        AuthHash(session.Identity, newPassword),
		Salt:               salt,
		EncryptedMasterKey: encryptedMasterKey,
	}); err != nil {
		return wrapError(err)
	}

	c.mu.RLock()
	stillActive := c.session == session
	c.mu.RUnlock()
	if !stillActive {
		return nil
	}

	if err := c.keystore.Set(StorageKeyVaultSalt, []byte(salt)); err != nil {
		return err
	}
	return c.keystore.Set(StorageKeyEncryptedMasterKey, []byte(encryptedMasterKey))
}

// OpenConversation derives the shared key for the conversation with peerID
// and returns a handle for sending and reading messages. Derivation is
// local and deterministic; no handshake, no server round trip.
func (c *Client) OpenConversation(peerID string) (*Conversation, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}
	if peerID == "" {
		return nil, fmt.Errorf("peer ID is required")
	}
	return newConversation(c, session.UserID, peerID), nil
}

// Close releases the client. The session stays in the key store so a new
// client can resume it; call Logout first to destroy it.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Client) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

func (c *Client) activeSession() (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if c.session == nil {
		return nil, ErrNotAuthenticated
	}
	return c.session, nil
}

func (c *Client) installSession(session *Session, vault WrappedVault) error {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.apiClient.SetToken(session.Token)
	c.logger.Debug().Str("user", session.UserID).Msg("session established")
	return session.persist(c.keystore, vault)
}

// watcherConfig builds the delivery configuration from client options.
func (c *Client) watcherConfig() delivery.Config {
	return delivery.Config{
		APIClient:         c.apiClient,
		InitialInterval:   c.cfg.pollingInitialInterval,
		MaxBackoff:        c.cfg.pollingMaxBackoff,
		BackoffMultiplier: c.cfg.pollingBackoffMultiplier,
		JitterFactor:      c.cfg.pollingJitterFactor,
		Logger:            c.logger,
	}
}
