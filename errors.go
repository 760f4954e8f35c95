package carevault

import (
	"errors"
	"fmt"

	"github.com/carevault/client-go/internal/api"
	"github.com/carevault/client-go/internal/crypto"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrMissingBaseURL is returned when no relay URL is provided.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrMissingCredentials is returned when identity or password is empty.
	ErrMissingCredentials = errors.New("identity and password are required")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrNotAuthenticated is returned when an operation needs an active session.
	ErrNotAuthenticated = errors.New("no active session")

	// ErrIncompleteVault is returned when a vault record lacks its salt or
	// its wrapped master key. The account needs out-of-band recovery.
	ErrIncompleteVault = errors.New("vault record is incomplete")

	// ErrVaultLocked is returned when the vault cannot be unlocked. The
	// message is deliberately generic: whether the password was wrong or the
	// stored data corrupted is never revealed.
	ErrVaultLocked = errors.New("incorrect password or corrupted data")

	// ErrMalformedEnvelope is returned when a stored envelope blob cannot be
	// parsed. Fatal for the master key envelope; the profile envelope
	// degrades to an absent profile instead.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrMessageUnreadable marks a single chat message that failed to
	// decrypt. It never aborts the rest of the conversation.
	ErrMessageUnreadable = errors.New("message cannot be decrypted")

	// ErrUnauthorized is returned when the relay rejects the credentials or
	// the session token.
	ErrUnauthorized = errors.New("invalid credentials or expired session")

	// ErrIdentityTaken is returned when registering an identity that exists.
	ErrIdentityTaken = errors.New("identity already registered")

	// ErrRateLimited is returned when the relay rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// CareVaultError is implemented by all SDK error types.
type CareVaultError interface {
	error
	CareVaultError() // marker method
}

// APIError represents an HTTP error from the CareVault relay.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// CareVaultError implements the CareVaultError interface.
func (e *APIError) CareVaultError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401:
		return target == ErrUnauthorized
	case 409:
		return target == ErrIdentityTaken
	case 429:
		return target == ErrRateLimited
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// CareVaultError implements the CareVaultError interface.
func (e *NetworkError) CareVaultError() {}

// VaultError wraps a vault unlock failure. The generic sentinel it matches
// is all callers should ever show a user.
type VaultError struct {
	Err error
}

func (e *VaultError) Error() string {
	return "cannot unlock vault: incorrect password or corrupted data"
}

// Unwrap returns the underlying error for internal diagnostics.
func (e *VaultError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *VaultError) Is(target error) bool {
	return target == ErrVaultLocked
}

// CareVaultError implements the CareVaultError interface.
func (e *VaultError) CareVaultError() {}

// wrapError converts internal API errors to public errors so that
// errors.Is() works with the package sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			RequestID:  apiErr.RequestID,
		}
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{
			Err:     netErr.Err,
			URL:     netErr.URL,
			Attempt: netErr.Attempt,
		}
	}

	return err
}

// wrapEnvelopeError maps crypto-level parse failures to the public sentinel.
func wrapEnvelopeError(err error) error {
	if errors.Is(err, crypto.ErrMalformedEnvelope) {
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return err
}
