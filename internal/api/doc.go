// Package api provides the HTTP client for the CareVault relay. It handles
// bearer-token authentication, request/response serialization, and automatic
// retry with exponential backoff for transient failures.
//
// The relay is untrusted by design: every payload this package sends or
// receives is either public (salts, identifiers, timestamps) or ciphertext
// sealed client-side. The package never sees a password or a raw key.
//
// # Retry Behavior
//
// Requests are retried up to 3 times for 408, 429 and 5xx responses (501
// excepted) and for network-level failures, with exponential backoff and
// jitter. A Retry-After header on a rate-limited response overrides the
// backoff schedule, capped at the configured maximum delay. Other 4xx
// responses fail immediately; re-submitting a rejected login would only burn
// the server-side rate limit.
//
// # Error Handling
//
// HTTP errors surface as [*APIError] and match the package sentinels via
// errors.Is:
//
//	if errors.Is(err, api.ErrUnauthorized) {
//	    // prompt for re-login
//	}
//
// # Thread Safety
//
// [Client] is safe for concurrent use.
package api
