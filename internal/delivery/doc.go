// Package delivery implements message arrival detection for conversations.
//
// The relay offers no push channel to this SDK (push notifications are the
// mobile app's concern), so delivery is adaptive polling: the watcher polls
// the conversation endpoint, resets to the initial interval whenever new
// messages arrive, and backs off with jitter while the conversation is idle.
//
// Handlers receive raw wire messages; decryption stays with the caller so
// this package never holds key material.
package delivery
