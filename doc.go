// Package carevault provides the Go client SDK for CareVault, the
// zero-knowledge patient data layer of a telehealth scheduling service.
//
// The backend is a blind relay: it stores salts, sealed envelopes, and a
// derived authentication hash, and can open none of them. All key
// derivation, encryption, and decryption happens in this SDK.
//
// Basic usage:
//
//	client, err := carevault.New("https://api.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Register a patient; the vault is created client-side.
//	session, err := client.Register(ctx, "jean@example.com", "Sesame123",
//	    carevault.ProfileDocument{"firstName": "Jean"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Open an end-to-end encrypted conversation.
//	conv, err := client.OpenConversation("u-practitioner")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := conv.Send(ctx, "hello"); err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = session
//
// Key derivation is CPU-bound by design (Argon2id); Login, Register, and
// ChangePassword can take a few hundred milliseconds and should not run on a
// UI thread.
package carevault
