// Command compatprobe exposes the CareVault derivation and envelope
// primitives as JSON-in/JSON-out subcommands. The mobile and web clients run
// it in their test suites to verify that every platform derives identical
// keys and can open each other's envelopes.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	carevault "github.com/carevault/client-go"
	"github.com/carevault/client-go/internal/crypto"
)

// Config carries the probe's I/O streams so tests can run commands without a
// real process.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() Config {
	return Config{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func run(args []string, cfg Config) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: compatprobe <command>\ncommands: auth-hash, create-vault, open-vault, conversation-key, seal, open")
	}

	switch args[1] {
	case "auth-hash":
		return authHash(cfg)
	case "create-vault":
		return createVault(cfg)
	case "open-vault":
		return openVault(cfg)
	case "conversation-key":
		return conversationKey(cfg)
	case "seal":
		return seal(cfg)
	case "open":
		return open(cfg)
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func decodeInput(cfg Config, v interface{}) error {
	data, err := io.ReadAll(cfg.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

func writeOutput(cfg Config, v interface{}) error {
	return json.NewEncoder(cfg.Stdout).Encode(v)
}

func authHash(cfg Config) error {
	var in struct {
		Identity string `json:"identity"`
		Password string `json:"password"`
	}
	if err := decodeInput(cfg, &in); err != nil {
		return err
	}
	return writeOutput(cfg, map[string]string{
		"authHash": carevault.AuthHash(in.Identity, in.Password),
	})
}

func createVault(cfg Config) error {
	var in struct {
		Password string                    `json:"password"`
		Profile  carevault.ProfileDocument `json:"profile"`
	}
	if err := decodeInput(cfg, &in); err != nil {
		return err
	}

	vault, err := carevault.CreateVault(in.Password, in.Profile)
	if err != nil {
		return fmt.Errorf("create vault: %w", err)
	}
	return writeOutput(cfg, map[string]string{
		"salt":               vault.Salt,
		"encryptedMasterKey": vault.EncryptedMasterKey,
		"encryptedProfile":   vault.EncryptedProfile,
		"masterKey":          vault.MasterKeyPlain,
	})
}

func openVault(cfg Config) error {
	var in struct {
		Password           string `json:"password"`
		Salt               string `json:"salt"`
		EncryptedMasterKey string `json:"encryptedMasterKey"`
		EncryptedProfile   string `json:"encryptedProfile"`
	}
	if err := decodeInput(cfg, &in); err != nil {
		return err
	}

	vault, err := carevault.OpenVault(in.Password, carevault.WrappedVault{
		Salt:               in.Salt,
		EncryptedMasterKey: in.EncryptedMasterKey,
		EncryptedProfile:   in.EncryptedProfile,
	})
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	return writeOutput(cfg, map[string]interface{}{
		"masterKey": vault.MasterKeyPlain,
		"profile":   vault.Profile,
	})
}

func conversationKey(cfg Config) error {
	var in struct {
		UserA string `json:"userA"`
		UserB string `json:"userB"`
	}
	if err := decodeInput(cfg, &in); err != nil {
		return err
	}
	key := crypto.DeriveConversationKey(in.UserA, in.UserB)
	return writeOutput(cfg, map[string]string{"key": crypto.ToBase64(key)})
}

func seal(cfg Config) error {
	var in struct {
		Key       string `json:"key"`
		Plaintext string `json:"plaintext"`
	}
	if err := decodeInput(cfg, &in); err != nil {
		return err
	}

	key, err := crypto.FromBase64(in.Key)
	if err != nil {
		return fmt.Errorf("decode key: %w", err)
	}
	env, err := crypto.Seal(key, []byte(in.Plaintext))
	if err != nil {
		return fmt.Errorf("seal: %w", err)
	}
	return writeOutput(cfg, env)
}

func open(cfg Config) error {
	var in struct {
		Key  string `json:"key"`
		IV   string `json:"iv"`
		Data string `json:"data"`
	}
	if err := decodeInput(cfg, &in); err != nil {
		return err
	}

	key, err := crypto.FromBase64(in.Key)
	if err != nil {
		return fmt.Errorf("decode key: %w", err)
	}
	plaintext, err := crypto.Open(key, crypto.Envelope{IV: in.IV, Data: in.Data})
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	return writeOutput(cfg, map[string]string{"plaintext": string(plaintext)})
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
