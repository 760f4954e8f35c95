package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/carevault/client-go/internal/crypto"
)

func TestMain(m *testing.M) {
	// Lowered Argon2id parameters; the probe only checks cross-command
	// consistency here, not derivation cost.
	fast := crypto.Params{Memory: 64, Time: 1, Threads: 1}
	crypto.AuthParams = fast
	crypto.VaultParams = fast
	crypto.ChatParams = fast
	m.Run()
}

func runProbe(t *testing.T, command, input string) map[string]interface{} {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cfg := Config{
		Stdin:  strings.NewReader(input),
		Stdout: &stdout,
		Stderr: &stderr,
	}
	if err := run([]string{"compatprobe", command}, cfg); err != nil {
		t.Fatalf("run(%q) error = %v", command, err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("output of %q is not JSON: %v", command, err)
	}
	return out
}

func TestRunUnknownCommand(t *testing.T) {
	err := run([]string{"compatprobe", "bogus"}, DefaultConfig())
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("run(bogus) error = %v, want unknown command", err)
	}
}

func TestRunNoCommand(t *testing.T) {
	if err := run([]string{"compatprobe"}, DefaultConfig()); err == nil {
		t.Fatal("run() with no command should fail")
	}
}

func TestAuthHashDeterministic(t *testing.T) {
	input := `{"identity": "jean@example.com", "password": "Sesame123"}`
	a := runProbe(t, "auth-hash", input)["authHash"]
	b := runProbe(t, "auth-hash", input)["authHash"]
	if a == "" || a != b {
		t.Fatalf("auth-hash not deterministic: %v vs %v", a, b)
	}
}

func TestVaultRoundTrip(t *testing.T) {
	created := runProbe(t, "create-vault",
		`{"password": "Sesame123", "profile": {"firstName": "Jean"}}`)

	in, _ := json.Marshal(map[string]interface{}{
		"password":           "Sesame123",
		"salt":               created["salt"],
		"encryptedMasterKey": created["encryptedMasterKey"],
		"encryptedProfile":   created["encryptedProfile"],
	})
	opened := runProbe(t, "open-vault", string(in))

	if opened["masterKey"] != created["masterKey"] {
		t.Error("open-vault recovered a different master key")
	}
	profile, ok := opened["profile"].(map[string]interface{})
	if !ok || profile["firstName"] != "Jean" {
		t.Errorf("open-vault profile = %v, want firstName Jean", opened["profile"])
	}
}

func TestConversationKeySymmetric(t *testing.T) {
	a := runProbe(t, "conversation-key", `{"userA": "u-1", "userB": "u-2"}`)["key"]
	b := runProbe(t, "conversation-key", `{"userA": "u-2", "userB": "u-1"}`)["key"]
	if a == "" || a != b {
		t.Fatalf("conversation keys differ across participant order: %v vs %v", a, b)
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := runProbe(t, "conversation-key", `{"userA": "u-1", "userB": "u-2"}`)["key"].(string)

	in, _ := json.Marshal(map[string]string{"key": key, "plaintext": "hello"})
	env := runProbe(t, "seal", string(in))

	in, _ = json.Marshal(map[string]interface{}{
		"key":  key,
		"iv":   env["iv"],
		"data": env["data"],
	})
	out := runProbe(t, "open", string(in))
	if out["plaintext"] != "hello" {
		t.Fatalf("open plaintext = %v, want hello", out["plaintext"])
	}
}
