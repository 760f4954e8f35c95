package crypto

import (
	"bytes"
	"testing"
)

func TestBase64_RoundTrip(t *testing.T) {
	data := RandomBytes(33) // deliberately not a multiple of 3

	decoded, err := FromBase64(ToBase64(data))
	if err != nil {
		t.Fatalf("FromBase64() error = %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("round trip changed data")
	}
}

func TestFromBase64_MissingPadding(t *testing.T) {
	// "hi" encodes to "aGk=" - some proxies strip the padding.
	decoded, err := FromBase64("aGk")
	if err != nil {
		t.Fatalf("FromBase64() error = %v", err)
	}
	if string(decoded) != "hi" {
		t.Errorf("decoded = %q, want %q", decoded, "hi")
	}
}

func TestFromBase64_Invalid(t *testing.T) {
	if _, err := FromBase64("!!! not base64 !!!"); err == nil {
		t.Error("expected error for invalid input")
	}
}
