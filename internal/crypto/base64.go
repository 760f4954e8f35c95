package crypto

import "encoding/base64"

// ToBase64 encodes bytes to standard base64 with padding. Standard encoding
// matches what the mobile client stores server-side, so every persisted blob
// round-trips between the two clients.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64 to bytes. It tolerates missing padding,
// which some HTTP layers strip in transit.
func FromBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
