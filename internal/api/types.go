package api

import "time"

// VaultRecord is the server-side vault triple. The salt is public, both
// envelope fields are sealed JSON strings the server cannot open.
type VaultRecord struct {
	Salt               string `json:"salt"`
	EncryptedMasterKey string `json:"encryptedMasterKey"`
	EncryptedProfile   string `json:"encryptedProfile,omitempty"`
}

// RegisterRequest is the POST /auth/register payload. AuthHash replaces the
// plaintext password; the vault triple is generated client-side before the
// request is built.
type RegisterRequest struct {
	Identity string      `json:"identity"`
	AuthHash string      `json:"authHash"`
	Vault    VaultRecord `json:"vault"`
}

// RegisterResponse is the POST /auth/register response.
type RegisterResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Identity string `json:"identity"`
	AuthHash string `json:"authHash"`
}

// LoginResponse is the POST /auth/login response: a session token plus the
// stored vault triple for client-side unlocking.
type LoginResponse struct {
	UserID string      `json:"userId"`
	Token  string      `json:"token"`
	Vault  VaultRecord `json:"vault"`
}

// UpdateProfileRequest is the PATCH /patients/me payload carrying a
// re-encrypted profile envelope.
type UpdateProfileRequest struct {
	EncryptedProfile string `json:"encryptedProfile"`
}

// ChangePasswordRequest is the PATCH /auth/password payload. Salt and
// wrapped master key are replaced together; the profile envelope is
// untouched because it is sealed under the master key, not the password.
type ChangePasswordRequest struct {
	AuthHash           string `json:"authHash"`
	NewAuthHash        string `json:"newAuthHash"`
	Salt               string `json:"salt"`
	EncryptedMasterKey string `json:"encryptedMasterKey"`
}

// ChatMessage is the wire form of one message in both directions. The
// content/iv pair reassembles an envelope; attachmentPath, when set, points
// at an opaque ciphertext blob whose decryption parameters ride inside the
// encrypted body.
type ChatMessage struct {
	ID               string    `json:"id,omitempty"`
	SenderID         string    `json:"senderId"`
	RecipientID      string    `json:"recipientId"`
	EncryptedContent string    `json:"encryptedContent"`
	IV               string    `json:"iv"`
	AttachmentPath   string    `json:"attachmentPath,omitempty"`
	ClientRef        string    `json:"clientRef,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// ConversationResponse is the GET /chat/conversation/{id} response.
type ConversationResponse struct {
	Messages []ChatMessage `json:"messages"`
}

// UploadAttachmentResponse is the POST /chat/attachments response.
type UploadAttachmentResponse struct {
	Path string `json:"path"`
}
