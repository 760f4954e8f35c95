package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Register creates an account. The request already contains the derived auth
// hash and the client-generated vault triple; no secret leaves the client.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var result RegisterResponse
	if err := c.Do(ctx, "POST", "/auth/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates with the derived auth hash and returns the session
// token together with the stored vault triple.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var result LoginResponse
	if err := c.Do(ctx, "POST", "/auth/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProfile replaces the stored profile envelope wholesale.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) error {
	return c.Do(ctx, "PATCH", "/patients/me", req, nil)
}

// ChangePassword atomically replaces the salt and wrapped master key. The
// server verifies the current auth hash before accepting the new one.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.Do(ctx, "PATCH", "/auth/password", req, nil)
}

// SendMessage posts an encrypted chat message.
func (c *Client) SendMessage(ctx context.Context, msg ChatMessage) (*ChatMessage, error) {
	var result ChatMessage
	if err := c.Do(ctx, "POST", "/chat/send", msg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetConversation fetches all messages exchanged with a peer.
func (c *Client) GetConversation(ctx context.Context, peerID string) ([]ChatMessage, error) {
	path := fmt.Sprintf("/chat/conversation/%s", url.PathEscape(peerID))
	var result ConversationResponse
	if err := c.Do(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// UploadAttachment stores an encrypted attachment blob and returns the path
// to embed in the message body.
func (c *Client) UploadAttachment(ctx context.Context, blob []byte) (string, error) {
	data, err := c.DoRaw(ctx, "POST", "/chat/attachments", blob)
	if err != nil {
		return "", err
	}

	// The upload endpoint answers JSON even though the request body is raw.
	var result UploadAttachmentResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	return result.Path, nil
}

// GetAttachment fetches an encrypted attachment blob by its path.
func (c *Client) GetAttachment(ctx context.Context, path string) ([]byte, error) {
	return c.DoRaw(ctx, "GET", fmt.Sprintf("/chat/attachments/%s", url.PathEscape(path)), nil)
}
