package carevault

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carevault/client-go/internal/api"
	"github.com/carevault/client-go/internal/crypto"
	"github.com/carevault/client-go/internal/delivery"
)

// Message is one decrypted chat message. When Unreadable is true the
// ciphertext did not authenticate under the conversation key; Text and
// Attachment are empty but the surrounding metadata is still usable for
// display ordering.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Text        string
	Unreadable  bool
	Attachment  *AttachmentInfo
	ClientRef   string
	SentAt      time.Time
}

// AttachmentInfo is the attachment metadata carried inside the encrypted
// message body. The blob itself is stored relay-side as opaque ciphertext;
// FileIV is the decryption parameter for it and travels only encrypted.
type AttachmentInfo struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	FileIV   string `json:"fileIv"`
	Path     string `json:"path"`
}

// attachmentBody is the plaintext JSON of an attachment message.
type attachmentBody struct {
	Attachment AttachmentInfo `json:"attachment"`
	Caption    string         `json:"caption,omitempty"`
}

// Conversation is a handle on the message thread with one peer. The shared
// key is derived once at open time; both participants derive the identical
// key from the sorted identifier pair, so no key material is ever exchanged.
type Conversation struct {
	client *Client
	selfID string
	peerID string
	key    []byte
}

func newConversation(client *Client, selfID, peerID string) *Conversation {
	return &Conversation{
		client: client,
		selfID: selfID,
		peerID: peerID,
		key:    crypto.DeriveConversationKey(selfID, peerID),
	}
}

// PeerID returns the other participant's identifier.
func (cv *Conversation) PeerID() string {
	return cv.peerID
}

// EncryptMessage seals text under the conversation key without sending it.
// Returns the iv/data pair in wire encoding; each call uses a fresh IV.
func (cv *Conversation) EncryptMessage(text string) (iv, data string, err error) {
	env, err := crypto.Seal(cv.key, []byte(text))
	if err != nil {
		return "", "", err
	}
	return env.IV, env.Data, nil
}

// DecryptMessage opens a wire iv/data pair under the conversation key.
func (cv *Conversation) DecryptMessage(iv, data string) (string, error) {
	plaintext, err := crypto.Open(cv.key, crypto.Envelope{IV: iv, Data: data})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMessageUnreadable, err)
	}
	return string(plaintext), nil
}

// Send encrypts text under the conversation key and posts it. The returned
// message carries the relay-assigned ID and timestamp.
func (cv *Conversation) Send(ctx context.Context, text string) (*Message, error) {
	return cv.send(ctx, []byte(text), "")
}

// SendAttachment encrypts a file under the conversation key with its own IV,
// uploads the resulting blob, then sends a message whose encrypted body
// carries the attachment metadata (filename, MIME type, file IV, blob path).
// The relay sees two ciphertexts and a storage path; nothing else.
func (cv *Conversation) SendAttachment(ctx context.Context, filename, mimeType string, content []byte, caption string) (*Message, error) {
	fileIV, blob, err := crypto.Encrypt(cv.key, content)
	if err != nil {
		return nil, err
	}

	path, err := cv.client.apiClient.UploadAttachment(ctx, blob)
	if err != nil {
		return nil, wrapError(err)
	}

	body, err := json.Marshal(attachmentBody{
		Attachment: AttachmentInfo{
			Filename: filename,
			MimeType: mimeType,
			FileIV:   crypto.ToBase64(fileIV),
			Path:     path,
		},
		Caption: caption,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize attachment metadata: %w", err)
	}

	return cv.send(ctx, body, path)
}

func (cv *Conversation) send(ctx context.Context, plaintext []byte, attachmentPath string) (*Message, error) {
	env, err := crypto.Seal(cv.key, plaintext)
	if err != nil {
		return nil, err
	}

	sent, err := cv.client.apiClient.SendMessage(ctx, api.ChatMessage{
		SenderID:         cv.selfID,
		RecipientID:      cv.peerID,
		EncryptedContent: env.Data,
		IV:               env.IV,
		AttachmentPath:   attachmentPath,
		ClientRef:        uuid.NewString(),
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return cv.decrypt(*sent), nil
}

// Messages fetches and decrypts the full thread. A message that fails to
// decrypt is returned with Unreadable set instead of aborting the fetch; one
// corrupted ciphertext never hides the rest of the conversation.
func (cv *Conversation) Messages(ctx context.Context) ([]*Message, error) {
	wire, err := cv.client.apiClient.GetConversation(ctx, cv.peerID)
	if err != nil {
		return nil, wrapError(err)
	}

	messages := make([]*Message, 0, len(wire))
	for _, m := range wire {
		messages = append(messages, cv.decrypt(m))
	}
	return messages, nil
}

// Attachment downloads and decrypts the blob behind an attachment message.
// Returns ErrMessageUnreadable when the message carries no attachment or the
// blob does not authenticate.
func (cv *Conversation) Attachment(ctx context.Context, msg *Message) ([]byte, error) {
	if msg == nil || msg.Attachment == nil {
		return nil, fmt.Errorf("%w: no attachment metadata", ErrMessageUnreadable)
	}

	blob, err := cv.client.apiClient.GetAttachment(ctx, msg.Attachment.Path)
	if err != nil {
		return nil, wrapError(err)
	}

	iv, err := crypto.FromBase64(msg.Attachment.FileIV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad file IV", ErrMessageUnreadable)
	}

	content, err := crypto.Decrypt(cv.key, iv, blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMessageUnreadable, err)
	}
	return content, nil
}

// Watch polls the conversation and invokes handler for each message not seen
// before, decrypted. Delivery is asynchronous; the returned stop function is
// idempotent and must be called to end polling.
func (cv *Conversation) Watch(ctx context.Context, handler func(*Message)) (stop func(), err error) {
	watcher := delivery.NewWatcher(cv.client.watcherConfig(), cv.peerID)
	if err := watcher.Start(ctx, func(_ context.Context, m api.ChatMessage) {
		handler(cv.decrypt(m))
	}); err != nil {
		return nil, err
	}
	return watcher.Stop, nil
}

// decrypt converts a wire message to the decrypted form. Never fails: a bad
// ciphertext produces an Unreadable message.
func (cv *Conversation) decrypt(m api.ChatMessage) *Message {
	msg := &Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		ClientRef:   m.ClientRef,
		SentAt:      m.CreatedAt,
	}

	plaintext, err := crypto.Open(cv.key, crypto.Envelope{IV: m.IV, Data: m.EncryptedContent})
	if err != nil {
		msg.Unreadable = true
		return msg
	}

	if m.AttachmentPath != "" {
		var body attachmentBody
		if err := json.Unmarshal(plaintext, &body); err != nil || body.Attachment.Path == "" {
			msg.Unreadable = true
			return msg
		}
		msg.Attachment = &body.Attachment
		msg.Text = body.Caption
		return msg
	}

	msg.Text = string(plaintext)
	return msg
}
