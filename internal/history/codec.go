// Package history reconstructs an ordered plaintext conversation from
// on-chain pointers, blobs, and the session cipher.
package history

import (
	"bytes"
	"encoding/json"
)

// Role of a stored message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is the plaintext-side structure, plus the chain provenance of the
// pointer it was recovered from.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`

	BlobIndex      uint64 `json:"blobIndex,omitempty"`
	BlobID         string `json:"blobId,omitempty"`
	ChainTimestamp int64  `json:"chainTimestamp,omitempty"`
}

// DecodedKind tags the three blob payload formats that exist in the wild.
type DecodedKind int

const (
	// KindLegacyText is the oldest format: raw plaintext, no structure,
	// attributed to the user role.
	KindLegacyText DecodedKind = iota
	// KindSingle is one JSON-encoded message per blob.
	KindSingle
	// KindBatch is the versioned batch envelope.
	KindBatch
)

// Decoded is the result of resolving a decrypted blob once, rather than
// nesting parse fallbacks at every call site.
type Decoded struct {
	Kind     DecodedKind
	Messages []Message
}

type batchEnvelope struct {
	V        int       `json:"v"`
	Messages []Message `json:"messages"`
}

// Decode sniffs the payload structure: batch envelope first, then single
// message, then the raw-text legacy fallback. It never fails; undecodable
// bytes are by definition legacy text.
func Decode(plaintext []byte) Decoded {
	trimmed := bytes.TrimSpace(plaintext)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var batch batchEnvelope
		if err := json.Unmarshal(trimmed, &batch); err == nil && batch.V >= 1 && len(batch.Messages) > 0 {
			return Decoded{Kind: KindBatch, Messages: batch.Messages}
		}
		var single Message
		if err := json.Unmarshal(trimmed, &single); err == nil && single.Role != "" && single.Content != "" {
			return Decoded{Kind: KindSingle, Messages: []Message{single}}
		}
	}
	return Decoded{
		Kind:     KindLegacyText,
		Messages: []Message{{Role: RoleUser, Content: string(plaintext)}},
	}
}

// EncodeMessage serializes one message for encryption and storage.
func EncodeMessage(m Message) ([]byte, error) {
	return json.Marshal(Message{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
}

// EncodeBatch serializes an ordered message list under the batch envelope so
// several messages can share one pointer.
func EncodeBatch(msgs []Message) ([]byte, error) {
	clean := make([]Message, len(msgs))
	for i, m := range msgs {
		clean[i] = Message{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}
	return json.Marshal(batchEnvelope{V: 1, Messages: clean})
}
