// Package proof generates and verifies shareable conversation proofs: a
// plaintext-free JSON artifact binding a ciphertext blob to a vault, an
// index, and a chain timestamp. Anyone can verify one against public data.
package proof

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Version of the proof schema.
const Version = "1.0.0"

var ErrProofMalformed = errors.New("proof: malformed proof document")

// ConversationProof is immutable once generated. Field names are the stable
// wire schema; parsers on other platforms depend on them.
type ConversationProof struct {
	VaultID        string `json:"vaultId"`
	VaultOwner     string `json:"vaultOwner"`
	BlobIndex      uint64 `json:"blobIndex"`
	BlobID         string `json:"blobId"`
	ChainTimestamp int64  `json:"chainTimestamp"`
	StoreTxDigest  string `json:"storeTxDigest,omitempty"`
	ContentHash    string `json:"contentHash,omitempty"`
	Network        string `json:"network"`
	PackageID      string `json:"packageId"`
	Version        string `json:"version"`
}

// GenerateParams carries the chain facts the prover asserts. Content is
// optional plaintext (or a serialized batch); only its hash enters the
// proof.
type GenerateParams struct {
	VaultID        string
	VaultOwner     string
	BlobIndex      uint64
	BlobID         string
	ChainTimestamp int64
	StoreTxDigest  string
	Content        string
	Network        string
	PackageID      string
}

// Generate assembles a proof. Pure: no network, no key material.
func Generate(p GenerateParams) ConversationProof {
	proof := ConversationProof{
		VaultID:        p.VaultID,
		VaultOwner:     p.VaultOwner,
		BlobIndex:      p.BlobIndex,
		BlobID:         p.BlobID,
		ChainTimestamp: p.ChainTimestamp,
		StoreTxDigest:  p.StoreTxDigest,
		Network:        p.Network,
		PackageID:      p.PackageID,
		Version:        Version,
	}
	if p.Content != "" {
		proof.ContentHash = ContentHash(p.Content)
	}
	return proof
}

// ContentHash is the fixed digest a verifier recomputes to confirm specific
// plaintext matches a proof: lowercase hex SHA-256.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Marshal renders the proof as the UTF-8 JSON file users download and share.
func Marshal(p ConversationProof) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Parse decodes and validates a proof document. blobIndex must be present
// (zero is a legitimate index); every other required field must be
// non-empty.
func Parse(data []byte) (ConversationProof, error) {
	var probe struct {
		VaultID        *string `json:"vaultId"`
		VaultOwner     *string `json:"vaultOwner"`
		BlobIndex      *uint64 `json:"blobIndex"`
		BlobID         *string `json:"blobId"`
		ChainTimestamp *int64  `json:"chainTimestamp"`
		Network        *string `json:"network"`
		PackageID      *string `json:"packageId"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ConversationProof{}, fmt.Errorf("%w: %v", ErrProofMalformed, err)
	}
	missing := func(s *string) bool { return s == nil || *s == "" }
	if missing(probe.VaultID) || missing(probe.VaultOwner) || probe.BlobIndex == nil ||
		missing(probe.BlobID) || probe.ChainTimestamp == nil || *probe.ChainTimestamp == 0 ||
		missing(probe.Network) || missing(probe.PackageID) {
		return ConversationProof{}, fmt.Errorf("%w: missing required field", ErrProofMalformed)
	}

	var p ConversationProof
	if err := json.Unmarshal(data, &p); err != nil {
		return ConversationProof{}, fmt.Errorf("%w: %v", ErrProofMalformed, err)
	}
	return p, nil
}
