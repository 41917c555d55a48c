package proof

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func sampleProof() ConversationProof {
	return Generate(GenerateParams{
		VaultID:        "0xvault",
		VaultOwner:     "0xA",
		BlobIndex:      3,
		BlobID:         "b3",
		ChainTimestamp: 1700000000000,
		StoreTxDigest:  "dg1",
		Content:        "hello",
		Network:        "testnet",
		PackageID:      "0xpkg",
	})
}

func TestGenerateContentHash(t *testing.T) {
	p := sampleProof()
	// SHA-256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if p.ContentHash != want {
		t.Fatalf("contentHash = %s, want %s", p.ContentHash, want)
	}
	if p.Version != Version {
		t.Fatalf("version = %s", p.Version)
	}
}

func TestGenerateWithoutContent(t *testing.T) {
	params := GenerateParams{
		VaultID: "0xv", VaultOwner: "0xA", BlobIndex: 0, BlobID: "b",
		ChainTimestamp: 1, Network: "testnet", PackageID: "0xpkg",
	}
	p := Generate(params)
	if p.ContentHash != "" {
		t.Fatal("no content must mean no content hash")
	}
}

func TestMarshalParseRoundTrip(t *testing.T) {
	p := sampleProof()
	data, err := Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != p {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", got, p)
	}
}

func TestMarshalStableFieldNames(t *testing.T) {
	data, err := Marshal(sampleProof())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{
		`"vaultId"`, `"vaultOwner"`, `"blobIndex"`, `"blobId"`,
		`"chainTimestamp"`, `"storeTxDigest"`, `"contentHash"`,
		`"network"`, `"packageId"`, `"version"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Fatalf("serialized proof missing %s:\n%s", field, data)
		}
	}
}

func TestParseRejectsMissingFields(t *testing.T) {
	base := sampleProof()
	required := []string{"vaultId", "vaultOwner", "blobIndex", "blobId", "chainTimestamp", "network", "packageId"}
	for _, field := range required {
		data, err := Marshal(base)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		delete(m, field)
		mutated, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("remarshal: %v", err)
		}
		if _, err := Parse(mutated); !errors.Is(err, ErrProofMalformed) {
			t.Fatalf("dropping %s: got %v, want ErrProofMalformed", field, err)
		}
	}
}

func TestParseOptionalFieldsMayBeAbsent(t *testing.T) {
	data := []byte(`{
		"vaultId": "0xv", "vaultOwner": "0xA", "blobIndex": 0, "blobId": "b",
		"chainTimestamp": 5, "network": "testnet", "packageId": "0xpkg", "version": "1.0.0"
	}`)
	p, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.StoreTxDigest != "" || p.ContentHash != "" {
		t.Fatalf("unexpected optional values %+v", p)
	}
	if p.BlobIndex != 0 {
		t.Fatal("index zero must parse as a valid index")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, data := range []string{"", "not json", "[]", `"string"`} {
		if _, err := Parse([]byte(data)); !errors.Is(err, ErrProofMalformed) {
			t.Fatalf("input %q: got %v, want ErrProofMalformed", data, err)
		}
	}
}
