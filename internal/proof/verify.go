package proof

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azurboy/MindVault-VibeSui/internal/ledger"
	"github.com/Azurboy/MindVault-VibeSui/internal/storage"
)

// ClockSkewTolerance is how far into the future a chain timestamp may sit
// before the proof is rejected.
const ClockSkewTolerance = time.Minute

// Checks is the partial check state a verification reports even when it
// short-circuits. TransactionValid is nil when the proof carries no
// transaction reference.
type Checks struct {
	VaultExists      bool  `json:"vaultExists"`
	BlobExists       bool  `json:"blobExists"`
	TimestampValid   bool  `json:"timestampValid"`
	TransactionValid *bool `json:"transactionValid,omitempty"`
}

// VerifyResult is a normal value for both valid and invalid proofs; only
// infrastructure faults surface as errors.
type VerifyResult struct {
	Valid   bool   `json:"valid"`
	Details string `json:"details"`
	Checks  Checks `json:"checks"`
}

// LedgerReader is the public read surface verification needs. Nothing here
// touches a private key.
type LedgerReader interface {
	GetVaultState(ctx context.Context, vaultID string) (ledger.Vault, error)
	GetTransaction(ctx context.Context, digest string) (ledger.TransactionResult, error)
}

// BlobProber is the existence probe; the blob body is never downloaded.
type BlobProber interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Verifier struct {
	Ledger LedgerReader
	Blobs  BlobProber
	Now    func() time.Time
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Verify runs the four independent checks, stopping at the first hard
// failure while reporting the check state reached so far:
//
//  1. the vault exists and its recorded owner matches exactly;
//  2. the blob exists in the store;
//  3. the chain timestamp is not in the future beyond skew tolerance;
//  4. if a transaction digest is present, the transaction executed
//     successfully, and any pointer-stored event it emitted matches the
//     proof's vault and index.
//
// A transaction without the event passes check 4 on execution status alone;
// older transactions predate the event, so its absence proves nothing either
// way.
func (v *Verifier) Verify(ctx context.Context, p ConversationProof) (VerifyResult, error) {
	var checks Checks

	vault, err := v.Ledger.GetVaultState(ctx, p.VaultID)
	if errors.Is(err, ledger.ErrVaultNotFound) {
		return VerifyResult{Details: "vault not found on chain", Checks: checks}, nil
	}
	if err != nil {
		return VerifyResult{}, err
	}
	if vault.Owner != p.VaultOwner {
		return VerifyResult{
			Details: fmt.Sprintf("vault owner mismatch: expected %s, got %s", p.VaultOwner, vault.Owner),
			Checks:  checks,
		}, nil
	}
	checks.VaultExists = true

	exists, err := v.Blobs.Exists(ctx, p.BlobID)
	if err != nil {
		return VerifyResult{}, err
	}
	if !exists {
		return VerifyResult{Details: "blob not found in storage", Checks: checks}, nil
	}
	checks.BlobExists = true

	ts := time.UnixMilli(p.ChainTimestamp)
	if ts.After(v.now().Add(ClockSkewTolerance)) {
		return VerifyResult{Details: "chain timestamp is in the future", Checks: checks}, nil
	}
	checks.TimestampValid = true

	if p.StoreTxDigest != "" {
		invalid := false
		checks.TransactionValid = &invalid

		tx, err := v.Ledger.GetTransaction(ctx, p.StoreTxDigest)
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			return VerifyResult{Details: "transaction not found on chain", Checks: checks}, nil
		}
		if err != nil {
			return VerifyResult{}, err
		}
		if !tx.Success {
			return VerifyResult{
				Details: fmt.Sprintf("transaction failed with status: %s", tx.Status),
				Checks:  checks,
			}, nil
		}
		if ev := tx.StoredEvent; ev != nil {
			if ev.VaultID != p.VaultID {
				return VerifyResult{Details: "transaction vault id does not match proof", Checks: checks}, nil
			}
			if ev.Index != p.BlobIndex {
				return VerifyResult{Details: "transaction blob index does not match proof", Checks: checks}, nil
			}
		}
		valid := true
		checks.TransactionValid = &valid
	}

	return VerifyResult{
		Valid: true,
		Details: fmt.Sprintf("verified: message stored at %s on %s",
			ts.UTC().Format(time.RFC3339), p.Network),
		Checks: checks,
	}, nil
}

var _ BlobProber = (storage.BlobStore)(nil)
