package history

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/Azurboy/MindVault-VibeSui/internal/ledger"
	"github.com/Azurboy/MindVault-VibeSui/internal/storage"
)

// PointerLister is the slice of the ledger client the assembler needs.
type PointerLister interface {
	ListPointers(ctx context.Context, vaultID string) ([]ledger.Pointer, error)
}

// DecryptFunc opens one payload. It is a pure function of (ciphertext,
// nonce) under the session key, so pointer fetches can run concurrently.
type DecryptFunc func(ciphertext, nonce []byte) ([]byte, error)

const fetchWorkers = 4

// Assembler reconstructs a conversation from the read paths only.
type Assembler struct {
	Ledger PointerLister
	Blobs  storage.BlobStore
	Logger *log.Logger
}

// Load fetches all pointers for the vault, then fetches and decrypts each
// blob. A failure on one pointer excludes only that pointer's messages; the
// only fatal failure is not being able to list the pointers at all. The
// result is flattened across blobs and sorted by each message's own logical
// timestamp, not by chain time or fetch order.
func (a *Assembler) Load(ctx context.Context, vaultID string, decrypt DecryptFunc) ([]Message, error) {
	pointers, err := a.Ledger.ListPointers(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if len(pointers) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		messages []Message
		wg       sync.WaitGroup
		sem      = make(chan struct{}, fetchWorkers)
	)
	for _, ptr := range pointers {
		wg.Add(1)
		sem <- struct{}{}
		go func(ptr ledger.Pointer) {
			defer wg.Done()
			defer func() { <-sem }()
			msgs, err := a.loadPointer(ctx, ptr, decrypt)
			if err != nil {
				a.warnf("skipping pointer %d (%s): %v", ptr.Index, ptr.BlobID, err)
				return
			}
			mu.Lock()
			messages = append(messages, msgs...)
			mu.Unlock()
		}(ptr)
	}
	wg.Wait()

	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Timestamp != messages[j].Timestamp {
			return messages[i].Timestamp < messages[j].Timestamp
		}
		return messages[i].BlobIndex < messages[j].BlobIndex
	})
	return messages, nil
}

func (a *Assembler) loadPointer(ctx context.Context, ptr ledger.Pointer, decrypt DecryptFunc) ([]Message, error) {
	ciphertext, err := a.Blobs.Get(ctx, ptr.BlobID)
	if err != nil {
		return nil, err
	}
	plaintext, err := decrypt(ciphertext, ptr.Nonce)
	if err != nil {
		return nil, err
	}

	decoded := Decode(plaintext)
	msgs := decoded.Messages
	for i := range msgs {
		msgs[i].BlobIndex = ptr.Index
		msgs[i].BlobID = ptr.BlobID
		msgs[i].ChainTimestamp = ptr.CreatedAt
		if msgs[i].Timestamp == 0 {
			// Legacy blobs carry no logical timestamp; chain time is the
			// best available ordering key.
			msgs[i].Timestamp = ptr.CreatedAt
		}
	}
	return msgs, nil
}

func (a *Assembler) warnf(format string, args ...any) {
	if a.Logger != nil {
		a.Logger.Printf(format, args...)
	}
}
