package walrus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Azurboy/MindVault-VibeSui/internal/storage"
)

func newTestClient(publisher, aggregator *httptest.Server) *Client {
	cfg := Config{Epochs: 5}
	if publisher != nil {
		cfg.PublisherURL = publisher.URL
	}
	if aggregator != nil {
		cfg.AggregatorURL = aggregator.URL
	}
	return NewClient(cfg)
}

func TestPutNewlyCreated(t *testing.T) {
	var uploaded []byte
	pub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v1/blobs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("epochs"); got != "5" {
			t.Errorf("epochs = %q, want 5", got)
		}
		uploaded, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"newlyCreated":{"blobObject":{"blobId":"blob-1","storage":{"endEpoch":120}}}}`))
	}))
	defer pub.Close()

	c := newTestClient(pub, nil)
	id, end, err := c.PutWithExpiry(context.Background(), []byte("ciphertext"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if id != "blob-1" || end != 120 {
		t.Fatalf("got id=%s end=%d", id, end)
	}
	if !bytes.Equal(uploaded, []byte("ciphertext")) {
		t.Fatal("body not forwarded verbatim")
	}
}

func TestPutAlreadyCertifiedIdempotent(t *testing.T) {
	calls := 0
	pub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`{"newlyCreated":{"blobObject":{"blobId":"blob-x","storage":{"endEpoch":9}}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"alreadyCertified":{"blobId":"blob-x","endEpoch":9}}`))
	}))
	defer pub.Close()

	c := newTestClient(pub, nil)
	id1, err := c.Put(context.Background(), []byte("same bytes"))
	if err != nil {
		t.Fatalf("put1: %v", err)
	}
	id2, err := c.Put(context.Background(), []byte("same bytes"))
	if err != nil {
		t.Fatalf("put2: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("repeat upload changed id: %s vs %s", id1, id2)
	}
}

func TestPutUnexpectedResponse(t *testing.T) {
	pub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer pub.Close()

	if _, err := newTestClient(pub, nil).Put(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error for empty response object")
	}
}

func TestGetRoundTrip(t *testing.T) {
	agg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/blobs/blob-1" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("stored bytes"))
	}))
	defer agg.Close()

	c := newTestClient(nil, agg)
	got, err := c.Get(context.Background(), "blob-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "stored bytes" {
		t.Fatalf("got %q", got)
	}

	if _, err := c.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrBlobNotFound) {
		t.Fatalf("got %v, want ErrBlobNotFound", err)
	}
}

func TestExists(t *testing.T) {
	agg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/v1/blobs/present" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer agg.Close()

	c := newTestClient(nil, agg)
	ok, err := c.Exists(context.Background(), "present")
	if err != nil || !ok {
		t.Fatalf("exists(present) = %v, %v", ok, err)
	}
	ok, err = c.Exists(context.Background(), "absent")
	if err != nil {
		t.Fatalf("exists(absent): %v", err)
	}
	if ok {
		t.Fatal("expected absent blob to report false")
	}
}

func TestNetworkFailureIsUnavailable(t *testing.T) {
	pub := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	pub.Close() // refuse connections

	c := newTestClient(pub, pub)
	if _, err := c.Put(context.Background(), []byte("x")); !errors.Is(err, storage.ErrStorageUnavailable) {
		t.Fatalf("put: got %v, want ErrStorageUnavailable", err)
	}
	if _, err := c.Get(context.Background(), "id"); !errors.Is(err, storage.ErrStorageUnavailable) {
		t.Fatalf("get: got %v, want ErrStorageUnavailable", err)
	}
	if _, err := c.Exists(context.Background(), "id"); !errors.Is(err, storage.ErrStorageUnavailable) {
		t.Fatalf("exists: got %v, want ErrStorageUnavailable", err)
	}
}
