package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Transport abstracts the JSON-RPC connection to a fullnode so the query
// layer can be exercised against a mock in tests.
type Transport interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// HTTPTransport speaks JSON-RPC 2.0 over HTTP POST.
type HTTPTransport struct {
	URL    string
	Client *http.Client

	nextID atomic.Int64
}

func NewHTTPTransport(url string) *HTTPTransport {
	return &HTTPTransport{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (t *HTTPTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      t.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fullnode returned %d", ErrLedgerUnavailable, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	var out rpcResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: bad fullnode response: %v", ErrLedgerUnavailable, err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	return out.Result, nil
}

// MockTransport implements Transport for tests. Responses are queued per
// method and consumed in order; a method with no queue falls back to its
// fixed response.
type MockTransport struct {
	mu        sync.Mutex
	fixed     map[string]mockResult
	queues    map[string][]mockResult
	calls     map[string][]any
}

type mockResult struct {
	result json.RawMessage
	err    error
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		fixed:  make(map[string]mockResult),
		queues: make(map[string][]mockResult),
		calls:  make(map[string][]any),
	}
}

func (m *MockTransport) SetResponse(method, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed[method] = mockResult{result: json.RawMessage(result)}
}

func (m *MockTransport) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed[method] = mockResult{err: err}
}

// QueueResponse appends a one-shot response for method; queued responses are
// served before the fixed one. Used to script pagination sequences.
func (m *MockTransport) QueueResponse(method, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[method] = append(m.queues[method], mockResult{result: json.RawMessage(result)})
}

func (m *MockTransport) Calls(method string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.calls[method]...)
}

func (m *MockTransport) Call(_ context.Context, method string, params any) (json.RawMessage, error) {
	m.mu.Lock()
	m.calls[method] = append(m.calls[method], params)
	if q := m.queues[method]; len(q) > 0 {
		r := q[0]
		m.queues[method] = q[1:]
		m.mu.Unlock()
		return r.result, r.err
	}
	r, ok := m.fixed[method]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("mock: no response configured for %s", method)
	}
	return r.result, r.err
}
