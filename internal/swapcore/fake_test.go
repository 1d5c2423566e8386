package swapcore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type handler func(params []json.RawMessage, n int) (any, *RPCError)

// fakeNode is an in-memory JSON-RPC node keyed by method. Unknown methods
// answer with -32601.
type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]handler
	calls    []string
	counts   map[string]int
	bodies   map[string][]json.RawMessage
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		handlers: map[string]handler{},
		counts:   map[string]int{},
		bodies:   map[string][]json.RawMessage{},
	}
}

func (f *fakeNode) on(method string, h handler) *fakeNode {
	f.handlers[method] = h
	return f
}

func (f *fakeNode) Send(_ context.Context, _ string, body []byte) ([]byte, error) {
	var req struct {
		ID     int               `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	f.mu.Lock()
	n := f.counts[req.Method]
	f.counts[req.Method]++
	f.calls = append(f.calls, req.Method)
	f.bodies[req.Method] = append(f.bodies[req.Method], json.RawMessage(body))
	h, ok := f.handlers[req.Method]
	f.mu.Unlock()

	env := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		env["error"] = &RPCError{Code: -32601, Message: "method not found"}
		return json.Marshal(env)
	}
	res, rpcErr := h(req.Params, n)
	if rpcErr != nil {
		env["error"] = rpcErr
	} else {
		env["result"] = res
	}
	return json.Marshal(env)
}

func (f *fakeNode) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[method]
}

// sent returns the transaction objects passed to eth_sendTransaction.
func (f *fakeNode) sent(t *testing.T) []TransactionRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []TransactionRequest
	for _, b := range f.bodies["eth_sendTransaction"] {
		var req struct {
			Params []TransactionRequest `json:"params"`
		}
		require.NoError(t, json.Unmarshal(b, &req))
		require.Len(t, req.Params, 1)
		out = append(out, req.Params[0])
	}
	return out
}

func newTestNode(t *testing.T, f *fakeNode) *Node {
	t.Helper()
	c, err := NewCodec(DefaultSelectors())
	require.NoError(t, err)
	return NewNode("http://node.test", NewGateway(f, false, nil), c, t.Logf)
}

func result(v any) handler {
	return func([]json.RawMessage, int) (any, *RPCError) { return v, nil }
}

// sequence answers the n-th call with vs[n], repeating the last value.
func sequence(vs ...any) handler {
	return func(_ []json.RawMessage, n int) (any, *RPCError) {
		if n >= len(vs) {
			n = len(vs) - 1
		}
		return vs[n], nil
	}
}

func rpcFailure(code int, msg string) handler {
	return func([]json.RawMessage, int) (any, *RPCError) { return nil, &RPCError{Code: code, Message: msg} }
}

func allowanceWord(v uint64) string {
	return fmt.Sprintf("0x%064x", v)
}

func txHash(i int) string {
	return fmt.Sprintf("0x%064x", 0xabc000+i)
}

func receiptWithStatus(status string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"status":%q,"blockNumber":"0x10","gasUsed":"0x5208"}`, status))
}

func isSelector(data, sel string) bool {
	return strings.HasPrefix(data, "0x"+sel)
}
