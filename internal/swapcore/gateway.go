package swapcore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Transport delivers one JSON body to url and returns the response body.
type Transport interface {
	Send(ctx context.Context, url string, body []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, url string, body []byte) ([]byte, error)

func (f TransportFunc) Send(ctx context.Context, url string, body []byte) ([]byte, error) {
	return f(ctx, url, body)
}

// HTTPTransport posts JSON bodies over HTTP. One request per Send; nothing is
// kept between calls.
type HTTPTransport struct {
	Client  *http.Client
	Headers map[string]string
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &HTTPTransport{Client: &http.Client{Timeout: timeout}}
}

func (t *HTTPTransport) Send(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "swapflow/1.0")
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	hc := t.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	all := new(bytes.Buffer)
	if _, err := all.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	// Nodes answer JSON-RPC errors with 4xx/5xx too; only bodies that are not
	// JSON at all are treated as transport failures.
	if resp.StatusCode/100 != 2 && !json.Valid(all.Bytes()) {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(all.String(), 200))
	}
	return all.Bytes(), nil
}

// Gateway performs single JSON-RPC request/response exchanges.
type Gateway struct {
	transport Transport
	verbose   bool
	logf      func(string, ...any)
}

func NewGateway(t Transport, verbose bool, logf func(string, ...any)) *Gateway {
	return &Gateway{transport: t, verbose: verbose, logf: logf}
}

// Call sends one request and returns the raw result, which may be JSON null.
// It never retries.
func (g *Gateway) Call(ctx context.Context, endpoint, method string, params []any, id int) (json.RawMessage, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("%w: endpoint is empty", ErrTransport)
	}
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcReq{Jsonrpc: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return nil, encodingErr("%s request: %v", method, err)
	}
	if g.verbose && g.logf != nil {
		g.logf("[rpc] --- SENDING --- %s", body)
	}

	raw, err := g.transport.Send(ctx, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, method, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: %s: response is empty", ErrTransport, method)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, protocolErr("%s: bad JSON: %v (body=%s)", method, err, truncate(string(raw), 200))
	}
	if e, ok := env["error"]; ok && !isNull(e) {
		rpcErr := new(RPCError)
		if err := json.Unmarshal(e, rpcErr); err != nil {
			return nil, protocolErr("%s: bad error object: %s", method, truncate(string(e), 200))
		}
		return nil, rpcErr
	}
	res, ok := env["result"]
	if !ok {
		return nil, protocolErr("%s: reply has neither result nor error", method)
	}
	return res, nil
}

func isNull(m json.RawMessage) bool {
	return len(m) == 0 || string(bytes.TrimSpace(m)) == "null"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…(truncated)"
}
