package swapcore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Node is a JSON-RPC endpoint plus the codec used to talk to its contracts.
type Node struct {
	Endpoint string

	gw    *Gateway
	codec *Codec
	logf  func(string, ...any)
}

func NewNode(endpoint string, gw *Gateway, codec *Codec, logf func(string, ...any)) *Node {
	return &Node{Endpoint: strings.TrimSpace(endpoint), gw: gw, codec: codec, logf: logf}
}

func (n *Node) Codec() *Codec { return n.codec }

func (n *Node) log(format string, a ...any) {
	if n.logf != nil {
		n.logf(format, a...)
	}
}

// ChainID returns the node's chain id as reported by eth_chainId.
func (n *Node) ChainID(ctx context.Context) (uint64, error) {
	res, err := n.gw.Call(ctx, n.Endpoint, "eth_chainId", nil, idChainID)
	if err != nil {
		return 0, err
	}
	var id hexutil.Uint64
	if err := json.Unmarshal(res, &id); err != nil {
		return 0, protocolErr("eth_chainId: %v (result=%s)", err, truncate(string(res), 80))
	}
	return uint64(id), nil
}

// EstimateGas is a passthrough of eth_estimateGas for an unsigned request.
func (n *Node) EstimateGas(ctx context.Context, req TransactionRequest) (uint64, error) {
	req.Gas = nil
	res, err := n.gw.Call(ctx, n.Endpoint, "eth_estimateGas", []any{req}, idEstimateGas)
	if err != nil {
		return 0, err
	}
	var g hexutil.Uint64
	if err := json.Unmarshal(res, &g); err != nil {
		return 0, protocolErr("eth_estimateGas: %v (result=%s)", err, truncate(string(res), 80))
	}
	return uint64(g), nil
}

// AddressHex renders an address in canonical lowercase 0x form.
func AddressHex(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// ParseAddress accepts an address with or without a 0x/0X prefix.
func ParseAddress(s string) (common.Address, error) {
	h := strip0x(strings.TrimSpace(s))
	if !common.IsHexAddress(h) {
		return common.Address{}, encodingErr("bad address %q", s)
	}
	return common.HexToAddress(h), nil
}
