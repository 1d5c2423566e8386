package swapcore

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type rpcReq struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// CallRequest is the read-only call object for eth_call.
type CallRequest struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value,omitempty"`
}

// TransactionRequest is an unsigned transaction handed to the signer.
type TransactionRequest struct {
	From  string          `json:"from"`
	To    string          `json:"to"`
	Data  string          `json:"data"`
	Value string          `json:"value"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

// Receipt is the subset of a transaction receipt the orchestrator inspects.
// Raw keeps the node's full object.
type Receipt struct {
	Status          *hexutil.Uint64 `json:"status"`
	TransactionHash string          `json:"transactionHash,omitempty"`
	BlockNumber     *hexutil.Big    `json:"blockNumber,omitempty"`
	GasUsed         *hexutil.Uint64 `json:"gasUsed,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Succeeded is true only for status == 1.
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status != nil && uint64(*r.Status) == 1
}

func (r *Receipt) statusString() string {
	if r == nil || r.Status == nil {
		return "missing"
	}
	return r.Status.String()
}

// Block tag used for reads.
const blockLatest = "latest"

// Request ids per call site.
const (
	idChainID     = 1
	idEstimateGas = 42
	idReceiptBase = 1000
	idAllowance   = 2001
	idSend        = 3001
)
