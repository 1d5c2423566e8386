package swapcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Signer takes an unsigned transaction, signs and broadcasts it, and returns
// its hash. Wallets, remote signing services and unlocked node accounts all
// fit behind it.
type Signer interface {
	Submit(ctx context.Context, req TransactionRequest) (common.Hash, error)
}

var _ Signer = (*Node)(nil)

// Submit hands req to the node's unlocked account via eth_sendTransaction.
// A rejection is returned as is and never retried: resubmitting could
// duplicate intent.
func (n *Node) Submit(ctx context.Context, req TransactionRequest) (common.Hash, error) {
	res, err := n.gw.Call(ctx, n.Endpoint, "eth_sendTransaction", []any{req}, idSend)
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return common.Hash{}, fmt.Errorf("%w: %w", ErrSubmissionRejected, rpcErr)
		}
		return common.Hash{}, err
	}
	var s string
	if err := json.Unmarshal(res, &s); err != nil {
		return common.Hash{}, protocolErr("eth_sendTransaction result is not a string: %s", truncate(string(res), 80))
	}
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, protocolErr("eth_sendTransaction result %q is not a 32-byte hash", truncate(s, 80))
	}
	return common.BytesToHash(b), nil
}
