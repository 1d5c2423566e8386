package swapcore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// CompareMode selects how allowance and amount are compared.
type CompareMode int

const (
	// CompareFullWidth compares the full 256-bit quantities.
	CompareFullWidth CompareMode = iota
	// CompareTruncated64 compares only the low 64 bits of each side. Unsound
	// for quantities above 2^64-1; kept for parity with older deployments.
	CompareTruncated64
)

func (m CompareMode) String() string {
	if m == CompareTruncated64 {
		return "u64"
	}
	return "full"
}

// CheckAllowance reads allowance(owner, spender) on token at the latest block.
func (n *Node) CheckAllowance(ctx context.Context, owner, spender, token common.Address) (*uint256.Int, error) {
	data, err := n.codec.AllowanceData(AddressHex(owner), AddressHex(spender))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllowanceCheckFailed, err)
	}
	call := CallRequest{To: AddressHex(token), Data: data}
	res, err := n.gw.Call(ctx, n.Endpoint, "eth_call", []any{call, blockLatest}, idAllowance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllowanceCheckFailed, err)
	}
	n.log("[allowance] raw result: %s", truncate(string(res), 140))

	var s string
	if err := json.Unmarshal(res, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllowanceCheckFailed, protocolErr("eth_call result is not a hex string: %s", truncate(string(res), 80)))
	}
	out, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllowanceCheckFailed, protocolErr("eth_call result %q: %v", truncate(s, 80), err))
	}
	a, err := decodeAllowance(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllowanceCheckFailed, err)
	}
	return a, nil
}

// SufficientFor reports allowance >= amount (non-strict).
func SufficientFor(allowance, amount *uint256.Int, mode CompareMode) bool {
	if allowance == nil || amount == nil {
		return false
	}
	if mode == CompareTruncated64 {
		return allowance.Uint64() >= amount.Uint64()
	}
	return allowance.Cmp(amount) >= 0
}

// ParseQuantity parses a hex quantity of at most 32 bytes (optional 0x).
func ParseQuantity(s string) (*uint256.Int, error) {
	w, err := EncodeWord(s)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(w)
	if err != nil {
		return nil, encodingErr("quantity %q: %v", s, err)
	}
	return new(uint256.Int).SetBytes32(b), nil
}
