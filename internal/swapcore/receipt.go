package swapcore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultReceiptAttempts = 40
	DefaultReceiptInterval = 300 * time.Millisecond
)

// WaitForReceipt polls eth_getTransactionReceipt until the receipt appears or
// maxAttempts polls have come back empty. Failed polls count as attempts.
func (n *Node) WaitForReceipt(ctx context.Context, hash common.Hash, maxAttempts int, interval time.Duration) (*Receipt, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultReceiptAttempts
	}
	if interval < 0 {
		interval = DefaultReceiptInterval
	}
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, interval); err != nil {
				return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
			}
		}
		res, err := n.gw.Call(ctx, n.Endpoint, "eth_getTransactionReceipt", []any{hash.Hex()}, idReceiptBase+attempt)
		if err != nil {
			lastErr = err
			n.log("[receipt] attempt %d/%d: %v", attempt+1, maxAttempts, err)
			continue
		}
		if isNull(res) {
			continue
		}
		rcpt := new(Receipt)
		if err := json.Unmarshal(res, rcpt); err != nil {
			return nil, protocolErr("receipt %s: %v", hash.Hex(), err)
		}
		rcpt.Raw = append(json.RawMessage(nil), res...)
		n.log("[receipt] %s mined after %d attempt(s), status=%s", hash.Hex(), attempt+1, rcpt.statusString())
		return rcpt, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s after %d attempts (last error: %v)", ErrReceiptTimeout, hash.Hex(), maxAttempts, lastErr)
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrReceiptTimeout, hash.Hex(), maxAttempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
