package main

import (
	"errors"
	"strings"

	core "github.com/ligun0805/swapflow/internal/swapcore"
)

// friendlyRPCErr normalizes common node errors for readable CLI output.
func friendlyRPCErr(err error) string {
	if err == nil {
		return ""
	}
	var rpcErr *core.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case -32601:
			return "eth_sendTransaction not supported by node (no unlocked account?)"
		case 4001:
			return "rejected by wallet"
		}
	}
	s := err.Error()
	ls := strings.ToLower(s)
	switch {
	case strings.Contains(ls, "unknown account"), strings.Contains(ls, "authentication needed"):
		return "FROM is not an unlocked account on this node"
	case strings.Contains(ls, "insufficient funds for gas"):
		return "insufficient ETH for gas"
	case strings.Contains(ls, "execution reverted"):
		return "call reverted on estimation: " + s
	case strings.Contains(ls, "invalid character '<'"):
		return "non-JSON/HTML response (proxy/cf?)"
	case strings.Contains(ls, "dial tcp"), strings.Contains(ls, "lookup "):
		return "network/DNS error"
	case errors.Is(err, core.ErrReceiptTimeout):
		return "no receipt yet; the transaction may still be mined, check it before retrying"
	}
	return s
}
