package swapcore

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	w3 "github.com/lmittmann/w3"
)

// Canonical signatures of the ERC-20 calls the codec knows about.
const (
	SigApprove   = "approve(address,uint256)"
	SigAllowance = "allowance(address,address)"
)

var funcAllowance = w3.MustNewFunc(SigAllowance, "uint256")

// SelectorFor derives the 4-byte selector of a Solidity signature,
// e.g. "swapExactInSingle(address,address,uint24,uint256,uint256)".
func SelectorFor(signature string) (string, error) {
	fn, err := w3.NewFunc(signature, "")
	if err != nil {
		return "", fmt.Errorf("%w: signature %q: %v", ErrEncoding, signature, err)
	}
	return hex.EncodeToString(fn.Selector[:]), nil
}

// VerifySelector reports whether selector is the selector of signature.
func VerifySelector(signature, selector string) (bool, error) {
	want, err := SelectorFor(signature)
	if err != nil {
		return false, err
	}
	got, err := normalizeSelector(selector)
	if err != nil {
		return false, err
	}
	return got == want, nil
}

// decodeAllowance decodes the uint256 return of allowance(address,address).
func decodeAllowance(out []byte) (*uint256.Int, error) {
	if len(out) < 32 {
		return nil, protocolErr("allowance returned %d bytes", len(out))
	}
	var v big.Int
	if err := funcAllowance.DecodeReturns(out, &v); err != nil {
		return nil, protocolErr("allowance decode: %v", err)
	}
	a, overflow := uint256.FromBig(&v)
	if overflow {
		return nil, protocolErr("allowance overflows 256 bits")
	}
	return a, nil
}
