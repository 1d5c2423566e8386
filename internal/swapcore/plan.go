package swapcore

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
)

// Plan holds the two unsigned transactions of a swap plus the parsed amounts.
// Building a plan touches no network, so encoding errors surface before any
// RPC is made.
type Plan struct {
	Approve       TransactionRequest
	Swap          TransactionRequest
	AmountIn      *uint256.Int
	ApproveAmount *uint256.Int
}

// BuildPlan encodes approve(executor, approveAmount) on TokenIn and the
// executor swap call, both from Owner.
func BuildPlan(c *Codec, p Params) (Plan, error) {
	p.applyDefaults()
	if c == nil {
		return Plan{}, encodingErr("nil codec")
	}
	amountIn, err := ParseQuantity(p.AmountIn)
	if err != nil {
		return Plan{}, fmt.Errorf("amountIn: %w", err)
	}
	approveAmount, err := ParseQuantity(p.ApproveAmount)
	if err != nil {
		return Plan{}, fmt.Errorf("approveAmount: %w", err)
	}
	approveData, err := c.ApproveData(AddressHex(p.Executor), p.ApproveAmount)
	if err != nil {
		return Plan{}, fmt.Errorf("approve calldata: %w", err)
	}
	swapData, err := c.SwapData(SwapArgs{
		TokenIn:  AddressHex(p.TokenIn),
		TokenOut: AddressHex(p.TokenOut),
		Fee:      p.Fee,
		AmountIn: p.AmountIn,
		MinOut:   p.MinOut,
	})
	if err != nil {
		return Plan{}, fmt.Errorf("swap calldata: %w", err)
	}
	from := AddressHex(p.Owner)
	return Plan{
		Approve:       TransactionRequest{From: from, To: AddressHex(p.TokenIn), Data: approveData, Value: "0x0"},
		Swap:          TransactionRequest{From: from, To: AddressHex(p.Executor), Data: swapData, Value: "0x0"},
		AmountIn:      amountIn,
		ApproveAmount: approveAmount,
	}, nil
}

// Preview is a plan evaluated against the chain without submitting anything.
type Preview struct {
	Plan
	ChainID      uint64
	Allowance    *uint256.Int // nil when the check failed
	NeedsApprove bool
	ApproveGas   uint64 // 0 when estimation failed
	SwapGas      uint64
}

// Preview builds the plan, reads the current allowance and estimates gas for
// both transactions. Only encoding errors are returned; read failures are
// logged and leave the corresponding field empty.
func (n *Node) Preview(ctx context.Context, p Params) (Preview, error) {
	p.applyDefaults()
	plan, err := BuildPlan(n.codec, p)
	if err != nil {
		return Preview{}, err
	}
	pv := Preview{Plan: plan, NeedsApprove: true}
	if id, err := n.ChainID(ctx); err != nil {
		p.logf("[warn] eth_chainId failed: %v", err)
	} else {
		pv.ChainID = id
	}
	if a, err := n.CheckAllowance(ctx, p.Owner, p.Executor, p.TokenIn); err != nil {
		p.logf("[warn] %v", err)
	} else {
		pv.Allowance = a
		pv.NeedsApprove = p.ApproveAlways || !SufficientFor(a, plan.AmountIn, p.CompareMode)
	}
	if g, err := n.EstimateGas(ctx, plan.Approve); err != nil {
		p.logf("[warn] approve estimateGas failed: %v", err)
	} else {
		pv.ApproveGas = g
	}
	// A swap estimate usually fails while the allowance is still missing.
	if g, err := n.EstimateGas(ctx, plan.Swap); err != nil {
		p.logf("[warn] swap estimateGas failed: %v", err)
	} else {
		pv.SwapGas = g
	}
	return pv, nil
}
