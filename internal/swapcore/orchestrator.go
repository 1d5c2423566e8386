package swapcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type run struct {
	node   *Node
	signer Signer
	p      Params
	res    Result
}

// Run drives approve-then-swap to Done or Failed. A nil signer submits through
// the node's unlocked account. The error is nil iff the result is Done; on
// failure it is a *StepError naming the step that failed.
//
// No transaction is submitted after one that failed or was not confirmed.
func Run(ctx context.Context, node *Node, signer Signer, p Params) (Result, error) {
	if signer == nil {
		signer = node
	}
	p.applyDefaults()
	r := &run{node: node, signer: signer, p: p}
	r.enter(StateStart)

	if node == nil {
		return r.fail(StateStart, errors.New("nil node"))
	}
	plan, err := BuildPlan(node.Codec(), p)
	if err != nil {
		return r.fail(StateStart, err)
	}
	p.logf("owner=%s executor=%s tokenIn=%s tokenOut=%s amountIn=%s policy=%s compare=%s",
		AddressHex(p.Owner), AddressHex(p.Executor), AddressHex(p.TokenIn), AddressHex(p.TokenOut),
		plan.AmountIn.Dec(), policyName(p.ApproveAlways), p.CompareMode)

	if id, err := node.ChainID(ctx); err != nil {
		p.logf("[warn] eth_chainId failed: %v", err)
	} else {
		p.logf("chainId=%d", id)
	}

	needApprove := true
	if !p.ApproveAlways {
		r.enter(StateCheckAllowance)
		ok, err := r.allowanceCovers(ctx, plan)
		if err != nil {
			return r.fail(StateCheckAllowance, err)
		}
		if ok {
			r.enter(StateSkipApprove)
			r.res.ApproveSkipped = true
			needApprove = false
			p.logf("[allowance] %s >= %s, approve skipped", r.res.Allowance.Dec(), plan.AmountIn.Dec())
		}
	}

	if needApprove {
		hash, rcpt, serr := r.submitAndConfirm(ctx, approvePhase, plan.Approve)
		r.res.ApproveTx, r.res.ApproveReceipt = hash, rcpt
		if serr != nil {
			return r.failed(serr)
		}
		if !p.SkipRecheck {
			r.enter(StateReCheckAllowance)
			ok, err := r.allowanceCovers(ctx, plan)
			if err != nil {
				return r.fail(StateReCheckAllowance, err)
			}
			if !ok {
				return r.fail(StateReCheckAllowance, fmt.Errorf("%w: allowance %s still below amount %s after approval",
					ErrAllowanceCheckFailed, r.res.Allowance.Dec(), plan.AmountIn.Dec()))
			}
		}
	}

	hash, rcpt, serr := r.submitAndConfirm(ctx, swapPhase, plan.Swap)
	r.res.SwapTx, r.res.SwapReceipt = hash, rcpt
	if serr != nil {
		return r.failed(serr)
	}
	r.enter(StateDone)
	r.res.Status = StatusDone
	return r.res, nil
}

func (r *run) enter(s State) {
	r.res.Trail = append(r.res.Trail, s)
	r.p.logf("[state] %s", s)
}

func (r *run) fail(step State, err error) (Result, error) {
	return r.failed(&StepError{Step: step, Err: err})
}

func (r *run) failed(se *StepError) (Result, error) {
	r.enter(StateFailed)
	r.res.Status = StatusFailed
	r.res.FailedStep = se.Step
	r.res.Reason = se.Err.Error()
	r.p.logf("[abort] %s: %v", se.Step, se.Err)
	return r.res, se
}

func (r *run) allowanceCovers(ctx context.Context, plan Plan) (bool, error) {
	a, err := r.node.CheckAllowance(ctx, r.p.Owner, r.p.Executor, r.p.TokenIn)
	if err != nil {
		return false, err
	}
	r.res.Allowance = a
	return SufficientFor(a, plan.AmountIn, r.p.CompareMode), nil
}

// submitAndConfirm submits req and polls for its receipt. A returned
// *StepError already carries the terminal state of the phase.
func (r *run) submitAndConfirm(ctx context.Context, ph phase, req TransactionRequest) (*common.Hash, *Receipt, *StepError) {
	r.enter(ph.submit)
	r.attachGas(ctx, ph, &req)
	if r.p.OnTransaction != nil {
		r.p.OnTransaction(ph.submit, req)
	}
	hash, err := r.signer.Submit(ctx, req)
	if err != nil {
		return nil, nil, &StepError{Step: ph.submit, Err: err}
	}
	r.p.logf("[%s] submitted tx=%s", ph.label, hash.Hex())

	r.enter(ph.pending)
	rcpt, err := r.node.WaitForReceipt(ctx, hash, r.p.ReceiptAttempts, r.p.ReceiptInterval)
	if err != nil {
		if errors.Is(err, ErrReceiptTimeout) {
			r.enter(ph.timeout)
			return &hash, nil, &StepError{Step: ph.timeout, Err: err}
		}
		return &hash, nil, &StepError{Step: ph.pending, Err: err}
	}
	if !rcpt.Succeeded() {
		r.enter(ph.reverted)
		return &hash, rcpt, &StepError{Step: ph.reverted, Err: fmt.Errorf("%w: %s tx %s status=%s", ErrReceiptReverted, ph.label, hash.Hex(), rcpt.statusString())}
	}
	r.enter(ph.mined)
	return &hash, rcpt, nil
}

// attachGas sets gas to the eth_estimateGas result plus GasBufferPct when
// AttachGas is on. Estimation failures only warn; the signer picks gas then.
func (r *run) attachGas(ctx context.Context, ph phase, req *TransactionRequest) {
	if !r.p.AttachGas {
		return
	}
	est, err := r.node.EstimateGas(ctx, *req)
	if err != nil {
		r.p.logf("[warn] %s estimateGas failed: %v", ph.label, err)
		return
	}
	r.p.logf("[%s] gasEstimate=%d bufferPct=%d", ph.label, est, r.p.GasBufferPct)
	g := hexutil.Uint64(est * uint64(100+r.p.GasBufferPct) / 100)
	req.Gas = &g
}

func policyName(always bool) string {
	if always {
		return "always"
	}
	return "gated"
}
