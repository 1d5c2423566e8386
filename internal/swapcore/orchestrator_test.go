package swapcore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario wires a fake node: eth_call answers allowances in order, the n-th
// submitted transaction mines with statuses[n] ("" never mines).
type scenario struct {
	allowances []any
	statuses   []string
	sendErr    *RPCError
}

func (s scenario) build(t *testing.T) (*Node, *fakeNode) {
	t.Helper()
	f := newFakeNode().on("eth_chainId", result("0xaa36a7"))
	if len(s.allowances) > 0 {
		f.on("eth_call", sequence(s.allowances...))
	}
	f.on("eth_sendTransaction", func(_ []json.RawMessage, n int) (any, *RPCError) {
		if s.sendErr != nil {
			return nil, s.sendErr
		}
		return txHash(n + 1), nil
	})
	byHash := map[string]string{}
	for i, st := range s.statuses {
		byHash[txHash(i+1)] = st
	}
	f.on("eth_getTransactionReceipt", func(params []json.RawMessage, _ int) (any, *RPCError) {
		var h string
		require.NoError(t, json.Unmarshal(params[0], &h))
		if st := byHash[h]; st != "" {
			return receiptWithStatus(st), nil
		}
		return nil, nil
	})
	return newTestNode(t, f), f
}

func testParams() Params {
	return Params{
		Owner:           testOwner,
		Executor:        testExecutor,
		TokenIn:         testTokenIn,
		TokenOut:        testTokenOut,
		Fee:             "0xbb8",
		AmountIn:        "0x0f4240",
		MinOut:          "0x0",
		ReceiptAttempts: 3,
		ReceiptInterval: time.Millisecond,
	}
}

func TestRunSkipsApproveWhenAllowanceSufficient(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(2_000_000)}, statuses: []string{"0x1"}}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.True(t, res.ApproveSkipped)
	assert.Nil(t, res.ApproveTx)
	assert.Equal(t, []State{
		StateStart, StateCheckAllowance, StateSkipApprove,
		StateSubmitSwap, StateSwapPending, StateSwapMined, StateDone,
	}, res.Trail)

	sent := f.sent(t)
	require.Len(t, sent, 1)
	assert.Equal(t, AddressHex(testExecutor), sent[0].To)
	assert.True(t, isSelector(sent[0].Data, DefaultSelectors().Swap))
}

func TestRunApprovesThenSwaps(t *testing.T) {
	n, f := scenario{
		allowances: []any{allowanceWord(500_000), allowanceWord(1_000_000)},
		statuses:   []string{"0x1", "0x1"},
	}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, []State{
		StateStart, StateCheckAllowance,
		StateSubmitApprove, StateApprovePending, StateApproveMined, StateReCheckAllowance,
		StateSubmitSwap, StateSwapPending, StateSwapMined, StateDone,
	}, res.Trail)
	require.NotNil(t, res.ApproveTx)
	require.NotNil(t, res.SwapTx)
	assert.Equal(t, txHash(1), res.ApproveTx.Hex())
	assert.Equal(t, txHash(2), res.SwapTx.Hex())

	sent := f.sent(t)
	require.Len(t, sent, 2)
	assert.Equal(t, AddressHex(testTokenIn), sent[0].To)
	assert.True(t, isSelector(sent[0].Data, DefaultSelectors().Approve))
	assert.Equal(t, AddressHex(testExecutor), sent[1].To)
	assert.True(t, isSelector(sent[1].Data, DefaultSelectors().Swap))
	assert.Equal(t, 2, f.count("eth_call"))
}

func TestRunNeverSwapsAfterRevertedApprove(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(0)}, statuses: []string{"0x0"}}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.ErrorIs(t, err, ErrReceiptReverted)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StateApproveReverted, se.Step)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, StateApproveReverted, res.FailedStep)
	assert.Equal(t, StateFailed, res.Trail[len(res.Trail)-1])
	assert.NotContains(t, res.Trail, StateSubmitSwap)
	assert.Len(t, f.sent(t), 1)
	assert.Nil(t, res.SwapTx)
}

func TestRunSwapReverted(t *testing.T) {
	n, _ := scenario{allowances: []any{allowanceWord(2_000_000)}, statuses: []string{"0x0"}}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.ErrorIs(t, err, ErrReceiptReverted)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, StateSwapReverted, res.FailedStep)
	require.NotNil(t, res.SwapReceipt)
	assert.False(t, res.SwapReceipt.Succeeded())
}

func TestRunApproveTimeout(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(0)}}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.ErrorIs(t, err, ErrReceiptTimeout)
	assert.Equal(t, StateApproveTimeout, res.FailedStep)
	assert.Len(t, f.sent(t), 1)
	assert.Equal(t, 3, f.count("eth_getTransactionReceipt"))
}

func TestRunSwapTimeout(t *testing.T) {
	n, _ := scenario{allowances: []any{allowanceWord(2_000_000)}}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.ErrorIs(t, err, ErrReceiptTimeout)
	assert.Equal(t, StateSwapTimeout, res.FailedStep)
	require.NotNil(t, res.SwapTx)
}

func TestRunAllowanceStillShortAfterApprove(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(0), allowanceWord(10)}, statuses: []string{"0x1"}}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.ErrorIs(t, err, ErrAllowanceCheckFailed)
	assert.Equal(t, StateReCheckAllowance, res.FailedStep)
	assert.Len(t, f.sent(t), 1)
	assert.Equal(t, uint64(10), res.Allowance.Uint64())
}

func TestRunAllowanceCheckFails(t *testing.T) {
	n, f := scenario{allowances: []any{"0x"}}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.ErrorIs(t, err, ErrAllowanceCheckFailed)
	assert.ErrorIs(t, err, ErrProtocol)
	assert.Equal(t, StateCheckAllowance, res.FailedStep)
	assert.Empty(t, f.sent(t))
}

func TestRunApproveAlways(t *testing.T) {
	n, f := scenario{statuses: []string{"0x1", "0x1"}}.build(t)
	p := testParams()
	p.ApproveAlways = true
	p.SkipRecheck = true

	res, err := Run(context.Background(), n, nil, p)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.NotContains(t, res.Trail, StateCheckAllowance)
	assert.NotContains(t, res.Trail, StateReCheckAllowance)
	assert.Zero(t, f.count("eth_call"))
	assert.Len(t, f.sent(t), 2)
}

func TestRunApproveAlwaysWithRecheck(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(1_000_000)}, statuses: []string{"0x1", "0x1"}}.build(t)
	p := testParams()
	p.ApproveAlways = true

	res, err := Run(context.Background(), n, nil, p)
	require.NoError(t, err)
	assert.Contains(t, res.Trail, StateReCheckAllowance)
	assert.Equal(t, 1, f.count("eth_call"))
}

func TestRunSubmissionRejected(t *testing.T) {
	n, f := scenario{
		allowances: []any{allowanceWord(0)},
		sendErr:    &RPCError{Code: -32000, Message: "unknown account"},
	}.build(t)

	res, err := Run(context.Background(), n, nil, testParams())
	require.ErrorIs(t, err, ErrSubmissionRejected)
	assert.Equal(t, StateSubmitApprove, res.FailedStep)
	assert.Nil(t, res.ApproveTx)
	assert.Equal(t, 1, f.count("eth_sendTransaction"))
	assert.Zero(t, f.count("eth_getTransactionReceipt"))
}

func TestRunBadAmountFailsBeforeAnyRPC(t *testing.T) {
	n, f := scenario{}.build(t)
	p := testParams()
	p.AmountIn = "0xnothex"

	res, err := Run(context.Background(), n, nil, p)
	require.ErrorIs(t, err, ErrEncoding)
	assert.Equal(t, StateStart, res.FailedStep)
	assert.Empty(t, f.calls)
}

type recordingSigner struct {
	reqs []TransactionRequest
}

func (s *recordingSigner) Submit(_ context.Context, req TransactionRequest) (common.Hash, error) {
	s.reqs = append(s.reqs, req)
	return common.HexToHash(txHash(len(s.reqs))), nil
}

func TestRunUsesInjectedSigner(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(0), allowanceWord(1_000_000)}, statuses: []string{"0x1", "0x1"}}.build(t)
	signer := &recordingSigner{}

	res, err := Run(context.Background(), n, signer, testParams())
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	require.Len(t, signer.reqs, 2)
	assert.Zero(t, f.count("eth_sendTransaction"))
	assert.Equal(t, AddressHex(testOwner), signer.reqs[0].From)
}

func TestRunAttachGasAndObserver(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(2_000_000)}, statuses: []string{"0x1"}}.build(t)
	f.on("eth_estimateGas", result("0x186a0")) // 100000
	p := testParams()
	p.AttachGas = true
	p.GasBufferPct = 10
	var seen []State
	var gas *hexutil.Uint64
	p.OnTransaction = func(step State, req TransactionRequest) {
		seen = append(seen, step)
		gas = req.Gas
	}

	_, err := Run(context.Background(), n, nil, p)
	require.NoError(t, err)
	assert.Equal(t, []State{StateSubmitSwap}, seen)
	require.NotNil(t, gas)
	assert.Equal(t, uint64(110_000), uint64(*gas))

	sent := f.sent(t)
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Gas)
	assert.Equal(t, uint64(110_000), uint64(*sent[0].Gas))
}

func TestRunEstimateFailureDoesNotAbort(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(2_000_000)}, statuses: []string{"0x1"}}.build(t)
	p := testParams()
	p.AttachGas = true

	res, err := Run(context.Background(), n, nil, p)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	require.Len(t, f.sent(t), 1)
	assert.Nil(t, f.sent(t)[0].Gas)
}

func TestPreview(t *testing.T) {
	n, f := scenario{allowances: []any{allowanceWord(0)}}.build(t)
	f.on("eth_estimateGas", result("0xb411"))

	pv, err := n.Preview(context.Background(), testParams())
	require.NoError(t, err)
	assert.Equal(t, uint64(11155111), pv.ChainID)
	assert.True(t, pv.NeedsApprove)
	assert.Equal(t, uint64(0xb411), pv.ApproveGas)
	assert.Equal(t, "1000000", pv.AmountIn.Dec())
	assert.True(t, isSelector(pv.Approve.Data, DefaultSelectors().Approve))
	assert.Zero(t, f.count("eth_sendTransaction"))
}
