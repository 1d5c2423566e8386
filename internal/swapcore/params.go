package swapcore

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type Params struct {
	// Parties
	Owner    common.Address // wallet that holds TokenIn and signs
	Executor common.Address // spender and swap entry point
	TokenIn  common.Address
	TokenOut common.Address

	// Swap details, hex quantities (optional 0x)
	Fee           string
	AmountIn      string
	MinOut        string
	ApproveAmount string // defaults to AmountIn

	// Policy
	ApproveAlways bool // skip the pre-check and always approve
	SkipRecheck   bool // do not re-read allowance after a mined approval
	CompareMode   CompareMode

	// Receipt polling
	ReceiptAttempts int
	ReceiptInterval time.Duration

	// Gas passthrough
	AttachGas    bool
	GasBufferPct int64

	Logf          func(string, ...any)
	OnTransaction func(step State, req TransactionRequest)
}

func (p *Params) logf(format string, a ...any) {
	if p.Logf != nil {
		p.Logf(format, a...)
	}
}

func (p *Params) applyDefaults() {
	if p.ReceiptAttempts <= 0 {
		p.ReceiptAttempts = DefaultReceiptAttempts
	}
	if p.ReceiptInterval <= 0 {
		p.ReceiptInterval = DefaultReceiptInterval
	}
	if p.GasBufferPct < 0 {
		p.GasBufferPct = 0
	}
	if p.Fee == "" {
		p.Fee = "0x0"
	}
	if p.MinOut == "" {
		p.MinOut = "0x0"
	}
	if p.ApproveAmount == "" {
		p.ApproveAmount = p.AmountIn
	}
}

// Status is the terminal outcome of a run.
type Status string

const (
	StatusDone   Status = "Done"
	StatusFailed Status = "Failed"
)

type Result struct {
	Status     Status
	FailedStep State
	Reason     string
	Trail      []State

	Allowance      *uint256.Int // last allowance read, nil if never read
	ApproveSkipped bool
	ApproveTx      *common.Hash
	ApproveReceipt *Receipt
	SwapTx         *common.Hash
	SwapReceipt    *Receipt
}
