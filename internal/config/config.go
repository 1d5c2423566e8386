package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ligun0805/swapflow/internal/swapcore"
)

// Sepolia defaults of the reference deployment.
const (
	DefaultTokenIn  = "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238" // USDC
	DefaultTokenOut = "0xfff9976782d46cc05630d1f6ebab18b2324d6b14" // WETH
)

// Settings keeps all configuration options. Keys are read in both
// lower_case and UPPER_CASE.
type Settings struct {
	RPCURL   string
	From     string
	Executor string
	TokenIn  string
	TokenOut string

	FeeHex           string
	AmountInHex      string
	MinOutHex        string
	ApproveAmountHex string // empty means AmountInHex

	ApproveSelector   string
	AllowanceSelector string
	SwapSelector      string
	SwapSignature     string // when set, the swap selector is derived from it

	ReceiptAttempts   int
	ReceiptIntervalMS int
	ApprovePolicy     string // gated | always
	RecheckAfter      bool
	CompareMode       string // full | u64
	AttachGas         bool
	GasBufferPct      int64
	HTTPTimeoutSec    int
	Verbose           bool
}

// Load reads settings from environment supporting both UPPER_CASE and lower_case keys.
func Load() Settings {
	get := func(keys []string, def string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				return v
			}
		}
		return def
	}
	getInt := func(keys []string, def int) int {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return def
	}
	getInt64 := func(keys []string, def int64) int64 {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return def
	}
	getBool := func(keys []string, def bool) bool {
		s := strings.ToLower(get(keys, ""))
		if s == "" {
			return def
		}
		return s == "1" || s == "true" || s == "yes" || s == "on"
	}

	st := Settings{}
	st.RPCURL = get([]string{"eth_rpc_url", "ETH_RPC_URL", "rpc_url", "RPC_URL"}, "")
	st.From = get([]string{"from", "FROM"}, "")
	st.Executor = get([]string{"executor", "EXECUTOR"}, "")
	st.TokenIn = get([]string{"token_in", "TOKEN_IN"}, DefaultTokenIn)
	st.TokenOut = get([]string{"token_out", "TOKEN_OUT"}, DefaultTokenOut)

	st.FeeHex = get([]string{"fee_hex", "FEE_HEX"}, "0xbb8")
	st.AmountInHex = get([]string{"amount_in_hex", "AMOUNT_IN_HEX"}, "0x0f4240")
	st.MinOutHex = get([]string{"min_out_hex", "MIN_OUT_HEX"}, "0x0")
	st.ApproveAmountHex = get([]string{"approve_amount_hex", "APPROVE_AMOUNT_HEX"}, "")

	def := swapcore.DefaultSelectors()
	st.ApproveSelector = get([]string{"approve_selector", "APPROVE_SELECTOR"}, def.Approve)
	st.AllowanceSelector = get([]string{"allowance_selector", "ALLOWANCE_SELECTOR"}, def.Allowance)
	st.SwapSelector = get([]string{"swap_selector", "SWAP_SELECTOR"}, def.Swap)
	st.SwapSignature = get([]string{"swap_signature", "SWAP_SIGNATURE"}, "")

	st.ReceiptAttempts = getInt([]string{"receipt_attempts", "RECEIPT_ATTEMPTS"}, swapcore.DefaultReceiptAttempts)
	st.ReceiptIntervalMS = getInt([]string{"receipt_interval_ms", "RECEIPT_INTERVAL_MS"}, int(swapcore.DefaultReceiptInterval/time.Millisecond))
	st.ApprovePolicy = strings.ToLower(get([]string{"approve_policy", "APPROVE_POLICY"}, "gated"))
	st.RecheckAfter = getBool([]string{"recheck_after_approve", "RECHECK_AFTER_APPROVE"}, true)
	st.CompareMode = strings.ToLower(get([]string{"compare_mode", "COMPARE_MODE"}, "full"))
	st.AttachGas = getBool([]string{"attach_gas", "ATTACH_GAS"}, false)
	st.GasBufferPct = getInt64([]string{"gas_buffer_pct", "GAS_BUFFER_PCT"}, 5)
	st.HTTPTimeoutSec = getInt([]string{"http_timeout_sec", "HTTP_TIMEOUT_SEC"}, 12)
	st.Verbose = getBool([]string{"verbose", "VERBOSE"}, false)

	return st
}

// Validate reports every missing or malformed required setting at once.
func (st Settings) Validate() error {
	var errs []error
	if st.RPCURL == "" {
		errs = append(errs, errors.New("ETH_RPC_URL is not set"))
	}
	for _, a := range []struct{ key, val string }{
		{"FROM", st.From}, {"EXECUTOR", st.Executor}, {"TOKEN_IN", st.TokenIn}, {"TOKEN_OUT", st.TokenOut},
	} {
		if a.val == "" {
			errs = append(errs, fmt.Errorf("%s is not set", a.key))
			continue
		}
		if _, err := swapcore.ParseAddress(a.val); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.key, err))
		}
	}
	for _, q := range []struct{ key, val string }{
		{"FEE_HEX", st.FeeHex}, {"AMOUNT_IN_HEX", st.AmountInHex}, {"MIN_OUT_HEX", st.MinOutHex}, {"APPROVE_AMOUNT_HEX", st.ApproveAmountHex},
	} {
		if q.val == "" && q.key == "APPROVE_AMOUNT_HEX" {
			continue
		}
		if _, err := swapcore.ParseQuantity(q.val); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", q.key, err))
		}
	}
	if st.ApprovePolicy != "gated" && st.ApprovePolicy != "always" {
		errs = append(errs, fmt.Errorf("APPROVE_POLICY must be gated or always, got %q", st.ApprovePolicy))
	}
	if st.CompareMode != "full" && st.CompareMode != "u64" {
		errs = append(errs, fmt.Errorf("COMPARE_MODE must be full or u64, got %q", st.CompareMode))
	}
	if _, err := st.Selectors(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Selectors returns the configured selectors. SWAP_SIGNATURE, when set, wins
// over SWAP_SELECTOR.
func (st Settings) Selectors() (swapcore.Selectors, error) {
	sel := swapcore.Selectors{Approve: st.ApproveSelector, Allowance: st.AllowanceSelector, Swap: st.SwapSelector}
	if st.SwapSignature != "" {
		s, err := swapcore.SelectorFor(st.SwapSignature)
		if err != nil {
			return sel, fmt.Errorf("SWAP_SIGNATURE: %w", err)
		}
		sel.Swap = s
	}
	if _, err := swapcore.NewCodec(sel); err != nil {
		return sel, fmt.Errorf("selectors: %w", err)
	}
	return sel, nil
}

// Params converts validated settings into run parameters.
func (st Settings) Params() (swapcore.Params, error) {
	if err := st.Validate(); err != nil {
		return swapcore.Params{}, err
	}
	addr := func(s string) common.Address {
		a, _ := swapcore.ParseAddress(s)
		return a
	}
	mode := swapcore.CompareFullWidth
	if st.CompareMode == "u64" {
		mode = swapcore.CompareTruncated64
	}
	return swapcore.Params{
		Owner:           addr(st.From),
		Executor:        addr(st.Executor),
		TokenIn:         addr(st.TokenIn),
		TokenOut:        addr(st.TokenOut),
		Fee:             st.FeeHex,
		AmountIn:        st.AmountInHex,
		MinOut:          st.MinOutHex,
		ApproveAmount:   st.ApproveAmountHex,
		ApproveAlways:   st.ApprovePolicy == "always",
		SkipRecheck:     !st.RecheckAfter,
		CompareMode:     mode,
		ReceiptAttempts: st.ReceiptAttempts,
		ReceiptInterval: time.Duration(st.ReceiptIntervalMS) * time.Millisecond,
		AttachGas:       st.AttachGas,
		GasBufferPct:    st.GasBufferPct,
	}, nil
}

// HTTPTimeout is the per-request timeout of the RPC transport.
func (st Settings) HTTPTimeout() time.Duration {
	if st.HTTPTimeoutSec <= 0 {
		return 12 * time.Second
	}
	return time.Duration(st.HTTPTimeoutSec) * time.Second
}
