package swapcore

import (
	"fmt"
	"strings"
)

const (
	wordHexLen     = 64
	selectorHexLen = 8
)

// Selectors are the 4-byte function selectors the codec assembles calldata with.
// Values are 8 hex digits, with or without a 0x prefix.
type Selectors struct {
	Approve   string // approve(address,uint256)
	Allowance string // allowance(address,address)
	Swap      string // executor swap entry point
}

// DefaultSelectors returns the ERC-20 selectors and the swapExactInSingle
// selector of the reference executor deployment.
func DefaultSelectors() Selectors {
	return Selectors{
		Approve:   "095ea7b3",
		Allowance: "dd62ed3e",
		Swap:      "43ecfa0a",
	}
}

// SwapArgs are the executor swap parameters as hex strings, in ABI order.
type SwapArgs struct {
	TokenIn  string
	TokenOut string
	Fee      string
	AmountIn string
	MinOut   string
}

// Codec builds fixed-selector calldata.
type Codec struct {
	sel Selectors
}

// NewCodec validates the selectors and returns a codec bound to them.
func NewCodec(sel Selectors) (*Codec, error) {
	for _, s := range []struct{ name, hex string }{
		{"approve", sel.Approve}, {"allowance", sel.Allowance}, {"swap", sel.Swap},
	} {
		if _, err := normalizeSelector(s.hex); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return &Codec{sel: sel}, nil
}

func (c *Codec) Selectors() Selectors { return c.sel }

// ApproveData encodes approve(spender, amount).
func (c *Codec) ApproveData(spender, amount string) (string, error) {
	return EncodeCall(c.sel.Approve, spender, amount)
}

// AllowanceData encodes allowance(owner, spender).
func (c *Codec) AllowanceData(owner, spender string) (string, error) {
	return EncodeCall(c.sel.Allowance, owner, spender)
}

// SwapData encodes swapExactInSingle(tokenIn, tokenOut, fee, amountIn, minOut).
func (c *Codec) SwapData(a SwapArgs) (string, error) {
	return EncodeCall(c.sel.Swap, a.TokenIn, a.TokenOut, a.Fee, a.AmountIn, a.MinOut)
}

// EncodeWord left-pads a hex payload (optional 0x/0X) to a 32-byte word.
// Payloads wider than 32 bytes are rejected rather than truncated.
func EncodeWord(input string) (string, error) {
	h := strings.ToLower(strip0x(strings.TrimSpace(input)))
	if len(h) > wordHexLen {
		return "", encodingErr("parameter %q is %d hex digits, max %d", input, len(h), wordHexLen)
	}
	if !isHex(h) {
		return "", encodingErr("parameter %q is not hex", input)
	}
	return strings.Repeat("0", wordHexLen-len(h)) + h, nil
}

// EncodeCall assembles "0x" + selector + one word per parameter.
func EncodeCall(selector string, params ...string) (string, error) {
	sel, err := normalizeSelector(selector)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(2 + selectorHexLen + wordHexLen*len(params))
	b.WriteString("0x")
	b.WriteString(sel)
	for i, p := range params {
		w, err := EncodeWord(p)
		if err != nil {
			return "", fmt.Errorf("param %d: %w", i, err)
		}
		b.WriteString(w)
	}
	data := b.String()

	want := 2 + selectorHexLen + wordHexLen*len(params)
	if !strings.HasPrefix(data, "0x"+sel) || len(data) != want {
		return "", encodingErr("internal encoding defect: size=%d want=%d data=%s", len(data), want, data)
	}
	return data, nil
}

func normalizeSelector(s string) (string, error) {
	h := strings.ToLower(strip0x(strings.TrimSpace(s)))
	if len(h) != selectorHexLen || !isHex(h) {
		return "", encodingErr("selector %q must be %d hex digits", s, selectorHexLen)
	}
	return h, nil
}

func strip0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
