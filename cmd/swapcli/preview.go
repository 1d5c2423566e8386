package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	core "github.com/ligun0805/swapflow/internal/swapcore"
)

func printPreview(pv core.Preview) {
	fmt.Println("=== PLAN ===")
	if pv.ChainID != 0 {
		fmt.Println("chainId     :", pv.ChainID)
	}
	if pv.Allowance != nil {
		fmt.Println("allowance   :", pv.Allowance.Dec(), "| amountIn:", pv.AmountIn.Dec())
	} else {
		fmt.Println("allowance   : unknown | amountIn:", pv.AmountIn.Dec())
	}
	if pv.NeedsApprove {
		fmt.Println("\n-- approve (send first, wait for it to be mined) --")
		fmt.Println(requestJSON(pv.Approve))
		printGas(pv.ApproveGas)
		fmt.Println(walletSnippet(pv.Approve))
	} else {
		fmt.Println("\n-- approve: not needed --")
	}
	fmt.Println("\n-- swap --")
	fmt.Println(requestJSON(pv.Swap))
	printGas(pv.SwapGas)
	fmt.Println(walletSnippet(pv.Swap))
	fmt.Println("============")
}

func printGas(g uint64) {
	if g == 0 {
		fmt.Println("gas estimate: n/a")
		return
	}
	fmt.Println("gas estimate:", g)
}

// walletSnippet renders a browser console call that hands req to an injected
// wallet for signing.
func walletSnippet(req core.TransactionRequest) string {
	var b strings.Builder
	b.WriteString("await ethereum.request({method:'eth_sendTransaction', params:[{")
	fmt.Fprintf(&b, "from:'%s', to:'%s', data:'%s', value:'%s'", req.From, req.To, req.Data, req.Value)
	if req.Gas != nil {
		fmt.Fprintf(&b, ", gas:'%s'", req.Gas.String())
	}
	b.WriteString("}]})")
	return b.String()
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
