package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/ligun0805/swapflow/internal/config"
	core "github.com/ligun0805/swapflow/internal/swapcore"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	st := config.Load()

	planOnly := flag.Bool("plan", false, "build and print unsigned transactions, submit nothing")
	flag.StringVar(&st.RPCURL, "rpc", st.RPCURL, "JSON-RPC endpoint (ETH_RPC_URL)")
	flag.StringVar(&st.From, "from", st.From, "owner address (FROM)")
	flag.StringVar(&st.Executor, "executor", st.Executor, "executor address (EXECUTOR)")
	flag.StringVar(&st.TokenIn, "token-in", st.TokenIn, "input token (TOKEN_IN)")
	flag.StringVar(&st.TokenOut, "token-out", st.TokenOut, "output token (TOKEN_OUT)")
	flag.StringVar(&st.AmountInHex, "amount-in", st.AmountInHex, "amount in, hex (AMOUNT_IN_HEX)")
	flag.StringVar(&st.MinOutHex, "min-out", st.MinOutHex, "minimum out, hex (MIN_OUT_HEX)")
	flag.StringVar(&st.FeeHex, "fee", st.FeeHex, "pool fee, hex (FEE_HEX)")
	flag.StringVar(&st.ApprovePolicy, "approve", st.ApprovePolicy, "approve policy: gated|always (APPROVE_POLICY)")
	flag.BoolVar(&st.Verbose, "verbose", st.Verbose, "log every RPC request (VERBOSE)")
	flag.Parse()
	st.ApprovePolicy = strings.ToLower(strings.TrimSpace(st.ApprovePolicy))

	log := newLogger(st.Verbose)
	logf := func(format string, a ...any) { log.Info().Msgf(format, a...) }

	printConfig(st)
	p, err := st.Params()
	if err != nil {
		die(err.Error())
	}
	p.Logf = logf
	p.OnTransaction = func(step core.State, req core.TransactionRequest) {
		fmt.Printf("[%s] %s\n", step, requestJSON(req))
	}

	sel, _ := st.Selectors()
	codec, err := core.NewCodec(sel)
	if err != nil {
		die(err.Error())
	}
	gw := core.NewGateway(core.NewHTTPTransport(st.HTTPTimeout()), st.Verbose, logf)
	node := core.NewNode(st.RPCURL, gw, codec, logf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *planOnly {
		pctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		pv, err := node.Preview(pctx, p)
		if err != nil {
			die(err.Error())
		}
		printPreview(pv)
		return
	}

	res, err := core.Run(ctx, node, nil, p)
	printResult(res)
	if err != nil {
		var se *core.StepError
		if errors.As(err, &se) {
			fmt.Println("  reason:", friendlyRPCErr(se.Err))
		}
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func printConfig(st config.Settings) {
	fmt.Println("=== CONFIG (.env) ===")
	fmt.Println("ETH_RPC_URL       :", maskURL(st.RPCURL))
	fmt.Println("FROM              :", st.From)
	fmt.Println("EXECUTOR          :", st.Executor)
	fmt.Println("TOKEN_IN          :", st.TokenIn)
	fmt.Println("TOKEN_OUT         :", st.TokenOut)
	fmt.Println("FEE_HEX           :", st.FeeHex)
	fmt.Println("AMOUNT_IN_HEX     :", st.AmountInHex, "("+formatQuantity(st.AmountInHex)+")")
	fmt.Println("MIN_OUT_HEX       :", st.MinOutHex)
	if st.ApproveAmountHex != "" {
		fmt.Println("APPROVE_AMOUNT_HEX:", st.ApproveAmountHex)
	}
	fmt.Println("Selectors         :", st.ApproveSelector, st.AllowanceSelector, swapSelectorLabel(st))
	fmt.Println("Approve policy    :", st.ApprovePolicy, "| recheck:", st.RecheckAfter, "| compare:", st.CompareMode)
	fmt.Println("Receipt polling   :", st.ReceiptAttempts, "x", st.ReceiptIntervalMS, "ms")
	fmt.Println("Attach gas        :", st.AttachGas, "| buffer:", st.GasBufferPct, "%")
	fmt.Println("=====================")
}

func swapSelectorLabel(st config.Settings) string {
	if st.SwapSignature == "" {
		return st.SwapSelector
	}
	sel, err := st.Selectors()
	if err != nil {
		return "invalid (" + st.SwapSignature + ")"
	}
	return sel.Swap + " <- " + st.SwapSignature
}

func printResult(res core.Result) {
	if res.Status == core.StatusDone {
		fmt.Println("[RESULT] Done")
	} else {
		fmt.Printf("[RESULT] Failed step=%s reason=%s\n", res.FailedStep, res.Reason)
	}
	if res.ApproveSkipped {
		fmt.Println("  approve : skipped (allowance sufficient)")
	} else if res.ApproveTx != nil {
		fmt.Println("  approve :", res.ApproveTx.Hex(), receiptLine(res.ApproveReceipt))
	}
	if res.SwapTx != nil {
		fmt.Println("  swap    :", res.SwapTx.Hex(), receiptLine(res.SwapReceipt))
	}
	fmt.Println("  trail   :", joinStates(res.Trail))
}
