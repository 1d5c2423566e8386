package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	core "github.com/ligun0805/swapflow/internal/swapcore"
)

func maskHex(h string) string {
	h = strings.TrimSpace(h)
	if len(h) <= 10 {
		return "***"
	}
	return h[:6] + "…" + h[len(h)-4:]
}

// maskURL hides API keys carried in the path or query of provider URLs.
func maskURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return maskHex(raw)
	}
	out := u.Scheme + "://" + u.Host
	if p := strings.Trim(u.Path, "/"); p != "" {
		parts := strings.Split(p, "/")
		last := parts[len(parts)-1]
		if len(last) >= 16 {
			parts[len(parts)-1] = maskHex(last)
		}
		out += "/" + strings.Join(parts, "/")
	}
	if u.RawQuery != "" {
		out += "?***"
	}
	return out
}

func requestJSON(req core.TransactionRequest) string {
	b, err := json.Marshal(req)
	if err != nil {
		return fmt.Sprintf("%+v", req)
	}
	return string(b)
}

func receiptLine(r *core.Receipt) string {
	if r == nil {
		return "(no receipt)"
	}
	s := "status=missing"
	if r.Status != nil {
		s = "status=" + r.Status.String()
	}
	if r.BlockNumber != nil {
		s += " block=" + r.BlockNumber.ToInt().String()
	}
	if r.GasUsed != nil {
		s += fmt.Sprintf(" gasUsed=%d", uint64(*r.GasUsed))
	}
	return s
}

func joinStates(ss []core.State) string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.String()
	}
	return strings.Join(out, " -> ")
}

// die prints an error and waits for Enter before exiting when attached to a
// console, so double-click runs on Windows do not close instantly.
func die(message string) {
	fmt.Fprintln(os.Stderr, "Error:", message)
	if isInteractive() {
		fmt.Fprint(os.Stderr, "Exit now? Press Enter to close...")
		_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')
	}
	os.Exit(1)
}

// formatQuantity renders a hex quantity in decimal for the config block.
func formatQuantity(hexQty string) string {
	q, err := core.ParseQuantity(hexQty)
	if err != nil {
		return "invalid"
	}
	return q.Dec()
}
