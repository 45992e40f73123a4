package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure TerminalConfirm implements the interface.
var _ driven.ConfirmPolicy = (*TerminalConfirm)(nil)

// TerminalConfirm asks the user on a terminal. When input is not a
// terminal every request is denied.
type TerminalConfirm struct {
	in         *bufio.Reader
	out        io.Writer
	isTerminal func() bool
}

// NewTerminalConfirm creates a policy reading answers from in.
func NewTerminalConfirm(in io.Reader, out io.Writer) *TerminalConfirm {
	isTerminal := func() bool { return false }
	if f, ok := in.(*os.File); ok {
		isTerminal = func() bool { return term.IsTerminal(int(f.Fd())) }
	}
	return &TerminalConfirm{
		in:         bufio.NewReader(in),
		out:        out,
		isTerminal: isTerminal,
	}
}

// Confirm prompts for a decision. For citing sweeps a number answers with
// a cap.
func (c *TerminalConfirm) Confirm(ctx context.Context, req domain.ConfirmRequest) domain.Decision {
	deny := domain.Decision{Verdict: domain.Deny}
	if ctx.Err() != nil || !c.isTerminal() {
		return deny
	}

	switch req.Kind {
	case domain.ConfirmCiting:
		fmt.Fprintf(c.out, "%s is cited by %d works. Add them? [y/N/number] ", req.Subject, req.Count)
	case domain.ConfirmIterate:
		fmt.Fprintf(c.out, "Round %d found %d results. Expand and search again? [y/N] ",
			req.Completed, req.Count)
	default:
		return deny
	}

	answer, _ := c.in.ReadString('\n') //nolint:errcheck // EOF reads as no
	return parseDecision(answer, req.Kind == domain.ConfirmCiting)
}

// parseDecision reads y/yes as Allow and, when allowed, a positive number
// as Cap. Anything else denies.
func parseDecision(answer string, allowCap bool) domain.Decision {
	answer = strings.ToLower(strings.TrimSpace(answer))
	switch answer {
	case "y", "yes":
		return domain.Decision{Verdict: domain.Allow}
	}
	if allowCap {
		if n, err := strconv.Atoi(answer); err == nil && n > 0 {
			return domain.Decision{Verdict: domain.Cap, Limit: n}
		}
	}
	return domain.Decision{Verdict: domain.Deny}
}
