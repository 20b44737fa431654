package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

var _ ports.HumanInterface = (*TerminalInterface)(nil)

// TerminalInterface collects preference answers over stdin. Trajectory
// rendering is external to this tool; the prompt shows the trajectory
// identifiers so the operator can play them back in the simulator.
//
// Input is read on a dedicated goroutine so that a SIGINT delivered while
// the operator is idle at the prompt interrupts the session immediately
// instead of waiting for the next Enter. The reader goroutine may stay
// blocked in the final read after an interrupt; the process is about to
// save and exit, so it is never reaped.
type TerminalInterface struct {
	in    *bufio.Reader
	out   io.Writer
	lines chan lineResult
	once  sync.Once
}

type lineResult struct {
	text string
	err  error
}

// NewTerminalInterface creates a terminal-backed human interface.
func NewTerminalInterface(in io.Reader, out io.Writer) *TerminalInterface {
	return &TerminalInterface{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan lineResult),
	}
}

func (t *TerminalInterface) readLoop() {
	for {
		line, err := t.in.ReadString('\n')
		t.lines <- lineResult{text: line, err: err}
		if err != nil {
			return
		}
	}
}

// Ask implements ports.HumanInterface. It re-prompts on unrecognized
// input; "q", closed input, or context cancellation requests an interrupt.
func (t *TerminalInterface) Ask(ctx context.Context, query domain.Query) (domain.Answer, error) {
	t.once.Do(func() { go t.readLoop() })

	for {
		if query.Type == domain.QueryWeak {
			fmt.Fprintf(t.out, "A=%s B=%s | 1/2 to vote, 0 for \"About Equal\", q to quit: ",
				query.A.ID, query.B.ID)
		} else {
			fmt.Fprintf(t.out, "A=%s B=%s | 1/2 to vote, q to quit: ",
				query.A.ID, query.B.ID)
		}

		var line lineResult
		select {
		case <-ctx.Done():
			return 0, ports.ErrInterrupted
		case line = <-t.lines:
		}
		if line.err != nil {
			return 0, ports.ErrInterrupted
		}

		switch strings.ToLower(strings.TrimSpace(line.text)) {
		case "1":
			return domain.PreferA, nil
		case "2":
			return domain.PreferB, nil
		case "0":
			if query.Type == domain.QueryWeak {
				return domain.AboutEqual, nil
			}
		case "q":
			return 0, ports.ErrInterrupted
		}
	}
}
