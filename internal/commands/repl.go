package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// REPLChannel is the channel name used for local REPL requests.
const REPLChannel = "draft-repl"

// RunREPL reads commands from in and writes replies to out until in is
// exhausted, ctx is cancelled or the user types quit, exit or q.
func RunREPL(ctx context.Context, p *Processor, in io.Reader, out io.Writer, user string) error {
	scanner := bufio.NewScanner(in)
	for {
		if _, err := fmt.Fprint(out, "> "); err != nil {
			return err
		}
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		}

		reply, handled := p.Handle(ctx, Request{
			User:        user,
			Channel:     REPLChannel,
			ChannelName: REPLChannel,
			Text:        line,
		})
		if !handled {
			reply = fmt.Sprintf("Unknown command. Try %s help", p.opts.Prefix)
		}
		if _, err := fmt.Fprintln(out, reply); err != nil {
			return err
		}
	}
}
