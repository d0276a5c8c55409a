package notifier

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// CommandHandler is called for each line a user enters.
type CommandHandler func(ctx context.Context, command string) string

// RunConsole reads commands line by line until "exit"/"quit", EOF or ctx is
// cancelled, writing each reply to out.
func RunConsole(ctx context.Context, in io.Reader, out io.Writer, handler CommandHandler) error {
	sc := bufio.NewScanner(in)
	fmt.Fprintln(out, `Select a ticker symbol ("exit" to quit)`)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}

		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if isExit(text) {
			return nil
		}
		if reply := handler(ctx, text); reply != "" {
			fmt.Fprintln(out, reply)
		}
	}
}

func isExit(text string) bool {
	switch strings.ToLower(text) {
	case "exit", "quit":
		return true
	}
	return false
}
