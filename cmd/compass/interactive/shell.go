package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// Shell reads commands from the terminal and runs them in a Session.
type Shell struct {
	rl *readline.Instance
}

// NewShell creates the terminal shell.
func NewShell() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "compass> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("event"),
			readline.PcItem("alpha"),
			readline.PcItem("heading"),
			readline.PcItem("request"),
			readline.PcItem("grant"),
			readline.PcItem("deny"),
			readline.PcItem("undecided"),
			readline.PcItem("fail"),
			readline.PcItem("mode",
				readline.PcItem("ask"),
				readline.PcItem("granted"),
				readline.PcItem("denied"),
				readline.PcItem("default"),
				readline.PcItem("error"),
				readline.PcItem("hang"),
			),
			readline.PcItem("state"),
			readline.PcItem("watch", readline.PcItem("on"), readline.PcItem("off")),
			readline.PcItem("info"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{rl: rl}, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (sh *Shell) Stdout() io.Writer {
	return sh.rl.Stdout()
}

// Stderr returns a writer that coordinates with the prompt. Use it for
// log output.
func (sh *Shell) Stderr() io.Writer {
	return sh.rl.Stderr()
}

// Run reads commands until quit, EOF or ctx is done.
func (sh *Shell) Run(ctx context.Context, cancel context.CancelFunc, sess *Session) {
	defer sh.rl.Close()

	sess.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := sh.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(sh.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		if !sess.Exec(line) {
			cancel()
			return
		}
	}
}
