// Package console reads user input line by line and renders the menu
// screens.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/gwillem/finch/pkg/command"
)

const clearScreen = "\033[H\033[2J"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Console is a line-oriented prompt over a reader and a writer.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	ctx         context.Context

	pumpOnce sync.Once
	lines    chan lineRead
}

type lineRead struct {
	text string
	err  error
}

// Option configures a Console.
type Option func(*Console)

// WithInteractive enables screen clearing and "press Enter" pauses.
func WithInteractive(on bool) Option {
	return func(c *Console) { c.interactive = on }
}

// WithContext makes every read return ctx.Err() once ctx is done, even
// while waiting for input.
func WithContext(ctx context.Context) Option {
	return func(c *Console) { c.ctx = ctx }
}

// New returns a non-interactive console unless configured otherwise.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:    bufio.NewReader(in),
		out:   out,
		ctx:   context.Background(),
		lines: make(chan lineRead),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewStd returns a console on stdin/stdout, interactive when stdin is a
// terminal. Reads stop when ctx is done.
func NewStd(ctx context.Context) *Console {
	return New(os.Stdin, os.Stdout, WithInteractive(IsTerminal(os.Stdin)), WithContext(ctx))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Out returns the writer the console prints to.
func (c *Console) Out() io.Writer {
	return c.out
}

// Interactive reports whether pauses and screen clearing are enabled.
func (c *Console) Interactive() bool {
	return c.interactive
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) Println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// Error prints msg highlighted as an error.
func (c *Console) Error(msg string) {
	fmt.Fprintln(c.out, errorStyle.Render(msg))
}

// Clear wipes the terminal in interactive mode.
func (c *Console) Clear() {
	if c.interactive {
		fmt.Fprint(c.out, clearScreen)
	}
}

// Header starts a new screen titled title.
func (c *Console) Header(title string) {
	c.Clear()
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "\t\t"+headerStyle.Render(title))
	fmt.Fprintln(c.out)
}

// Pause waits for Enter in interactive mode.
func (c *Console) Pause() error {
	if !c.interactive {
		return nil
	}
	fmt.Fprintln(c.out)
	return c.WaitForUser(dimStyle.Render("Press Enter to continue."))
}

// WaitForUser prints prompt and, in interactive mode, waits for Enter.
func (c *Console) WaitForUser(prompt string) error {
	fmt.Fprintln(c.out, prompt)
	if !c.interactive {
		return nil
	}
	_, err := c.readLine()
	return err
}

// pump reads one line ahead of the caller so a read can give up when the
// context ends. It stops after the first read error.
func (c *Console) pump() {
	for {
		text, err := c.in.ReadString('\n')
		if err == io.EOF && text != "" {
			err = nil
		}
		c.lines <- lineRead{text: strings.TrimRight(text, "\r\n"), err: err}
		if err != nil {
			close(c.lines)
			return
		}
	}
}

func (c *Console) readLine() (string, error) {
	if err := c.ctx.Err(); err != nil {
		return "", err
	}
	c.pumpOnce.Do(func() { go c.pump() })

	select {
	case <-c.ctx.Done():
		return "", c.ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// ReadLine prints prompt and returns the next input line. It fails only
// when input is exhausted or the context is done.
func (c *Console) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	return c.readLine()
}

// ReadInt prompts until the input is a 32-bit base-10 integer. Zero and
// negative values are accepted; no other range is enforced. Errors come
// only from running out of input or the context ending.
func (c *Console) ReadInt(prompt string) (int, error) {
	for {
		line, err := c.ReadLine(prompt)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		if convErr == nil {
			return int(n), nil
		}
		c.Error("Input Invalid. Try Again.")
		if err := c.Pause(); err != nil {
			return 0, err
		}
	}
}

// ReadSequence reads exactly count commands, one per line. Input is
// uppercased before parsing and anything unparsable becomes command.Done.
// The captured sequence is echoed back.
func (c *Console) ReadSequence(count int) (command.Sequence, error) {
	if count < 0 {
		count = 0
	}
	seq := make(command.Sequence, count)
	for i := range seq {
		line, err := c.ReadLine(fmt.Sprintf("Command %d: ", i+1))
		if err != nil {
			return nil, err
		}
		seq[i], _ = command.Parse(strings.ToUpper(line))
	}

	fmt.Fprintln(c.out)
	c.ShowSequence(seq)
	return seq, nil
}

// ShowSequence lists seq as "Command i: NAME".
func (c *Console) ShowSequence(seq command.Sequence) {
	fmt.Fprintln(c.out, "The Commands:")
	for i, cmd := range seq {
		fmt.Fprintf(c.out, "Command %d: %s\n", i+1, cmd)
	}
}
