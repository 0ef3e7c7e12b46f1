package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/illarion/passvault/internal/crypto"
)

// Console is the shell's line source and output
type Console interface {
	io.Writer
	ReadLine(prompt string) (string, error)
	// ReadPassword reads without echo; the caller wipes the result
	ReadPassword(prompt string) ([]byte, error)
	Close() error
}

// completer is called on tab with the line so far
type completer func(line string) []string

// NewConsole returns a line-editing terminal console when stdin and stdout
// are terminals, and a plain line reader otherwise
func NewConsole(env *Env, complete completer) (Console, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) && term.IsTerminal(int(os.Stdout.Fd())) {
		return newTermConsole(fd, complete)
	}
	return &plainConsole{r: env.stdin, w: os.Stdout}, nil
}

type plainConsole struct {
	r *bufio.Reader
	w io.Writer
}

func (c *plainConsole) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

func (c *plainConsole) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.w, prompt)
	return readLine(c.r)
}

func (c *plainConsole) ReadPassword(prompt string) ([]byte, error) {
	line, err := c.ReadLine(prompt)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (c *plainConsole) Close() error {
	return nil
}

// termConsole runs x/term's line editor (history, tab completion) over a
// raw-mode stdin
type termConsole struct {
	fd    int
	state *term.State
	t     *term.Terminal
}

func newTermConsole(fd int, complete completer) (*termConsole, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}
	c := &termConsole{
		fd:    fd,
		state: state,
		t: term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}, ""),
	}
	c.t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' || pos != len(line) {
			return "", 0, false
		}
		candidates := complete(line)
		if len(candidates) == 0 {
			return "", 0, false
		}
		// the terminal is locked during the callback, so ambiguous
		// candidates cannot be listed here
		completed := completeLine(line, candidates)
		if completed == line {
			return "", 0, false
		}
		return completed, len(completed), true
	}
	return c, nil
}

func (c *termConsole) Write(p []byte) (int, error) {
	return c.t.Write(p)
}

func (c *termConsole) ReadLine(prompt string) (string, error) {
	c.t.SetPrompt(prompt)
	return c.t.ReadLine()
}

// ReadPassword leaves raw mode so term.ReadPassword can return a byte slice
// that never passes through the line editor's history
func (c *termConsole) ReadPassword(prompt string) ([]byte, error) {
	if err := term.Restore(c.fd, c.state); err != nil {
		return nil, err
	}
	fmt.Fprint(os.Stdout, prompt)
	password, readErr := term.ReadPassword(c.fd)
	fmt.Fprintln(os.Stdout)

	state, err := term.MakeRaw(c.fd)
	if err != nil {
		crypto.ClearBytes(password)
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}
	c.state = state
	if readErr != nil {
		return nil, fmt.Errorf("failed to read password: %w", readErr)
	}
	return password, nil
}

func (c *termConsole) Close() error {
	return term.Restore(c.fd, c.state)
}
