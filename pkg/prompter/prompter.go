package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrInvalidSelection is returned when a menu answer is out of range
var ErrInvalidSelection = errors.New("invalid selection")

// Prompter reads answers from in and writes questions to out
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	fd          int
	tty         bool
	interactive bool
}

// New returns a prompter over arbitrary streams. Passwords are read as plain lines.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok {
		p.fd = int(f.Fd())
		p.tty = term.IsTerminal(p.fd)
	}
	p.interactive = p.tty
	return p
}

var std = New(os.Stdin, os.Stdout)

// Default returns the prompter bound to the terminal
func Default() *Prompter {
	return std
}

// IsInteractive reports whether input comes from a terminal
func (p *Prompter) IsInteractive() bool {
	return p.interactive
}

// SetInteractive overrides terminal detection, for scripted sessions.
// Passwords are still read as plain lines unless in is a real terminal.
func (p *Prompter) SetInteractive(v bool) *Prompter {
	p.interactive = v
	return p
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// String prompts for a single line
func (p *Prompter) String(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password prompts without echoing when attached to a terminal
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprint(p.out, label)

	if !p.tty {
		return p.readLine()
	}

	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *Prompter) Confirm(label string) (bool, error) {
	fmt.Fprint(p.out, label+" (y/n) ")
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Select shows a numbered menu and returns the chosen index
func (p *Prompter) Select(label string, options []string) (int, error) {
	fmt.Fprintln(p.out, label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "%d) %s\n", i+1, opt)
	}

	fmt.Fprint(p.out, "Select option: ")
	line, err := p.readLine()
	if err != nil {
		return -1, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(options) {
		return -1, ErrInvalidSelection
	}
	return n - 1, nil
}

// Multiline reads lines until an empty line or EOF
func (p *Prompter) Multiline(label string) (string, error) {
	fmt.Fprintf(p.out, "%s (finish with an empty line):\n", label)

	var lines []string
	for {
		line, err := p.in.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" && (err == nil || errors.Is(err, io.EOF)) {
			break
		}
		lines = append(lines, trimmed)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
	}
	return strings.Join(lines, "\n"), nil
}

// ReadAll consumes the rest of the input, for bodies piped on stdin
func (p *Prompter) ReadAll() (string, error) {
	b, err := io.ReadAll(p.in)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}
