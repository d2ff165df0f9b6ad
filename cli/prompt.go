// Package cli drives the interactive terminal session: menus, prompts and
// the book flows built on top of library.LibraryManager.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers line by line. Passwords are read without echo when
// the input is a terminal, and as plain lines otherwise.
type Prompter struct {
	sc  *bufio.Scanner
	out io.Writer
	fd  int
	tty bool
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{sc: bufio.NewScanner(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

func (p *Prompter) Printf(format string, args ...any) { fmt.Fprintf(p.out, format, args...) }
func (p *Prompter) Println(args ...any)               { fmt.Fprintln(p.out, args...) }

// Line prints prompt and returns the trimmed answer. io.EOF means the input
// is exhausted.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

// Password reads a secret. It is returned untrimmed apart from the line
// ending.
func (p *Prompter) Password(prompt string) (string, error) {
	if !p.tty {
		fmt.Fprint(p.out, prompt)
		if !p.sc.Scan() {
			if err := p.sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return strings.TrimRight(p.sc.Text(), "\r"), nil
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// Confirm asks a yes/no question until it gets y or n.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	for {
		answer, err := p.Line(prompt + " (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.Println("Please answer y or n.")
	}
}
