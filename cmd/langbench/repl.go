package main

import (
	"bufio"
	"io"

	"github.com/chzyer/readline"
)

// newReadlineReader wires a GNU-readline-backed line reader for a real
// terminal, grounded on tunaq's InteractiveCommandReader (internal/input):
// history and line editing when attached to a tty, nothing fancier.
func newReadlineReader() (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt: "langbench> ",
	})
}

// bufioScanner returns a plain, non-interactive line reader for piped
// input, the same fallback tunaq's DirectCommandReader provides when
// stdin isn't a terminal.
func bufioScanner(r io.Reader) func() (string, error) {
	br := bufio.NewReader(r)
	return func() (string, error) {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		return line, nil
	}
}
