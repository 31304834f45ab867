package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// keyboard puts stdin into raw mode and delivers single key presses.
type keyboard struct {
	fd       int
	oldState *term.State
	keys     chan byte
}

func newKeyboard() (*keyboard, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}

	k := &keyboard{fd: fd, oldState: oldState, keys: make(chan byte, 16)}
	go k.read()
	return k, nil
}

// read blocks on stdin for the life of the process; the channel closes on
// EOF or a read error.
func (k *keyboard) read() {
	defer close(k.keys)
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			k.keys <- buf[0]
		}
	}
}

func (k *keyboard) Keys() <-chan byte {
	return k.keys
}

// Restore returns the terminal to its original mode.
func (k *keyboard) Restore() {
	if k.oldState != nil {
		_ = term.Restore(k.fd, k.oldState)
		k.oldState = nil
	}
}
