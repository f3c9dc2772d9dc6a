//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"bufio"
	"io"
)

// Console implements the keyboard input and the display output of a
// process. Processes inherit the console of their parent.
type Console interface {
	// ReadByte reads one character of input. It returns io.EOF when
	// no more input is available.
	ReadByte() (byte, error)
	// Write writes the buffer to the display.
	Write(b []byte) (int, error)
}

// StreamConsole implements Console over an input reader and an output
// writer.
type StreamConsole struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a console reading input from in and writing
// output to out. A nil in gives an empty input.
func NewConsole(in io.Reader, out io.Writer) *StreamConsole {
	c := &StreamConsole{
		out: out,
	}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	return c
}

// ReadByte implements Console.ReadByte.
func (c *StreamConsole) ReadByte() (byte, error) {
	if c.in == nil {
		return 0, io.EOF
	}
	return c.in.ReadByte()
}

// Write implements Console.Write.
func (c *StreamConsole) Write(b []byte) (int, error) {
	if c.out == nil {
		return len(b), nil
	}
	return c.out.Write(b)
}

// NullConsole implements a console without input that discards all
// output.
type NullConsole struct {
}

// ReadByte implements Console.ReadByte.
func (c *NullConsole) ReadByte() (byte, error) {
	return 0, io.EOF
}

// Write implements Console.Write.
func (c *NullConsole) Write(b []byte) (int, error) {
	return len(b), nil
}
