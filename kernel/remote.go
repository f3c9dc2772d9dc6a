//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/markkurossi/mpc/p2p"
)

// Remote run protocol messages. The client sends the command line and
// the console input. The server replies with any number of msgOutput
// messages followed by one msgExit or msgError message.
const (
	msgOutput byte = iota + 1
	msgExit
	msgError
)

// Serve accepts remote run connections from the listener until the
// context is canceled or the machine halts. Remote clients can run any
// program of the kernel. A client running a program that calls halt
// powers off the machine and terminates all other runs.
func (kern *Kernel) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		select {
		case <-ctx.Done():
		case <-kern.halted:
		}
		listener.Close()
	}()
	for {
		nc, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if kern.isHalted() {
				return ErrHalted
			}
			return err
		}
		kern.log.Debug("new connection", "remote", nc.RemoteAddr())
		go func() {
			err := kern.ServeConn(ctx, nc)
			if err != nil {
				kern.log.Warn("connection failed", "remote", nc.RemoteAddr(),
					"error", err)
			}
		}()
	}
}

// ServeConn serves one remote run request from the connection.
func (kern *Kernel) ServeConn(ctx context.Context, nc net.Conn) error {
	conn := p2p.NewConn(nc)
	defer conn.Close()

	cmdline, err := conn.ReceiveString()
	if err != nil {
		return err
	}
	input, err := conn.ReceiveData()
	if err != nil {
		return err
	}
	kern.log.Debug("remote run", "cmdline", cmdline, "input", len(input))

	console := NewRemoteConsole(conn, input)
	status, err := kern.Run(ctx, cmdline, console)
	console.Close()

	if err != nil {
		if err := conn.SendByte(msgError); err != nil {
			return err
		}
		if err := conn.SendString(err.Error()); err != nil {
			return err
		}
		return conn.Flush()
	}
	if err := conn.SendByte(msgExit); err != nil {
		return err
	}
	if err := conn.SendUint32(int(uint32(status))); err != nil {
		return err
	}
	return conn.Flush()
}

// RemoteConsole implements a console over a remote run connection. The
// console input is received with the request. Output written after the
// console is closed is discarded.
type RemoteConsole struct {
	m      sync.Mutex
	conn   *p2p.Conn
	in     *bytes.Reader
	closed bool
	err    error
}

// NewRemoteConsole creates a remote console for the connection and
// input.
func NewRemoteConsole(conn *p2p.Conn, input []byte) *RemoteConsole {
	return &RemoteConsole{
		conn: conn,
		in:   bytes.NewReader(input),
	}
}

// ReadByte implements Console.ReadByte.
func (c *RemoteConsole) ReadByte() (byte, error) {
	c.m.Lock()
	defer c.m.Unlock()
	return c.in.ReadByte()
}

// Write implements Console.Write.
func (c *RemoteConsole) Write(b []byte) (int, error) {
	c.m.Lock()
	defer c.m.Unlock()

	if c.closed || c.err != nil {
		return len(b), nil
	}
	c.err = c.conn.SendByte(msgOutput)
	if c.err == nil {
		c.err = c.conn.SendData(b)
	}
	if c.err == nil {
		c.err = c.conn.Flush()
	}
	if c.err != nil {
		return 0, c.err
	}
	return len(b), nil
}

// Close closes the console. It does not close the connection.
func (c *RemoteConsole) Close() error {
	c.m.Lock()
	defer c.m.Unlock()
	c.closed = true
	return c.err
}

// RemoteRun runs the command line on a remote kernel. The input is
// given to the process as its console input and the process output is
// written to out. RemoteRun returns the exit status of the process.
func RemoteRun(nc net.Conn, cmdline string, input []byte, out io.Writer) (
	int32, error) {

	conn := p2p.NewConn(nc)
	defer conn.Close()

	if err := conn.SendString(cmdline); err != nil {
		return -1, err
	}
	if err := conn.SendData(input); err != nil {
		return -1, err
	}
	if err := conn.Flush(); err != nil {
		return -1, err
	}
	for {
		tag, err := conn.ReceiveByte()
		if err != nil {
			return -1, err
		}
		switch tag {
		case msgOutput:
			data, err := conn.ReceiveData()
			if err != nil {
				return -1, err
			}
			if _, err := out.Write(data); err != nil {
				return -1, err
			}

		case msgExit:
			v, err := conn.ReceiveUint32()
			if err != nil {
				return -1, err
			}
			return int32(uint32(v)), nil

		case msgError:
			msg, err := conn.ReceiveString()
			if err != nil {
				return -1, err
			}
			return -1, errors.New(msg)

		default:
			return -1, fmt.Errorf("invalid message %d", tag)
		}
	}
}
