//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package user

import (
	"fmt"

	"github.com/markkurossi/userprog/kernel"
)

// Halt powers off the machine.
func (env *Env) Halt() {
	env.Syscall(kernel.SysHalt)
	panic("halt returned")
}

// Exit terminates the process with the status.
func (env *Env) Exit(status int32) {
	env.Syscall(kernel.SysExit, uint32(status))
	panic("exit returned")
}

// Exec runs the command line in a child process and returns the child
// process ID or -1 on error.
func (env *Env) Exec(cmdline string) kernel.PID {
	mark := env.Mark()
	defer env.Release(mark)
	return kernel.PID(env.Syscall(kernel.SysExec, env.String(cmdline)))
}

// Wait waits for the child process to exit and returns its exit
// status.
func (env *Env) Wait(pid kernel.PID) int32 {
	return env.Syscall(kernel.SysWait, uint32(pid))
}

// Create creates a file with the initial size.
func (env *Env) Create(file string, size uint32) bool {
	mark := env.Mark()
	defer env.Release(mark)
	return env.Syscall(kernel.SysCreate, env.String(file), size) != 0
}

// Remove removes the file.
func (env *Env) Remove(file string) bool {
	mark := env.Mark()
	defer env.Release(mark)
	return env.Syscall(kernel.SysRemove, env.String(file)) != 0
}

// Open opens the file and returns its file descriptor or -1 on error.
func (env *Env) Open(file string) int32 {
	mark := env.Mark()
	defer env.Release(mark)
	return env.Syscall(kernel.SysOpen, env.String(file))
}

// Filesize returns the size of the open file.
func (env *Env) Filesize(fd int32) int32 {
	return env.Syscall(kernel.SysFilesize, uint32(fd))
}

// Read reads up to size bytes from fd into the user buffer at va.
func (env *Env) Read(fd int32, va, size uint32) int32 {
	return env.Syscall(kernel.SysRead, uint32(fd), va, size)
}

// Write writes size bytes from the user buffer at va to fd.
func (env *Env) Write(fd int32, va, size uint32) int32 {
	return env.Syscall(kernel.SysWrite, uint32(fd), va, size)
}

// Seek sets the position of the open file.
func (env *Env) Seek(fd int32, pos uint32) {
	env.Syscall(kernel.SysSeek, uint32(fd), pos)
}

// Tell returns the position of the open file.
func (env *Env) Tell(fd int32) uint32 {
	return uint32(env.Syscall(kernel.SysTell, uint32(fd)))
}

// Close closes the file descriptor.
func (env *Env) Close(fd int32) {
	env.Syscall(kernel.SysClose, uint32(fd))
}

// Fibonacci returns the nth Fibonacci number.
func (env *Env) Fibonacci(n int32) int32 {
	return env.Syscall(kernel.SysFibonacci, uint32(n))
}

// MaxOfFour returns the largest of its arguments.
func (env *Env) MaxOfFour(a, b, c, d int32) int32 {
	return env.Syscall(kernel.SysMaxOfFour, uint32(a), uint32(b),
		uint32(c), uint32(d))
}

// ReadBytes reads up to n bytes from fd.
func (env *Env) ReadBytes(fd int32, n uint32) ([]byte, int32) {
	mark := env.Mark()
	defer env.Release(mark)

	va := env.Alloc(n)
	ret := env.Read(fd, va, n)
	if ret <= 0 {
		return nil, ret
	}
	buf := make([]byte, ret)
	env.Load(va, buf)
	return buf, ret
}

// WriteBytes writes the data to fd.
func (env *Env) WriteBytes(fd int32, data []byte) int32 {
	mark := env.Mark()
	defer env.Release(mark)
	return env.Write(fd, env.Bytes(data), uint32(len(data)))
}

// Puts writes the string to the console.
func (env *Env) Puts(s string) {
	env.WriteBytes(kernel.FDStdout, []byte(s))
}

// Printf formats according to the format specifier and writes the
// result to the console.
func (env *Env) Printf(format string, a ...interface{}) {
	env.Puts(fmt.Sprintf(format, a...))
}
