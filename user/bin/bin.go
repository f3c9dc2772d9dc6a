//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package bin implements the built-in user programs.
package bin

import (
	"strconv"
	"strings"

	"github.com/markkurossi/userprog/kernel"
	"github.com/markkurossi/userprog/mmu"
	"github.com/markkurossi/userprog/user"
)

// Programs returns the built-in programs by their names.
func Programs() map[string]kernel.Program {
	return map[string]kernel.Program{
		"additional": user.Main(Additional),
		"cat":        user.Main(Cat),
		"echo":       user.Main(Echo),
		"exit":       user.Main(Exit),
		"fault":      user.Main(Fault),
		"halt":       user.Main(Halt),
		"put":        user.Main(Put),
		"spawn":      user.Main(Spawn),
	}
}

// RemotePrograms returns the built-in programs for remote run
// clients. It omits halt so that a client cannot power off the
// serving machine.
func RemotePrograms() map[string]kernel.Program {
	programs := Programs()
	delete(programs, "halt")
	return programs
}

// Additional prints fibonacci(a) and max_of_four(a, b, c, d) of its
// four integer arguments.
func Additional(env *user.Env) int32 {
	if len(env.Args) != 5 {
		env.Printf("usage: %s a b c d\n", env.Arg(0))
		return -1
	}
	var v [4]int32
	for i := range v {
		n, err := strconv.ParseInt(env.Args[i+1], 10, 32)
		if err != nil {
			env.Printf("%s: invalid argument '%s'\n", env.Arg(0),
				env.Args[i+1])
			return -1
		}
		v[i] = int32(n)
	}
	env.Printf("%d %d\n", env.Fibonacci(v[0]),
		env.MaxOfFour(v[0], v[1], v[2], v[3]))
	return 0
}

// Echo prints its arguments.
func Echo(env *user.Env) int32 {
	env.Printf("%s\n", strings.Join(env.Args[1:], " "))
	return 0
}

// Exit exits with the status given as its argument. The default status
// is 42.
func Exit(env *user.Env) int32 {
	status := int64(42)
	if len(env.Args) > 1 {
		var err error
		status, err = strconv.ParseInt(env.Args[1], 10, 32)
		if err != nil {
			return -1
		}
	}
	env.Exit(int32(status))
	return 0
}

// Halt powers off the machine.
func Halt(env *user.Env) int32 {
	env.Halt()
	return 0
}

// Cat prints the files to the console.
func Cat(env *user.Env) int32 {
	const bufSize = 512
	var status int32

	for _, file := range env.Args[1:] {
		fd := env.Open(file)
		if fd < 0 {
			env.Printf("%s: %s: open failed\n", env.Arg(0), file)
			status = 1
			continue
		}
		for {
			data, n := env.ReadBytes(fd, bufSize)
			if n <= 0 {
				break
			}
			env.WriteBytes(kernel.FDStdout, data)
		}
		env.Close(fd)
	}
	return status
}

// Put creates the file from the console input.
func Put(env *user.Env) int32 {
	const bufSize = 512

	if len(env.Args) != 2 {
		env.Printf("usage: %s file\n", env.Arg(0))
		return -1
	}
	file := env.Args[1]

	var data []byte
	for {
		buf, n := env.ReadBytes(kernel.FDStdin, bufSize)
		if n <= 0 {
			break
		}
		data = append(data, buf...)
	}
	if !env.Create(file, uint32(len(data))) {
		env.Printf("%s: %s: create failed\n", env.Arg(0), file)
		return 1
	}
	fd := env.Open(file)
	if fd < 0 {
		env.Printf("%s: %s: open failed\n", env.Arg(0), file)
		return 1
	}
	defer env.Close(fd)

	n := env.WriteBytes(fd, data)
	if n != int32(len(data)) {
		env.Printf("%s: %s: short write %d/%d\n", env.Arg(0), file, n,
			len(data))
		return 1
	}
	env.Seek(fd, 0)
	env.Printf("%s: %s: %d bytes, pos=%d\n", env.Arg(0), file,
		env.Filesize(fd), env.Tell(fd))
	return 0
}

// Spawn runs its arguments as a child process and returns the exit
// status of the child.
func Spawn(env *user.Env) int32 {
	if len(env.Args) < 2 {
		env.Printf("usage: %s cmd [arg...]\n", env.Arg(0))
		return -1
	}
	pid := env.Exec(strings.Join(env.Args[1:], " "))
	if pid < 0 {
		env.Printf("%s: exec failed\n", env.Arg(0))
		return -1
	}
	return env.Wait(pid)
}

// Fault makes invalid memory accesses and system calls.
func Fault(env *user.Env) int32 {
	switch env.Arg(1) {
	case "kernel-read":
		env.LoadByte(mmu.PhysBase)

	case "null-write":
		env.Write(kernel.FDStdout, 0, 1)

	case "bad-sp":
		env.Trap(mmu.PhysBase + 64)

	case "straddle":
		// The last data page is followed by an unmapped page.
		va := kernel.DataBase + kernel.DataPages*mmu.PGSIZE - 4
		env.Read(kernel.FDStdin, va, 8)

	case "bad-string":
		// Unterminated string running into the unmapped page.
		va := kernel.DataBase + kernel.DataPages*mmu.PGSIZE - 4
		env.Store(va, []byte("abcd"))
		env.Syscall(kernel.SysOpen, va)

	case "nosys":
		env.Syscall(kernel.Syscall(17))

	case "bad-fd":
		env.Close(99)

	default:
		env.Printf("usage: %s kernel-read|null-write|bad-sp|straddle|"+
			"bad-string|nosys|bad-fd\n", env.Arg(0))
		return -1
	}
	return 0
}
