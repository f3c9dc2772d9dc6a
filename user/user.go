//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package user implements the user mode runtime of user programs. All
// memory accesses go through the process page directory and all
// kernel services are requested with system call traps.
package user

import (
	"fmt"

	"github.com/markkurossi/userprog/kernel"
	"github.com/markkurossi/userprog/mmu"
)

// Env implements the user mode environment of a process.
type Env struct {
	Args []string

	proc *kernel.Process
	pd   *mmu.PageDir
	esp  uint32
	brk  uint32
}

// Main creates a program that runs fn with the environment of the
// process. The return value of fn is the exit status of the process.
func Main(fn func(env *Env) int32) kernel.Program {
	return func(proc *kernel.Process, esp uint32) int32 {
		env := &Env{
			proc: proc,
			pd:   proc.PageDir(),
			esp:  esp,
			brk:  kernel.DataBase,
		}
		env.loadArgs()
		return fn(env)
	}
}

func (env *Env) loadArgs() {
	argc := env.Word(env.esp + 4)
	argv := env.Word(env.esp + 8)
	for i := uint32(0); i < argc; i++ {
		env.Args = append(env.Args, env.LoadString(env.Word(argv+i*4)))
	}
}

// Arg returns the ith argument or an empty string if the argument is
// not present.
func (env *Env) Arg(i int) string {
	if i < len(env.Args) {
		return env.Args[i]
	}
	return ""
}

// LoadByte loads a byte from the user address va.
func (env *Env) LoadByte(va uint32) byte {
	b, ok := env.pd.LoadByte(va)
	if !ok {
		env.proc.PageFault(va, false)
	}
	return b
}

// StoreByte stores a byte to the user address va.
func (env *Env) StoreByte(va uint32, b byte) {
	if !env.pd.StoreByte(va, b) {
		env.proc.PageFault(va, true)
	}
}

// Load loads len(b) bytes from va.
func (env *Env) Load(va uint32, b []byte) {
	if n := env.pd.Load(va, b); n != len(b) {
		env.proc.PageFault(va+uint32(n), false)
	}
}

// Store stores b to va.
func (env *Env) Store(va uint32, b []byte) {
	if n := env.pd.Store(va, b); n != len(b) {
		env.proc.PageFault(va+uint32(n), true)
	}
}

// Word loads a little-endian word from va.
func (env *Env) Word(va uint32) uint32 {
	var buf [4]byte
	env.Load(va, buf[:])
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 |
		uint32(buf[3])<<24
}

// PutWord stores a little-endian word to va.
func (env *Env) PutWord(va, v uint32) {
	env.Store(va, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// LoadString loads a NUL-terminated string from va.
func (env *Env) LoadString(va uint32) string {
	var result []byte
	for {
		b := env.LoadByte(va)
		if b == 0 {
			return string(result)
		}
		result = append(result, b)
		va++
	}
}

// Alloc allocates size bytes from the data segment and returns the
// address of the allocated memory.
func (env *Env) Alloc(size uint32) uint32 {
	va := env.brk
	brk := (va + size + 3) &^ 3
	if brk < va || brk > kernel.DataBase+kernel.DataPages*mmu.PGSIZE {
		panic(fmt.Sprintf("out of memory: alloc(%d)", size))
	}
	env.brk = brk
	return va
}

// Mark returns the current data segment allocation point.
func (env *Env) Mark() uint32 {
	return env.brk
}

// Release releases all data segment allocations done after the mark.
func (env *Env) Release(mark uint32) {
	env.brk = mark
}

// String stores the string as a NUL-terminated string into the data
// segment and returns its address.
func (env *Env) String(s string) uint32 {
	va := env.Alloc(uint32(len(s) + 1))
	env.Store(va, append([]byte(s), 0))
	return va
}

// Bytes stores the data into the data segment and returns its address.
func (env *Env) Bytes(data []byte) uint32 {
	va := env.Alloc(uint32(len(data)))
	env.Store(va, data)
	return va
}

// Syscall pushes the call number and its arguments to the user stack
// and traps into the kernel. It returns the value of the return value
// register.
func (env *Env) Syscall(call kernel.Syscall, args ...uint32) int32 {
	esp := env.esp
	for i := len(args) - 1; i >= 0; i-- {
		esp -= 4
		env.PutWord(esp, args[i])
	}
	esp -= 4
	env.PutWord(esp, uint32(call))

	return env.Trap(esp)
}

// Trap traps into the kernel with the stack pointer esp.
func (env *Env) Trap(esp uint32) int32 {
	tf := &kernel.TrapFrame{
		ESP: esp,
	}
	env.proc.Trap(tf)
	return int32(tf.EAX)
}
