//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"fmt"
)

// Syscall defines system calls.
type Syscall uint32

func (call Syscall) String() string {
	name, ok := syscallNames[call]
	if ok {
		return name
	}
	return fmt.Sprintf("{Syscall %d}", uint32(call))
}

// System calls.
const (
	SysHalt Syscall = iota
	SysExit
	SysExec
	SysWait
	SysCreate
	SysRemove
	SysOpen
	SysFilesize
	SysRead
	SysWrite
	SysSeek
	SysTell
	SysClose
)

// Extension system calls. The numbers between SysClose and
// SysFibonacci are reserved.
const (
	SysFibonacci Syscall = iota + 20
	SysMaxOfFour

	numSyscalls
)

var syscallNames = map[Syscall]string{
	SysHalt:      "halt",
	SysExit:      "exit",
	SysExec:      "exec",
	SysWait:      "wait",
	SysCreate:    "create",
	SysRemove:    "remove",
	SysOpen:      "open",
	SysFilesize:  "filesize",
	SysRead:      "read",
	SysWrite:     "write",
	SysSeek:      "seek",
	SysTell:      "tell",
	SysClose:     "close",
	SysFibonacci: "fibonacci",
	SysMaxOfFour: "max_of_four_int",
}

// argKind defines how a system call argument word is interpreted and
// validated.
type argKind uint8

const (
	argInt argKind = iota
	argUint
	argString
	// argBufIn is a user buffer the kernel reads. Its size is the
	// following argument.
	argBufIn
	// argBufOut is a user buffer the kernel writes. Its size is the
	// following argument.
	argBufOut
)

// MaxArgs is the maximum number of system call arguments.
const MaxArgs = 4

type sysentry struct {
	args []argKind
	impl func(proc *Process, a *sysargs) (int32, error)
}

var sysent [numSyscalls]sysentry

func init() {
	sysent = [numSyscalls]sysentry{
		SysHalt:      {nil, sysHalt},
		SysExit:      {[]argKind{argInt}, sysExit},
		SysExec:      {[]argKind{argString}, sysExec},
		SysWait:      {[]argKind{argInt}, sysWait},
		SysCreate:    {[]argKind{argString, argUint}, sysCreate},
		SysRemove:    {[]argKind{argString}, sysRemove},
		SysOpen:      {[]argKind{argString}, sysOpen},
		SysFilesize:  {[]argKind{argInt}, sysFilesize},
		SysRead:      {[]argKind{argInt, argBufOut, argUint}, sysRead},
		SysWrite:     {[]argKind{argInt, argBufIn, argUint}, sysWrite},
		SysSeek:      {[]argKind{argInt, argUint}, sysSeek},
		SysTell:      {[]argKind{argInt}, sysTell},
		SysClose:     {[]argKind{argInt}, sysClose},
		SysFibonacci: {[]argKind{argInt}, sysFibonacci},
		SysMaxOfFour: {[]argKind{argInt, argInt, argInt, argInt}, sysMaxOfFour},
	}
}

// lookupSyscall returns the table entry for the call number.
func lookupSyscall(nr uint32) (Syscall, *sysentry, bool) {
	if nr >= uint32(numSyscalls) {
		return 0, nil, false
	}
	ent := &sysent[nr]
	if ent.impl == nil {
		return 0, nil, false
	}
	return Syscall(nr), ent, true
}

// Arity returns the number of argument words of the system call.
func (call Syscall) Arity() int {
	_, ent, ok := lookupSyscall(uint32(call))
	if !ok {
		return 0
	}
	return len(ent.args)
}

// sysargs holds the decoded and validated system call arguments.
type sysargs struct {
	call  Syscall
	words [MaxArgs]uint32
	str   string
	buf   []byte
	bufVA uint32
}

func (a *sysargs) int(i int) int32 {
	return int32(a.words[i])
}

func (a *sysargs) uint(i int) uint32 {
	return a.words[i]
}
