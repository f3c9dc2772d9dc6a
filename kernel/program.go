//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"fmt"

	"github.com/markkurossi/userprog/mmu"
)

// Program implements a user program. It runs in user mode on its own
// kernel thread. The esp argument is the initial user stack pointer
// pointing to the fake return address above argc and argv. The return
// value is the exit status of the process.
type Program func(proc *Process, esp uint32) int32

// User address space layout.
const (
	DataBase  = mmu.CodeBase
	DataPages = 16
	StackTop  = mmu.PhysBase
	StackBase = mmu.PhysBase - mmu.PGSIZE
)

// load creates the address space for the program arguments and builds
// the initial user stack:
//
//	argv[argc-1] ... argv[0] strings
//	word-align
//	argv[argc] = NULL
//	argv[argc-1] ... argv[0] pointers
//	argv
//	argc
//	return address
func load(args []string) (*mmu.PageDir, uint32, error) {
	pd := mmu.New()
	err := pd.MapRange(DataBase, DataPages*mmu.PGSIZE, true)
	if err != nil {
		return nil, 0, err
	}
	err = pd.Map(StackBase, true)
	if err != nil {
		return nil, 0, err
	}

	esp := uint32(StackTop)
	push := func(data []byte) error {
		if uint32(len(data)) > esp-StackBase {
			return fmt.Errorf("argument stack overflow: %w", E2BIG)
		}
		esp -= uint32(len(data))
		pd.Poke(esp, data)
		return nil
	}
	pushWord := func(v uint32) error {
		var buf [4]byte
		bo.PutUint32(buf[:], v)
		return push(buf[:])
	}

	argv := make([]uint32, len(args))
	for i := len(args) - 1; i >= 0; i-- {
		err = push(append([]byte(args[i]), 0))
		if err != nil {
			pd.Destroy()
			return nil, 0, err
		}
		argv[i] = esp
	}
	if pad := esp % 4; pad != 0 {
		err = push(make([]byte, pad))
		if err != nil {
			pd.Destroy()
			return nil, 0, err
		}
	}
	err = pushWord(0)
	for i := len(args) - 1; err == nil && i >= 0; i-- {
		err = pushWord(argv[i])
	}
	if err == nil {
		err = pushWord(esp)
	}
	if err == nil {
		err = pushWord(uint32(len(args)))
	}
	if err == nil {
		err = pushWord(0)
	}
	if err != nil {
		pd.Destroy()
		return nil, 0, err
	}
	return pd, esp, nil
}
