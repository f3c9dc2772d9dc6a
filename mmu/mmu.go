//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package mmu implements the simulated 32-bit user address space. A
// page directory maps user virtual pages to page frames; everything
// at or above PhysBase belongs to the kernel and is never mapped for
// user access.
package mmu

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// PGBITS is the number of offset bits in a virtual address.
	PGBITS = 12
	// PGSIZE is the page size in bytes.
	PGSIZE = 1 << PGBITS
	// PGMASK masks the page offset bits.
	PGMASK = PGSIZE - 1

	// PhysBase is the first kernel virtual address. User virtual
	// addresses are below PhysBase.
	PhysBase uint32 = 0xc0000000

	// CodeBase is the conventional start of the user image.
	CodeBase uint32 = 0x08048000
)

// Errors returned by page directory operations.
var (
	ErrKernelAddress = errors.New("kernel virtual address")
	ErrUnaligned     = errors.New("unaligned page address")
	ErrMapped        = errors.New("page already mapped")
)

// PgRoundDown rounds the address down to the nearest page boundary.
func PgRoundDown(va uint32) uint32 {
	return va &^ PGMASK
}

// PgOfs returns the page offset of the address.
func PgOfs(va uint32) uint32 {
	return va & PGMASK
}

// IsUserVaddr tests if the address is a user virtual address.
func IsUserVaddr(va uint32) bool {
	return va < PhysBase
}

type frame struct {
	data     [PGSIZE]byte
	writable bool
}

// PageDir implements a process page directory.
type PageDir struct {
	m     sync.RWMutex
	pages map[uint32]*frame
}

// New creates an empty page directory.
func New() *PageDir {
	return &PageDir{
		pages: make(map[uint32]*frame),
	}
}

// Map maps a zeroed page frame at the user page upage.
func (pd *PageDir) Map(upage uint32, writable bool) error {
	if PgOfs(upage) != 0 {
		return fmt.Errorf("map 0x%08x: %w", upage, ErrUnaligned)
	}
	if !IsUserVaddr(upage) {
		return fmt.Errorf("map 0x%08x: %w", upage, ErrKernelAddress)
	}
	pd.m.Lock()
	defer pd.m.Unlock()

	_, ok := pd.pages[upage]
	if ok {
		return fmt.Errorf("map 0x%08x: %w", upage, ErrMapped)
	}
	pd.pages[upage] = &frame{
		writable: writable,
	}
	return nil
}

// MapRange maps all pages overlapping [va, va+size).
func (pd *PageDir) MapRange(va, size uint32, writable bool) error {
	if size == 0 {
		return nil
	}
	last := PgRoundDown(va + size - 1)
	for upage := PgRoundDown(va); ; upage += PGSIZE {
		err := pd.Map(upage, writable)
		if err != nil {
			return err
		}
		if upage == last {
			return nil
		}
	}
}

// Unmap removes the mapping of the user page containing va.
func (pd *PageDir) Unmap(va uint32) {
	pd.m.Lock()
	delete(pd.pages, PgRoundDown(va))
	pd.m.Unlock()
}

// Destroy releases all page frames.
func (pd *PageDir) Destroy() {
	pd.m.Lock()
	pd.pages = make(map[uint32]*frame)
	pd.m.Unlock()
}

// NumPages returns the number of mapped pages.
func (pd *PageDir) NumPages() int {
	pd.m.RLock()
	defer pd.m.RUnlock()
	return len(pd.pages)
}

func (pd *PageDir) lookup(va uint32) (*frame, bool) {
	if !IsUserVaddr(va) {
		return nil, false
	}
	pd.m.RLock()
	f, ok := pd.pages[PgRoundDown(va)]
	pd.m.RUnlock()
	return f, ok
}

// IsUserVaddr tests if the address is a user virtual address.
func (pd *PageDir) IsUserVaddr(va uint32) bool {
	return IsUserVaddr(va)
}

// Mapped tests if the user address va is backed by a page frame.
func (pd *PageDir) Mapped(va uint32) bool {
	_, ok := pd.lookup(va)
	return ok
}

// Writable tests if the user address va is mapped writable.
func (pd *PageDir) Writable(va uint32) bool {
	f, ok := pd.lookup(va)
	return ok && f.writable
}

// LoadByte reads the byte at va. The ok result is false if va is not
// a mapped user address.
func (pd *PageDir) LoadByte(va uint32) (byte, bool) {
	f, ok := pd.lookup(va)
	if !ok {
		return 0, false
	}
	return f.data[PgOfs(va)], true
}

// StoreByte writes the byte at va. Stores to unmapped or read-only
// pages fail.
func (pd *PageDir) StoreByte(va uint32, b byte) bool {
	f, ok := pd.lookup(va)
	if !ok || !f.writable {
		return false
	}
	f.data[PgOfs(va)] = b
	return true
}

// Load copies len(b) bytes from va into b. It returns the number of
// bytes copied before the first faulting address.
func (pd *PageDir) Load(va uint32, b []byte) int {
	for i := range b {
		v, ok := pd.LoadByte(va + uint32(i))
		if !ok {
			return i
		}
		b[i] = v
	}
	return len(b)
}

// Store copies b to va. It returns the number of bytes copied before
// the first faulting address.
func (pd *PageDir) Store(va uint32, b []byte) int {
	for i, v := range b {
		if !pd.StoreByte(va+uint32(i), v) {
			return i
		}
	}
	return len(b)
}

// Poke writes b to va ignoring page protections. The loader uses it
// to initialize read-only pages.
func (pd *PageDir) Poke(va uint32, b []byte) int {
	for i, v := range b {
		f, ok := pd.lookup(va + uint32(i))
		if !ok {
			return i
		}
		f.data[PgOfs(va+uint32(i))] = v
	}
	return len(b)
}
