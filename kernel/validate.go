//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"encoding/binary"
	"fmt"

	"github.com/markkurossi/userprog/mmu"
)

// MaxString is the maximum length of a string argument, including its
// terminating NUL.
const MaxString = mmu.PGSIZE

var bo = binary.LittleEndian

// AddressSpace defines the address space queries and kernel mode
// accesses the validator needs.
type AddressSpace interface {
	IsUserVaddr(va uint32) bool
	Mapped(va uint32) bool
	Writable(va uint32) bool
	Load(va uint32, b []byte) int
	Store(va uint32, b []byte) int
}

var _ AddressSpace = (*mmu.PageDir)(nil)

func faultf(format string, a ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), EFAULT)
}

func checkByte(as AddressSpace, va uint32, write bool) error {
	if !as.IsUserVaddr(va) {
		return faultf("kernel address 0x%08x", va)
	}
	if !as.Mapped(va) {
		return faultf("unmapped address 0x%08x", va)
	}
	if write && !as.Writable(va) {
		return faultf("read-only address 0x%08x", va)
	}
	return nil
}

// checkRange checks the first and the last byte of the range
// [va,va+size).
func checkRange(as AddressSpace, va, size uint32, write bool) error {
	if va == 0 {
		return faultf("null pointer")
	}
	if size == 0 {
		return nil
	}
	last := va + size - 1
	if last < va {
		return faultf("range 0x%08x+%d wraps around", va, size)
	}
	if err := checkByte(as, va, write); err != nil {
		return err
	}
	return checkByte(as, last, write)
}

// checkBuffer checks every byte of the buffer [va,va+size). Pages
// between the endpoints can be unmapped even when both endpoints are
// mapped.
func checkBuffer(as AddressSpace, va, size uint32, write bool) error {
	err := checkRange(as, va, size, write)
	if err != nil {
		return err
	}
	for i := uint32(1); i+1 < size; i++ {
		if err := checkByte(as, va+i, write); err != nil {
			return err
		}
	}
	return nil
}

// readWord reads a little-endian word from the user address va.
func readWord(as AddressSpace, va uint32) (uint32, error) {
	var buf [4]byte
	if err := checkBuffer(as, va, 4, false); err != nil {
		return 0, err
	}
	if as.Load(va, buf[:]) != len(buf) {
		return 0, faultf("load 0x%08x", va)
	}
	return bo.Uint32(buf[:]), nil
}

// copyInString copies the NUL-terminated string at va into kernel
// memory. Every byte of the string is validated.
func copyInString(as AddressSpace, va uint32) (string, error) {
	if va == 0 {
		return "", faultf("null string pointer")
	}
	var b [1]byte
	var result []byte
	for i := uint32(0); i < MaxString; i++ {
		if va+i < va {
			return "", faultf("string 0x%08x wraps around", va)
		}
		if err := checkByte(as, va+i, false); err != nil {
			return "", err
		}
		if as.Load(va+i, b[:]) != 1 {
			return "", faultf("load 0x%08x", va+i)
		}
		if b[0] == 0 {
			return string(result), nil
		}
		result = append(result, b[0])
	}
	return "", faultf("unterminated string at 0x%08x", va)
}

// copyIn validates the user buffer [va,va+size) and copies it into
// kernel memory.
func copyIn(as AddressSpace, va, size uint32) ([]byte, error) {
	if err := checkBuffer(as, va, size, false); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if n := as.Load(va, buf); n != len(buf) {
		return nil, faultf("load 0x%08x", va+uint32(n))
	}
	return buf, nil
}

// copyOut copies data into the user buffer at va. The buffer must have
// been validated as writable.
func copyOut(as AddressSpace, va uint32, data []byte) error {
	if n := as.Store(va, data); n != len(data) {
		return faultf("store 0x%08x", va+uint32(n))
	}
	return nil
}
