//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package mmu

import (
	"errors"
	"testing"
)

var roundTests = []struct {
	va   uint32
	down uint32
	ofs  uint32
}{
	{0x00000000, 0x00000000, 0},
	{0x08048000, 0x08048000, 0},
	{0x08048fff, 0x08048000, 0xfff},
	{0xbfffffff, 0xbffff000, 0xfff},
}

func TestRound(t *testing.T) {
	for idx, test := range roundTests {
		if v := PgRoundDown(test.va); v != test.down {
			t.Errorf("test%d: PgRoundDown(%08x)=%08x, expected %08x",
				idx, test.va, v, test.down)
		}
		if v := PgOfs(test.va); v != test.ofs {
			t.Errorf("test%d: PgOfs(%08x)=%x, expected %x",
				idx, test.va, v, test.ofs)
		}
	}
}

func TestMap(t *testing.T) {
	pd := New()

	if err := pd.Map(CodeBase+1, true); !errors.Is(err, ErrUnaligned) {
		t.Errorf("unaligned map: %v", err)
	}
	if err := pd.Map(PhysBase, true); !errors.Is(err, ErrKernelAddress) {
		t.Errorf("kernel map: %v", err)
	}
	if err := pd.Map(CodeBase, false); err != nil {
		t.Fatal(err)
	}
	if err := pd.Map(CodeBase, false); !errors.Is(err, ErrMapped) {
		t.Errorf("double map: %v", err)
	}
	if !pd.Mapped(CodeBase + 100) {
		t.Errorf("CodeBase+100 not mapped")
	}
	if pd.Writable(CodeBase) {
		t.Errorf("read-only page writable")
	}
	if pd.StoreByte(CodeBase, 1) {
		t.Errorf("store to read-only page succeeded")
	}
	if n := pd.Poke(CodeBase, []byte{1, 2, 3}); n != 3 {
		t.Errorf("Poke=%v, expected 3", n)
	}
	if b, ok := pd.LoadByte(CodeBase + 2); !ok || b != 3 {
		t.Errorf("LoadByte=%v,%v, expected 3,true", b, ok)
	}
	pd.Unmap(CodeBase + 10)
	if pd.Mapped(CodeBase) {
		t.Errorf("unmapped page still mapped")
	}
}

func TestStraddle(t *testing.T) {
	pd := New()

	base := uint32(0x10000000)
	if err := pd.MapRange(base, PGSIZE+1, true); err != nil {
		t.Fatal(err)
	}
	if pd.NumPages() != 2 {
		t.Fatalf("NumPages=%v, expected 2", pd.NumPages())
	}
	buf := make([]byte, 2*PGSIZE+10)
	if n := pd.Store(base+10, buf); n != 2*PGSIZE-10 {
		t.Errorf("Store=%v, expected %v", n, 2*PGSIZE-10)
	}
	if n := pd.Load(base+2*PGSIZE-1, buf[:2]); n != 1 {
		t.Errorf("Load across mapping end=%v, expected 1", n)
	}
	if pd.Mapped(PhysBase) {
		t.Errorf("PhysBase mapped")
	}
}
