//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"errors"
	"strings"
	"testing"

	"github.com/markkurossi/userprog/mmu"
)

func TestLoad(t *testing.T) {
	args := []string{"echo", "x", "yz", "hello"}
	pd, esp, err := load(args)
	if err != nil {
		t.Fatal(err)
	}
	if esp%4 != 0 {
		t.Errorf("esp 0x%08x not word aligned", esp)
	}
	word := func(va uint32) uint32 {
		v, err := readWord(pd, va)
		if err != nil {
			t.Fatalf("readWord(0x%08x): %v", va, err)
		}
		return v
	}
	if ret := word(esp); ret != 0 {
		t.Errorf("return address 0x%08x", ret)
	}
	argc := word(esp + 4)
	if argc != uint32(len(args)) {
		t.Fatalf("argc=%d, expected %d", argc, len(args))
	}
	argv := word(esp + 8)
	if argv != esp+12 {
		t.Errorf("argv=0x%08x, expected 0x%08x", argv, esp+12)
	}
	for i, arg := range args {
		s, err := copyInString(pd, word(argv+uint32(i)*4))
		if err != nil {
			t.Fatalf("argv[%d]: %v", i, err)
		}
		if s != arg {
			t.Errorf("argv[%d]=%q, expected %q", i, s, arg)
		}
	}
	if null := word(argv + argc*4); null != 0 {
		t.Errorf("argv[argc]=0x%08x", null)
	}
	if !pd.Writable(DataBase) || !pd.Writable(StackBase) {
		t.Errorf("data or stack not writable")
	}
	if pd.Mapped(DataBase + DataPages*mmu.PGSIZE) {
		t.Errorf("page after data segment mapped")
	}
	if pd.NumPages() != DataPages+1 {
		t.Errorf("NumPages=%d, expected %d", pd.NumPages(), DataPages+1)
	}
}

func TestLoadTooBig(t *testing.T) {
	args := strings.Fields(strings.Repeat("argument ", mmu.PGSIZE/8))
	_, _, err := load(args)
	if !errors.Is(err, E2BIG) {
		t.Errorf("load: %v, expected E2BIG", err)
	}
}
