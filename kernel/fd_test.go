//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"errors"
	"testing"
)

type testFile struct {
	closed   int
	closeErr error
}

func (f *testFile) Read(b []byte) (int, error)  { return 0, nil }
func (f *testFile) Write(b []byte) (int, error) { return len(b), nil }
func (f *testFile) Seek(pos int64)              {}
func (f *testFile) Tell() int64                 { return 0 }
func (f *testFile) Length() (int64, error)      { return 0, nil }
func (f *testFile) DenyWrite()                  {}
func (f *testFile) WriteDenied() bool           { return false }

func (f *testFile) Close() error {
	f.closed++
	return f.closeErr
}

func TestFDAlloc(t *testing.T) {
	var tab FDTable
	var files []*testFile

	for i := FDFirst; i < FDMax; i++ {
		f := new(testFile)
		fd, err := tab.Alloc(f)
		if err != nil {
			t.Fatalf("Alloc %d failed: %v", i, err)
		}
		if fd != i {
			t.Fatalf("Alloc=%d, expected %d", fd, i)
		}
		files = append(files, f)
	}
	if tab.Len() != FDMax-FDFirst {
		t.Errorf("Len=%d, expected %d", tab.Len(), FDMax-FDFirst)
	}
	_, err := tab.Alloc(new(testFile))
	if !errors.Is(err, EMFILE) {
		t.Errorf("Alloc on full table: %v", err)
	}

	// Lowest free descriptor is reused.
	for _, fd := range []int32{40, 5} {
		if _, err := tab.Free(fd); err != nil {
			t.Fatalf("Free(%d): %v", fd, err)
		}
	}
	for _, expected := range []int{5, 40} {
		fd, err := tab.Alloc(new(testFile))
		if err != nil || fd != expected {
			t.Errorf("Alloc=%d, %v, expected %d", fd, err, expected)
		}
	}

	if err := tab.CloseAll(); err != nil {
		t.Errorf("CloseAll: %v", err)
	}
	if tab.Len() != 0 {
		t.Errorf("Len=%d after CloseAll", tab.Len())
	}
	for i, f := range files {
		fd := FDFirst + i
		expected := 1
		if fd == 5 || fd == 40 {
			expected = 0
		}
		if f.closed != expected {
			t.Errorf("fd %d closed %d times, expected %d", fd, f.closed,
				expected)
		}
	}
}

func TestFDGet(t *testing.T) {
	var tab FDTable

	f := new(testFile)
	fd, err := tab.Alloc(f)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tab.Get(int32(fd))
	if err != nil || got != f {
		t.Errorf("Get(%d)=%v, %v", fd, got, err)
	}
	for _, fd := range []int32{-1, FDStdin, FDStdout, 3, FDMax, 1 << 30} {
		if _, err := tab.Get(fd); !errors.Is(err, EBADF) {
			t.Errorf("Get(%d): %v, expected EBADF", fd, err)
		}
	}
	if _, err := tab.Free(int32(fd)); err != nil {
		t.Errorf("Free(%d): %v", fd, err)
	}
	if _, err := tab.Free(int32(fd)); !errors.Is(err, EBADF) {
		t.Errorf("double Free(%d): %v, expected EBADF", fd, err)
	}
}

func TestFDCloseAllErrors(t *testing.T) {
	var tab FDTable
	errClose := errors.New("close failed")

	files := []*testFile{
		{closeErr: errClose},
		{},
		{closeErr: errClose},
	}
	for _, f := range files {
		if _, err := tab.Alloc(f); err != nil {
			t.Fatal(err)
		}
	}
	err := tab.CloseAll()
	if !errors.Is(err, errClose) {
		t.Fatalf("CloseAll: %v, expected close errors", err)
	}
	for i, f := range files {
		if f.closed != 1 {
			t.Errorf("file %d closed %d times", i, f.closed)
		}
	}
}
