//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/markkurossi/userprog/fs"
)

// Reserved file descriptors.
const (
	FDStdin  = 0
	FDStdout = 1
)

// File descriptor table limits. Table entries are allocated from
// FDFirst to FDMax-1.
const (
	FDFirst = 2
	FDMax   = 128
)

// FDTable implements the per-process file descriptor table.
type FDTable struct {
	files [FDMax]fs.File
}

// Alloc stores the file into the lowest free descriptor and returns
// the descriptor.
func (t *FDTable) Alloc(f fs.File) (int, error) {
	for fd := FDFirst; fd < FDMax; fd++ {
		if t.files[fd] == nil {
			t.files[fd] = f
			return fd, nil
		}
	}
	return -1, EMFILE
}

// Get returns the file of the descriptor fd.
func (t *FDTable) Get(fd int32) (fs.File, error) {
	if fd < FDFirst || fd >= FDMax {
		return nil, fmt.Errorf("fd %d out of range: %w", fd, EBADF)
	}
	f := t.files[fd]
	if f == nil {
		return nil, fmt.Errorf("fd %d not open: %w", fd, EBADF)
	}
	return f, nil
}

// Free clears the descriptor fd and returns the file it held.
func (t *FDTable) Free(fd int32) (fs.File, error) {
	f, err := t.Get(fd)
	if err != nil {
		return nil, err
	}
	t.files[fd] = nil
	return f, nil
}

// Len returns the number of open descriptors.
func (t *FDTable) Len() int {
	var count int
	for _, f := range t.files {
		if f != nil {
			count++
		}
	}
	return count
}

// CloseAll closes all open descriptors.
func (t *FDTable) CloseAll() error {
	var result *multierror.Error
	for fd, f := range t.files {
		if f == nil {
			continue
		}
		t.files[fd] = nil
		if err := f.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("fd %d: %w", fd, err))
		}
	}
	return result.ErrorOrNil()
}
