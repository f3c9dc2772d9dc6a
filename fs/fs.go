//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package fs implements the filesystem used by user processes. Files
// live in a single flat directory of the host filesystem. Files do
// not grow: their length is fixed when they are created.
package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// NameMax is the maximum length of a file name.
const NameMax = 14

// Errors returned for malformed file names.
var (
	ErrNameTooLong = errors.New("file name too long")
	ErrInvalidName = errors.New("invalid file name")
)

// FileSystem defines the filesystem operations of the kernel. The
// implementations are not safe for concurrent use; the kernel
// serializes all calls.
type FileSystem interface {
	Create(name string, size int64) error
	Remove(name string) error
	Open(name string) (File, error)
}

// File defines an open file.
type File interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Seek(pos int64)
	Tell() int64
	Length() (int64, error)
	// DenyWrite denies writes to the underlying file until this
	// handle is closed.
	DenyWrite()
	// WriteDenied tests if any open handle denies writes to the
	// underlying file.
	WriteDenied() bool
	Close() error
}

// Dir implements FileSystem over a host directory.
type Dir struct {
	root   string
	m      sync.Mutex
	inodes map[string]*inode
}

type inode struct {
	path    string
	openCnt int
	denyCnt int
}

var _ FileSystem = &Dir{}

// NewDir creates a filesystem rooted at the directory root.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}
	return &Dir{
		root:   root,
		inodes: make(map[string]*inode),
	}, nil
}

// Root returns the host directory of the filesystem.
func (d *Dir) Root() string {
	return d.root
}

// MakePath creates the host path for the file name.
func MakePath(root, name string) (string, error) {
	if len(name) == 0 {
		return "", ErrInvalidName
	}
	if len(name) > NameMax {
		return "", ErrNameTooLong
	}
	if strings.ContainsAny(name, "/\x00") || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	return filepath.Join(root, filepath.Clean("/"+name)), nil
}

// Create creates a zero-filled file with the initial size.
func (d *Dir) Create(name string, size int64) error {
	path, err := MakePath(d.root, name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if size > 0 {
		err = f.Truncate(size)
		if err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
	}
	return f.Close()
}

// Remove removes the file. Open handles of the file remain usable
// until they are closed.
func (d *Dir) Remove(name string) error {
	path, err := MakePath(d.root, name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil {
		return err
	}
	d.m.Lock()
	delete(d.inodes, path)
	d.m.Unlock()

	return nil
}

// Open opens the file for reading and writing.
func (d *Dir) Open(name string) (File, error) {
	path, err := MakePath(d.root, name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	d.m.Lock()
	ino, ok := d.inodes[path]
	if !ok {
		ino = &inode{
			path: path,
		}
		d.inodes[path] = ino
	}
	ino.openCnt++
	d.m.Unlock()

	return &DirFile{
		dir: d,
		ino: ino,
		f:   f,
	}, nil
}

// DirFile implements File for Dir.
type DirFile struct {
	dir    *Dir
	ino    *inode
	f      *os.File
	pos    int64
	denied bool
}

// Read implements File.Read.
func (f *DirFile) Read(b []byte) (int, error) {
	n, err := f.f.ReadAt(b, f.pos)
	f.pos += int64(n)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}

// Write implements File.Write. Writes are clipped at the end of the
// file and return 0 for write-denied files.
func (f *DirFile) Write(b []byte) (int, error) {
	if f.WriteDenied() {
		return 0, nil
	}
	length, err := f.Length()
	if err != nil {
		return 0, err
	}
	if f.pos >= length {
		return 0, nil
	}
	if int64(len(b)) > length-f.pos {
		b = b[:length-f.pos]
	}
	n, err := f.f.WriteAt(b, f.pos)
	f.pos += int64(n)
	return n, err
}

// Seek implements File.Seek.
func (f *DirFile) Seek(pos int64) {
	if pos < 0 {
		pos = 0
	}
	f.pos = pos
}

// Tell implements File.Tell.
func (f *DirFile) Tell() int64 {
	return f.pos
}

// Length implements File.Length.
func (f *DirFile) Length() (int64, error) {
	info, err := f.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// DenyWrite implements File.DenyWrite.
func (f *DirFile) DenyWrite() {
	f.dir.m.Lock()
	if !f.denied {
		f.denied = true
		f.ino.denyCnt++
	}
	f.dir.m.Unlock()
}

// WriteDenied implements File.WriteDenied.
func (f *DirFile) WriteDenied() bool {
	f.dir.m.Lock()
	defer f.dir.m.Unlock()
	return f.ino.denyCnt > 0
}

// Close implements File.Close.
func (f *DirFile) Close() error {
	f.dir.m.Lock()
	if f.denied {
		f.denied = false
		f.ino.denyCnt--
	}
	f.ino.openCnt--
	if f.ino.openCnt == 0 && f.dir.inodes[f.ino.path] == f.ino {
		delete(f.dir.inodes, f.ino.path)
	}
	f.dir.m.Unlock()

	return f.f.Close()
}

// Empty implements a filesystem without files.
type Empty struct {
}

var _ FileSystem = Empty{}

// Create implements FileSystem.Create.
func (e Empty) Create(name string, size int64) error {
	return fmt.Errorf("create %s: %w", name, os.ErrPermission)
}

// Remove implements FileSystem.Remove.
func (e Empty) Remove(name string) error {
	return fmt.Errorf("remove %s: %w", name, os.ErrNotExist)
}

// Open implements FileSystem.Open.
func (e Empty) Open(name string) (File, error) {
	return nil, fmt.Errorf("open %s: %w", name, os.ErrNotExist)
}
