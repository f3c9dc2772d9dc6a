//
// Copyright (c) 2025, 2026 Markku Rossi
//
// All rights reserved.
//

package fs

import (
	"bytes"
	"errors"
	"os"
	"testing"
)

var pathTests = []struct {
	name   string
	root   string
	result string
	err    error
}{
	{
		name:   "motd",
		root:   "fs",
		result: "fs/motd",
	},
	{
		name:   "a.txt",
		root:   "/tmp/fs",
		result: "/tmp/fs/a.txt",
	},
	{
		name: "",
		root: "fs",
		err:  ErrInvalidName,
	},
	{
		name: "../motd",
		root: "fs",
		err:  ErrInvalidName,
	},
	{
		name: "..",
		root: "fs",
		err:  ErrInvalidName,
	},
	{
		name: "abcdefghijklmno",
		root: "fs",
		err:  ErrNameTooLong,
	},
}

func TestPaths(t *testing.T) {
	for idx, test := range pathTests {
		path, err := MakePath(test.root, test.name)
		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("test%d: got error %v, expected %v\n",
					idx, err, test.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("test%d: unexpected error %v\n", idx, err)
			continue
		}
		if path != test.result {
			t.Errorf("test%d: got %v, expected %v\n", idx, path, test.result)
		}
	}
}

func newDir(t *testing.T) *Dir {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCreateOpen(t *testing.T) {
	d := newDir(t)

	if err := d.Create("data", 10); err != nil {
		t.Fatal(err)
	}
	if err := d.Create("data", 10); !errors.Is(err, os.ErrExist) {
		t.Errorf("duplicate create: %v", err)
	}
	if _, err := d.Open("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("open missing: %v", err)
	}

	f, err := d.Open("data")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	length, err := f.Length()
	if err != nil || length != 10 {
		t.Fatalf("Length=%v,%v, expected 10", length, err)
	}

	n, err := f.Write([]byte("Hello, world!"))
	if err != nil || n != 10 {
		t.Errorf("Write=%v,%v, expected 10 (clipped)", n, err)
	}
	if f.Tell() != 10 {
		t.Errorf("Tell=%v, expected 10", f.Tell())
	}
	n, err = f.Write([]byte("x"))
	if err != nil || n != 0 {
		t.Errorf("Write at EOF=%v,%v, expected 0", n, err)
	}

	f.Seek(7)
	buf := make([]byte, 8)
	n, err = f.Read(buf)
	if err != nil || n != 3 {
		t.Fatalf("Read=%v,%v, expected 3", n, err)
	}
	if !bytes.Equal(buf[:n], []byte("wor")) {
		t.Errorf("Read data %q, expected \"wor\"", buf[:n])
	}
	n, err = f.Read(buf)
	if err != nil || n != 0 {
		t.Errorf("Read at EOF=%v,%v, expected 0", n, err)
	}
}

func TestDenyWrite(t *testing.T) {
	d := newDir(t)

	if err := d.Create("prog", 4); err != nil {
		t.Fatal(err)
	}
	image, err := d.Open("prog")
	if err != nil {
		t.Fatal(err)
	}
	image.DenyWrite()

	f, err := d.Open("prog")
	if err != nil {
		t.Fatal(err)
	}
	if !f.WriteDenied() {
		t.Errorf("second handle not write-denied")
	}
	n, err := f.Write([]byte("abcd"))
	if err != nil || n != 0 {
		t.Errorf("denied Write=%v,%v, expected 0", n, err)
	}

	if err := image.Close(); err != nil {
		t.Fatal(err)
	}
	if f.WriteDenied() {
		t.Errorf("write still denied after image close")
	}
	n, err = f.Write([]byte("abcd"))
	if err != nil || n != 4 {
		t.Errorf("Write=%v,%v, expected 4", n, err)
	}
	f.Close()
}

func TestRemoveOpen(t *testing.T) {
	d := newDir(t)

	if err := d.Create("tmp", 3); err != nil {
		t.Fatal(err)
	}
	f, err := d.Open("tmp")
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Remove("tmp"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Open("tmp"); err == nil {
		t.Errorf("removed file opened")
	}
	if n, err := f.Write([]byte("abc")); err != nil || n != 3 {
		t.Errorf("Write to removed file=%v,%v, expected 3", n, err)
	}
	if err := f.Close(); err != nil {
		t.Error(err)
	}
	if err := d.Remove("tmp"); err == nil {
		t.Errorf("double remove succeeded")
	}
}
