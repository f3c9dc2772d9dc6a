//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"errors"
	"fmt"
	"os"

	"github.com/markkurossi/userprog/fs"
)

// Errno defines error numbers.
type Errno int32

// Error numbers.
const (
	ENOENT       Errno = 2
	ESRCH        Errno = 3
	E2BIG        Errno = 7
	ENOEXEC      Errno = 8
	EBADF        Errno = 9
	ECHILD       Errno = 10
	EFAULT       Errno = 14
	EEXIST       Errno = 17
	EINVAL       Errno = 22
	EMFILE       Errno = 24
	ENAMETOOLONG Errno = 36
	ENOSYS       Errno = 38
)

func (err Errno) Error() string {
	return err.String()
}

func (err Errno) String() string {
	name, ok := errnoNames[err]
	if ok {
		desc, ok := errnoDescriptions[err]
		if ok {
			return name + " " + desc
		}
		return name
	}
	return fmt.Sprintf("{Errno %d}", err)
}

// Description returns a short description about the error code.
func (err Errno) Description() string {
	desc, ok := errnoDescriptions[err]
	if ok {
		return desc
	}
	return fmt.Sprintf("{Errno %d}", err)
}

var errnoNames = map[Errno]string{
	ENOENT:       "ENOENT",
	ESRCH:        "ESRCH",
	E2BIG:        "E2BIG",
	ENOEXEC:      "ENOEXEC",
	EBADF:        "EBADF",
	ECHILD:       "ECHILD",
	EFAULT:       "EFAULT",
	EEXIST:       "EEXIST",
	EINVAL:       "EINVAL",
	EMFILE:       "EMFILE",
	ENAMETOOLONG: "ENAMETOOLONG",
	ENOSYS:       "ENOSYS",
}

var errnoDescriptions = map[Errno]string{
	ENOENT:       "No such file or directory",
	ESRCH:        "No such process",
	E2BIG:        "Argument list too long",
	ENOEXEC:      "Exec format error",
	EBADF:        "Bad file descriptor",
	ECHILD:       "No child processes",
	EFAULT:       "Bad address",
	EEXIST:       "File exists",
	EINVAL:       "Invalid argument",
	EMFILE:       "Too many open files",
	ENAMETOOLONG: "File name too long",
	ENOSYS:       "Function not implemented",
}

// mapError maps the error to a negative error number.
func mapError(err error) int32 {
	if err == nil {
		return 0
	}
	var errno Errno
	if errors.As(err, &errno) {
		return int32(-errno)
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		return int32(-ENOENT)
	case errors.Is(err, os.ErrExist):
		return int32(-EEXIST)
	case errors.Is(err, fs.ErrNameTooLong):
		return int32(-ENAMETOOLONG)
	case errors.Is(err, fs.ErrInvalidName):
		return int32(-EINVAL)
	default:
		return int32(-EINVAL)
	}
}
