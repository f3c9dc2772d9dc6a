//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"fmt"
)

func boolResult(ok bool) int32 {
	if ok {
		return 1
	}
	return 0
}

func sysCreate(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	err := proc.kern.fs.Create(a.str, int64(a.uint(1)))
	if err != nil {
		proc.log.Debug("create failed", "file", a.str, "errno",
			Errno(-mapError(err)))
	}
	return boolResult(err == nil), nil
}

func sysRemove(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	err := proc.kern.fs.Remove(a.str)
	if err != nil {
		proc.log.Debug("remove failed", "file", a.str, "errno",
			Errno(-mapError(err)))
	}
	return boolResult(err == nil), nil
}

func sysOpen(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	f, err := proc.kern.fs.Open(a.str)
	if err != nil {
		proc.log.Debug("open failed", "file", a.str, "errno",
			Errno(-mapError(err)))
		return -1, nil
	}
	fd, err := proc.fds.Alloc(f)
	if err != nil {
		proc.log.Debug("open failed", "file", a.str, "error", err)
		f.Close()
		return -1, nil
	}
	return int32(fd), nil
}

func sysFilesize(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	f, err := proc.fds.Get(a.int(0))
	if err != nil {
		return 0, err
	}
	length, err := f.Length()
	if err != nil {
		proc.log.Warn("filesize failed", "fd", a.int(0), "error", err)
		return -1, nil
	}
	return int32(length), nil
}

func sysRead(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	fd := a.int(0)
	var n int

	switch fd {
	case FDStdin:
		for n < len(a.buf) {
			b, err := proc.console.ReadByte()
			if err != nil || b == 0 {
				break
			}
			a.buf[n] = b
			n++
		}

	case FDStdout:
		return 0, fmt.Errorf("read from stdout: %w", EBADF)

	default:
		f, err := proc.fds.Get(fd)
		if err != nil {
			return 0, err
		}
		n, err = f.Read(a.buf)
		if err != nil {
			proc.log.Warn("read failed", "fd", fd, "error", err)
			return -1, nil
		}
	}
	if err := copyOut(proc.pd, a.bufVA, a.buf[:n]); err != nil {
		return 0, err
	}
	proc.account(RUsage{
		Read: uint64(n),
	})
	return int32(n), nil
}

func sysWrite(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	fd := a.int(0)
	var n int

	switch fd {
	case FDStdin:
		return 0, fmt.Errorf("write to stdin: %w", EBADF)

	case FDStdout:
		if _, err := proc.console.Write(a.buf); err != nil {
			proc.log.Warn("console write failed", "error", err)
		}
		n = len(a.buf)

	default:
		f, err := proc.fds.Get(fd)
		if err != nil {
			return 0, err
		}
		n, err = f.Write(a.buf)
		if err != nil {
			proc.log.Warn("write failed", "fd", fd, "error", err)
			return -1, nil
		}
	}
	proc.account(RUsage{
		Written: uint64(n),
	})
	return int32(n), nil
}

func sysSeek(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	f, err := proc.fds.Get(a.int(0))
	if err != nil {
		return 0, err
	}
	f.Seek(int64(a.uint(1)))
	return 0, nil
}

func sysTell(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	f, err := proc.fds.Get(a.int(0))
	if err != nil {
		return 0, err
	}
	return int32(f.Tell()), nil
}

func sysClose(proc *Process, a *sysargs) (int32, error) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	f, err := proc.fds.Free(a.int(0))
	if err != nil {
		return 0, err
	}
	if err := f.Close(); err != nil {
		proc.log.Warn("close failed", "fd", a.int(0), "error", err)
	}
	return 0, nil
}
