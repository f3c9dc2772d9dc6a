//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"fmt"
)

func sysHalt(proc *Process, a *sysargs) (int32, error) {
	proc.log.Debug("halt")
	proc.kern.Halt()
	return 0, ErrHalted
}

func sysExit(proc *Process, a *sysargs) (int32, error) {
	return 0, &Termination{
		Status: a.int(0),
	}
}

func sysExec(proc *Process, a *sysargs) (int32, error) {
	child, err := proc.kern.Spawn(a.str, proc, nil)
	if err != nil {
		proc.log.Debug("exec failed", "cmdline", a.str, "error", err)
		return -1, nil
	}
	return int32(child.pid), nil
}

func sysWait(proc *Process, a *sysargs) (int32, error) {
	return proc.wait(PID(a.int(0)))
}

// sysFibonacci computes the nth Fibonacci number. The result wraps
// around on overflow.
func sysFibonacci(proc *Process, a *sysargs) (int32, error) {
	n := a.int(0)
	if n < 0 {
		return 0, fmt.Errorf("fibonacci(%d): %w", n, EINVAL)
	}
	var f0, f1 int32 = 0, 1
	for i := int32(0); i < n; i++ {
		f0, f1 = f1, f0+f1
	}
	return f0, nil
}

func sysMaxOfFour(proc *Process, a *sysargs) (int32, error) {
	result := a.int(0)
	for i := 1; i < MaxArgs; i++ {
		if v := a.int(i); v > result {
			result = v
		}
	}
	return result, nil
}
