//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"errors"
	"fmt"
	"time"
)

// TrapFrame holds the user register state of a system call trap.
type TrapFrame struct {
	// ESP is the user stack pointer at the time of the trap.
	ESP uint32
	// EAX is the return value register.
	EAX uint32
}

// Termination is returned by Dispatch when the process must not
// return to user mode.
type Termination struct {
	Status int32
	Cause  error
}

func (t *Termination) Error() string {
	if t.Cause != nil {
		return fmt.Sprintf("terminated with %d: %v", t.Status, t.Cause)
	}
	return fmt.Sprintf("exit(%d)", t.Status)
}

func (t *Termination) Unwrap() error {
	return t.Cause
}

// Dispatch decodes the system call from the user stack of the trap
// frame, validates its arguments, and runs it. The result is stored
// into tf.EAX. A nil error resumes the process in user mode. A
// *Termination error terminates the process with its status, and
// ErrHalted unwinds the process without status.
func (kern *Kernel) Dispatch(proc *Process, tf *TrapFrame) error {
	if kern.isHalted() {
		return ErrHalted
	}
	start := time.Now()

	a, err := decodeSyscall(proc.pd, tf.ESP)
	if err != nil {
		proc.account(RUsage{
			Stime: time.Since(start),
			Calls: 1,
		})
		return kern.fatal(proc, a, err)
	}
	proc.ktraceCall(a)

	ret, err := sysent[a.call].impl(proc, a)

	proc.account(RUsage{
		Stime: time.Since(start),
		Calls: 1,
	})

	if err != nil {
		var term *Termination
		if errors.As(err, &term) {
			tf.EAX = uint32(term.Status)
			return err
		}
		if errors.Is(err, ErrHalted) {
			return err
		}
		return kern.fatal(proc, a, err)
	}
	tf.EAX = uint32(ret)
	proc.ktraceRet(a, ret)

	return nil
}

func (kern *Kernel) fatal(proc *Process, a *sysargs, err error) error {
	if errors.Is(err, ENOSYS) {
		proc.log.Warn("unknown system call", "error", err)
	} else if a != nil {
		proc.log.Debug("fatal system call", "call", a.call, "error", err)
	} else {
		proc.log.Debug("fatal trap", "error", err)
	}
	return &Termination{
		Status: -1,
		Cause:  err,
	}
}

// decodeSyscall reads the call number and its arguments from the user
// stack at esp, and validates all pointer arguments.
func decodeSyscall(as AddressSpace, esp uint32) (*sysargs, error) {
	nr, err := readWord(as, esp)
	if err != nil {
		return nil, fmt.Errorf("call number: %w", err)
	}
	call, ent, ok := lookupSyscall(nr)
	if !ok {
		return nil, fmt.Errorf("system call %d: %w", nr, ENOSYS)
	}
	a := &sysargs{
		call: call,
	}
	for i := range ent.args {
		a.words[i], err = readWord(as, esp+4*uint32(i+1))
		if err != nil {
			return a, fmt.Errorf("%s: argument %d: %w", call, i, err)
		}
	}
	for i, kind := range ent.args {
		switch kind {
		case argString:
			a.str, err = copyInString(as, a.words[i])
			if err != nil {
				return a, fmt.Errorf("%s: %w", call, err)
			}

		case argBufIn:
			if a.words[i] == 0 {
				return a, fmt.Errorf("%s: null buffer: %w", call, EFAULT)
			}
			a.bufVA = a.words[i]
			a.buf, err = copyIn(as, a.bufVA, a.words[i+1])
			if err != nil {
				return a, fmt.Errorf("%s: %w", call, err)
			}

		case argBufOut:
			if a.words[i] == 0 {
				return a, fmt.Errorf("%s: null buffer: %w", call, EFAULT)
			}
			a.bufVA = a.words[i]
			err = checkBuffer(as, a.bufVA, a.words[i+1], true)
			if err != nil {
				return a, fmt.Errorf("%s: %w", call, err)
			}
			a.buf = make([]byte, a.words[i+1])
		}
	}
	return a, nil
}
