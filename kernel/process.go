//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/markkurossi/userprog/fs"
	"github.com/markkurossi/userprog/mmu"
)

// NameMax is the maximum length of a process name.
const NameMax = 15

// PID defines process IDs.
type PID int32

func (pid PID) String() string {
	return fmt.Sprintf("%d", int32(pid))
}

// Process defines a user process.
type Process struct {
	m        sync.Mutex
	kern     *Kernel
	log      hclog.Logger
	pid      PID
	ppid     PID
	name     string
	cmdline  string
	pd       *mmu.PageDir
	esp      uint32
	console  Console
	image    fs.File
	fds      FDTable
	children map[PID]*Process
	state    ProcState
	exited   bool
	orphan   bool
	exitVal  int32
	done     chan struct{}
	rusage   RUsage
}

// ProcState defines process states.
type ProcState int

// Process states.
const (
	SIDL ProcState = iota
	SRUN
	SSLEEP
	SZOMB
	SDEAD
)

var stateNames = map[ProcState]string{
	SIDL:   "idl",
	SRUN:   "run",
	SSLEEP: "sleep",
	SZOMB:  "zomb",
	SDEAD:  "dead",
}

func (st ProcState) String() string {
	name, ok := stateNames[st]
	if ok {
		return name
	}
	return fmt.Sprintf("{ProcState %d}", st)
}

// RUsage provides process resource usage information.
type RUsage struct {
	Stime   time.Duration
	Calls   uint64
	Read    uint64
	Written uint64
}

// Add adds the argument RUsage data to this RUsage instance.
func (rusage *RUsage) Add(o RUsage) {
	rusage.Stime += o.Stime
	rusage.Calls += o.Calls
	rusage.Read += o.Read
	rusage.Written += o.Written
}

func (rusage RUsage) String() string {
	return fmt.Sprintf("calls=%v read=%v written=%v stime=%v",
		rusage.Calls, rusage.Read, rusage.Written, rusage.Stime)
}

// PID returns the process ID.
func (proc *Process) PID() PID {
	return proc.pid
}

// Name returns the process name.
func (proc *Process) Name() string {
	return proc.name
}

// PageDir returns the process page directory.
func (proc *Process) PageDir() *mmu.PageDir {
	return proc.pd
}

// Console returns the process console.
func (proc *Process) Console() Console {
	return proc.console
}

// Done returns a channel that is closed when the process has exited.
func (proc *Process) Done() <-chan struct{} {
	return proc.done
}

// ExitStatus returns the process exit status. It is valid after the
// process is done.
func (proc *Process) ExitStatus() int32 {
	proc.m.Lock()
	defer proc.m.Unlock()
	return proc.exitVal
}

// SetState sets the process state.
func (proc *Process) SetState(st ProcState) {
	proc.m.Lock()
	proc.state = st
	proc.m.Unlock()
}

// State returns the process state.
func (proc *Process) State() ProcState {
	proc.m.Lock()
	defer proc.m.Unlock()
	return proc.state
}

// RUsage returns the process resource usage.
func (proc *Process) RUsage() RUsage {
	proc.m.Lock()
	defer proc.m.Unlock()
	return proc.rusage
}

func (proc *Process) account(o RUsage) {
	proc.m.Lock()
	proc.rusage.Add(o)
	proc.m.Unlock()
}

// Start runs the program on a new kernel thread.
func (proc *Process) Start(prog Program) {
	proc.SetState(SRUN)
	go func() {
		defer proc.finish()
		status := prog(proc, proc.esp)
		proc.terminate(status)
	}()
}

// Trap enters the kernel with the trap frame. Trap returns to the
// caller only if the process continues running; otherwise it unwinds
// the calling thread.
func (proc *Process) Trap(tf *TrapFrame) {
	err := proc.kern.Dispatch(proc, tf)
	if err == nil {
		return
	}
	var term *Termination
	if errors.As(err, &term) {
		proc.terminate(term.Status)
	}
	runtime.Goexit()
}

// PageFault handles a page fault caused by a user mode access to va.
// The process is terminated and the calling thread is unwound.
func (proc *Process) PageFault(va uint32, write bool) {
	proc.log.Debug("page fault", "va", fmt.Sprintf("0x%08x", va),
		"write", write)
	proc.terminate(-1)
	runtime.Goexit()
}

// terminate records the exit status and prints the termination
// record. Only the first call has an effect.
func (proc *Process) terminate(status int32) {
	proc.m.Lock()
	if proc.exited {
		proc.m.Unlock()
		return
	}
	proc.exited = true
	proc.exitVal = status
	proc.m.Unlock()

	proc.log.Debug("process exit", "status", status)

	proc.kern.fsLock.Lock()
	fmt.Fprintf(proc.console, "%s: exit(%d)\n",
		proc.name, status)
	proc.kern.fsLock.Unlock()

	proc.ktraceExit()
}

// finish releases the process resources and wakes up the parent. It
// runs when the process thread exits.
func (proc *Process) finish() {
	if r := recover(); r != nil {
		proc.log.Error("process panic", "panic", r)
		proc.terminate(-1)
	}

	proc.m.Lock()
	if !proc.exited {
		// Halted machine.
		proc.exited = true
		proc.exitVal = -1
	}
	children := proc.children
	proc.children = make(map[PID]*Process)
	proc.m.Unlock()

	for _, child := range children {
		child.disown()
	}

	var result *multierror.Error

	proc.kern.fsLock.Lock()
	err := proc.fds.CloseAll()
	if err != nil {
		result = multierror.Append(result, err)
	}
	if proc.image != nil {
		err = proc.image.Close()
		if err != nil {
			result = multierror.Append(result,
				fmt.Errorf("close image: %w", err))
		}
		proc.image = nil
	}
	proc.kern.fsLock.Unlock()

	if err := result.ErrorOrNil(); err != nil {
		proc.log.Warn("process cleanup failed", "error", err)
	}
	proc.pd.Destroy()

	proc.m.Lock()
	proc.state = SZOMB
	orphan := proc.orphan
	proc.m.Unlock()

	close(proc.done)
	if orphan {
		proc.kern.reap(proc)
	}
}

// disown marks the process as having no waiter. An orphan is reaped
// as soon as it terminates.
func (proc *Process) disown() {
	proc.m.Lock()
	proc.orphan = true
	zombie := proc.state >= SZOMB
	proc.m.Unlock()

	if zombie {
		proc.kern.reap(proc)
	}
}

// openImage opens the executable image and denies writes to it while
// the process runs.
func (proc *Process) openImage(name string) {
	proc.kern.fsLock.Lock()
	defer proc.kern.fsLock.Unlock()

	f, err := proc.kern.fs.Open(name)
	if err != nil {
		return
	}
	f.DenyWrite()
	proc.image = f
}

// wait waits for the child process to exit and returns its exit
// status. Each child can be waited for once.
func (proc *Process) wait(pid PID) (int32, error) {
	child, err := proc.waitable(pid)
	if err != nil {
		proc.log.Debug("wait failed", "child", pid, "error", err)
		return -1, nil
	}

	proc.SetState(SSLEEP)
	defer proc.SetState(SRUN)

	select {
	case <-child.done:
	case <-proc.kern.halted:
		child.disown()
		return 0, ErrHalted
	}
	proc.kern.reap(child)

	return child.ExitStatus(), nil
}

// waitable removes the child process from the process's children. It
// returns ECHILD if pid is not an unwaited child of the process and
// ESRCH if no such process exists.
func (proc *Process) waitable(pid PID) (*Process, error) {
	proc.m.Lock()
	child, ok := proc.children[pid]
	if ok {
		delete(proc.children, pid)
	}
	proc.m.Unlock()

	if ok {
		return child, nil
	}
	if _, ok := proc.kern.GetProcess(pid); ok {
		return nil, ECHILD
	}
	return nil, ESRCH
}
