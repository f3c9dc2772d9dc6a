//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package kernel implements the system-call boundary of user
// processes. The kernel decodes system calls from the user stack,
// validates all user pointers against the process address space, and
// runs the file and process operations on behalf of the process.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/markkurossi/userprog/fs"
)

// ErrHalted is returned when the machine has been powered off.
var ErrHalted = errors.New("machine halted")

// ZombieMax is the number of reaped processes kept for the process
// table.
const ZombieMax = 16

// Kernel implements the user process kernel.
type Kernel struct {
	params   Params
	log      hclog.Logger
	fs       fs.FileSystem
	console  Console
	fsLock   sync.Mutex
	traceM   sync.Mutex
	m        sync.Mutex
	nextPID  PID
	procs    map[PID]*Process
	zombies  []*Process
	halted   chan struct{}
	haltOnce sync.Once
}

// New creates a new kernel.
func New(params *Params) *Kernel {
	kern := &Kernel{
		procs:  make(map[PID]*Process),
		halted: make(chan struct{}),
	}
	if params != nil {
		kern.params = *params
	}
	if kern.params.TraceOut == nil {
		kern.params.TraceOut = os.Stdout
	}
	kern.log = kern.params.Logger
	if kern.log == nil {
		level := hclog.Warn
		if kern.params.Verbose {
			level = hclog.Debug
		}
		kern.log = hclog.New(&hclog.LoggerOptions{
			Name:   "kernel",
			Level:  level,
			Output: os.Stderr,
		})
	}
	kern.fs = kern.params.FS
	if kern.fs == nil {
		kern.fs = fs.Empty{}
	}
	kern.console = kern.params.Console
	if kern.console == nil {
		kern.console = NewConsole(os.Stdin, os.Stdout)
	}
	return kern
}

// Halt powers off the machine. All processes are unwound at their
// next system call.
func (kern *Kernel) Halt() {
	kern.haltOnce.Do(func() {
		kern.log.Info("machine halted")
		close(kern.halted)
	})
}

// Halted returns a channel that is closed when the machine halts.
func (kern *Kernel) Halted() <-chan struct{} {
	return kern.halted
}

func (kern *Kernel) isHalted() bool {
	select {
	case <-kern.halted:
		return true
	default:
		return false
	}
}

// Run runs the command line as an initial process and waits until it
// exits. The console defaults to the kernel console.
func (kern *Kernel) Run(ctx context.Context, cmdline string,
	console Console) (int32, error) {

	proc, err := kern.Spawn(cmdline, nil, console)
	if err != nil {
		return -1, err
	}
	select {
	case <-proc.Done():
		kern.reap(proc)
		if kern.isHalted() {
			return -1, ErrHalted
		}
		return proc.ExitStatus(), nil
	case <-kern.halted:
		proc.disown()
		return -1, ErrHalted
	case <-ctx.Done():
		proc.disown()
		return -1, ctx.Err()
	}
}

// Spawn creates a new process for the command line and starts it. The
// first word of the command line names the program.
func (kern *Kernel) Spawn(cmdline string, parent *Process,
	console Console) (*Process, error) {

	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command line: %w", EINVAL)
	}
	prog, ok := kern.params.Programs[args[0]]
	if !ok {
		return nil, fmt.Errorf("%s: %w", args[0], kern.lookupError(args[0]))
	}
	proc, err := kern.CreateProcess(cmdline, parent, console)
	if err != nil {
		return nil, err
	}
	proc.openImage(args[0])
	proc.Start(prog)

	return proc, nil
}

// lookupError returns the error for a missing program: ENOEXEC if
// the name is a file and ENOENT otherwise.
func (kern *Kernel) lookupError(name string) error {
	kern.fsLock.Lock()
	defer kern.fsLock.Unlock()

	f, err := kern.fs.Open(name)
	if err != nil {
		return ENOENT
	}
	f.Close()
	return ENOEXEC
}

// CreateProcess creates a new process with its address space and
// initial user stack for the command line. The process is not
// started.
func (kern *Kernel) CreateProcess(cmdline string, parent *Process,
	console Console) (*Process, error) {

	if kern.isHalted() {
		return nil, ErrHalted
	}
	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command line: %w", EINVAL)
	}
	pd, esp, err := load(args)
	if err != nil {
		return nil, err
	}
	if console == nil {
		if parent != nil {
			console = parent.console
		} else {
			console = kern.console
		}
	}
	name := args[0]
	if len(name) > NameMax {
		name = name[:NameMax]
	}

	kern.m.Lock()
	kern.nextPID++
	proc := &Process{
		kern:     kern,
		pid:      kern.nextPID,
		name:     name,
		cmdline:  cmdline,
		pd:       pd,
		esp:      esp,
		console:  console,
		children: make(map[PID]*Process),
		done:     make(chan struct{}),
	}
	kern.procs[proc.pid] = proc
	kern.m.Unlock()

	proc.log = kern.log.With("pid", proc.pid, "name", proc.name)

	if parent != nil {
		proc.ppid = parent.pid
		parent.m.Lock()
		parent.children[proc.pid] = proc
		parent.m.Unlock()
	}
	proc.log.Debug("process created", "cmdline", cmdline)

	return proc, nil
}

// GetProcess returns the process by its ID.
func (kern *Kernel) GetProcess(pid PID) (*Process, bool) {
	kern.m.Lock()
	defer kern.m.Unlock()

	proc, ok := kern.procs[pid]
	return proc, ok
}

// reap removes the terminated process from the process table. The
// latest ZombieMax reaped processes are kept for the process table
// listing.
func (kern *Kernel) reap(proc *Process) {
	proc.SetState(SDEAD)

	kern.m.Lock()
	defer kern.m.Unlock()

	if _, ok := kern.procs[proc.pid]; !ok {
		return
	}
	delete(kern.procs, proc.pid)
	kern.zombies = append(kern.zombies, proc)
	if len(kern.zombies) > ZombieMax {
		n := copy(kern.zombies, kern.zombies[len(kern.zombies)-ZombieMax:])
		clear(kern.zombies[n:])
		kern.zombies = kern.zombies[:n]
	}
	proc.log.Debug("process reaped")
}

// Processes returns all live processes and the most recently reaped
// processes ordered by their IDs.
func (kern *Kernel) Processes() []*Process {
	kern.m.Lock()
	result := make([]*Process, 0, len(kern.procs)+len(kern.zombies))
	for _, proc := range kern.procs {
		result = append(result, proc)
	}
	result = append(result, kern.zombies...)
	kern.m.Unlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].pid < result[j].pid
	})
	return result
}
