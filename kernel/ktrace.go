//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"fmt"
	"strings"
)

func (proc *Process) ktrace(format string, a ...interface{}) {
	if !proc.kern.params.Trace {
		return
	}
	proc.kern.traceM.Lock()
	defer proc.kern.traceM.Unlock()

	fmt.Fprintf(proc.kern.params.TraceOut, "%5s %-8s ", proc.pid, proc.name)
	fmt.Fprintf(proc.kern.params.TraceOut, format, a...)
	fmt.Fprintln(proc.kern.params.TraceOut)
}

func (proc *Process) ktraceCall(a *sysargs) {
	if !proc.kern.params.Trace {
		return
	}
	const dataLimit = 16

	_, ent, _ := lookupSyscall(uint32(a.call))

	var args []string
	for i, kind := range ent.args {
		switch kind {
		case argInt:
			args = append(args, fmt.Sprintf("%d", a.int(i)))
		case argUint:
			args = append(args, fmt.Sprintf("%d", a.uint(i)))
		case argString:
			args = append(args, fmt.Sprintf("%q", a.str))
		case argBufIn:
			if len(a.buf) <= dataLimit {
				args = append(args, fmt.Sprintf("%q", a.buf))
			} else {
				args = append(args, fmt.Sprintf("%q...", a.buf[:dataLimit]))
			}
		case argBufOut:
			args = append(args, fmt.Sprintf("0x%08x", a.uint(i)))
		}
	}
	proc.ktrace("CALL %s(%s)", a.call, strings.Join(args, ", "))
}

func (proc *Process) ktraceRet(a *sysargs, ret int32) {
	if !proc.kern.params.Trace {
		return
	}
	switch a.call {
	case SysHalt, SysExit, SysSeek, SysClose:
		proc.ktrace("RET  %s", a.call)

	case SysRead:
		if ret > 0 {
			proc.ktrace("RET  %s %d %q", a.call, ret, a.buf[:ret])
		} else {
			proc.ktrace("RET  %s %d", a.call, ret)
		}

	default:
		proc.ktrace("RET  %s %d", a.call, ret)
	}
}

func (proc *Process) ktraceExit() {
	if !proc.kern.params.Trace {
		return
	}
	proc.ktrace("EXIT %d", proc.ExitStatus())
	proc.ktrace("RUSG %v", proc.RUsage())
}
