//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"
)

// PrintProcesses prints the process table to w.
func (kern *Kernel) PrintProcesses(w io.Writer) {
	tab := tabulate.New(tabulate.Unicode)
	tab.Header("PID").SetAlign(tabulate.MR)
	tab.Header("PPID").SetAlign(tabulate.MR)
	tab.Header("NAME").SetAlign(tabulate.ML)
	tab.Header("STATE").SetAlign(tabulate.ML)
	tab.Header("EXIT").SetAlign(tabulate.MR)
	tab.Header("CALLS").SetAlign(tabulate.MR)
	tab.Header("READ").SetAlign(tabulate.MR)
	tab.Header("WRITTEN").SetAlign(tabulate.MR)
	tab.Header("STIME").SetAlign(tabulate.MR)

	for _, proc := range kern.Processes() {
		state := proc.State()
		rusage := proc.RUsage()

		row := tab.Row()
		row.Column(proc.pid.String())
		row.Column(proc.ppid.String())
		row.Column(proc.name)
		row.Column(state.String())
		if state >= SZOMB {
			row.Column(fmt.Sprintf("%d", proc.ExitStatus()))
		} else {
			row.Column("")
		}
		row.Column(fmt.Sprintf("%d", rusage.Calls))
		row.Column(fmt.Sprintf("%d", rusage.Read))
		row.Column(fmt.Sprintf("%d", rusage.Written))
		row.Column(rusage.Stime.String())
	}
	tab.Print(w)
}
