//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package kernel

import (
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/markkurossi/userprog/fs"
)

// Params define kernel parameters.
type Params struct {
	Trace    bool
	Verbose  bool
	TraceOut io.Writer
	Logger   hclog.Logger
	FS       fs.FileSystem
	Console  Console
	Programs map[string]Program
}
