//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/markkurossi/userprog/fs"
	"github.com/markkurossi/userprog/kernel"
	"github.com/markkurossi/userprog/user/bin"
)

func main() {
	fFS := flag.String("fs", ".", "filesystem root directory")
	fVerbose := flag.Bool("v", false, "verbose output")
	fLogLevel := flag.String("log-level", "", "log level, overrides -v")
	ktrace := flag.Bool("ktrace", false, "kernel trace")
	fPS := flag.Bool("ps", false, "print process table at exit")
	fListen := flag.String("listen", "", "serve remote run requests at address")
	flag.Parse()

	log.SetFlags(0)

	var logger hclog.Logger
	if len(*fLogLevel) > 0 {
		level := hclog.LevelFromString(*fLogLevel)
		if level == hclog.NoLevel {
			log.Fatalf("invalid log level: %s", *fLogLevel)
		}
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "kernel",
			Level:  level,
			Output: os.Stderr,
		})
	}

	dir, err := fs.NewDir(*fFS)
	if err != nil {
		log.Fatal(err)
	}

	programs := bin.Programs()
	if len(*fListen) > 0 {
		programs = bin.RemotePrograms()
	}

	kern := kernel.New(&kernel.Params{
		Trace:    *ktrace,
		Verbose:  *fVerbose,
		Logger:   logger,
		FS:       dir,
		Programs: programs,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var wg sync.WaitGroup
	for _, arg := range flag.Args() {
		wg.Go(func() {
			_, err := kern.Run(ctx, arg, nil)
			if err != nil {
				log.Printf("%s: %v", arg, err)
			}
		})
	}

	if len(*fListen) > 0 {
		err = serve(ctx, kern, *fListen)
		if err != nil {
			log.Print(err)
		}
	}

	// Wait for all programs to terminate.
	wg.Wait()

	if *fPS {
		fmt.Println()
		kern.PrintProcesses(os.Stdout)
	}
}

func serve(ctx context.Context, kern *kernel.Kernel, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("Listening for run requests at %s", listener.Addr())
	return kern.Serve(ctx, listener)
}
