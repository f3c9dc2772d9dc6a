//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"flag"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"github.com/markkurossi/userprog/kernel"
)

func main() {
	fAddr := flag.String("a", "localhost:9000", "server address")
	fInput := flag.String("i", "", "console input file, - for stdin")
	flag.Parse()

	log.SetFlags(0)

	if len(flag.Args()) == 0 {
		log.Fatalf("usage: uprun [options] cmd [arg...]")
	}

	var input []byte
	var err error
	switch *fInput {
	case "":
	case "-":
		input, err = io.ReadAll(os.Stdin)
	default:
		input, err = os.ReadFile(*fInput)
	}
	if err != nil {
		log.Fatal(err)
	}

	conn, err := net.Dial("tcp", *fAddr)
	if err != nil {
		log.Fatal(err)
	}
	status, err := kernel.RemoteRun(conn, strings.Join(flag.Args(), " "),
		input, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(int(status))
}
