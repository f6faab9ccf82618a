// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command corectl is the command-line client for driving a device core
// directly: identity check, clock switch, log and flash operations, kernel
// load/run, an interactive console, and a Prometheus metrics endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/coredev/corecomm/cmd/corectl/commands"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	commands.Version = version
	commands.Commit = commit

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
