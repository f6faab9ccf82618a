// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coredev/corecomm/control"
	"github.com/coredev/corecomm/session"
)

var identCmd = &cobra.Command{
	Use:   "ident",
	Short: "Check the device's identity and gateware version",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		fmt.Printf("gateware version: %s\n", d.GatewareVersion())
		fmt.Printf("software version: %s\n", session.SoftwareVersion)
		if !control.VersionsMatch(d.GatewareVersion(), session.SoftwareVersion) {
			fmt.Println("warning: gateware/software version mismatch")
		}
		return nil
	},
}
