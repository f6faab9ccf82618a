// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var clockCmd = &cobra.Command{
	Use:   "clock [internal|external]",
	Short: "Switch the device's reference clock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var external bool
		switch args[0] {
		case "external":
			external = true
		case "internal":
			external = false
		default:
			return fmt.Errorf("argument must be \"internal\" or \"external\", got %q", args[0])
		}

		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.SwitchClock(context.Background(), external); err != nil {
			return err
		}
		fmt.Println("clock switched")
		return nil
	},
}
