// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Read or clear the device's log buffer",
}

var logShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the device's log buffer",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		text, err := d.GetLog(context.Background())
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

var logClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the device's log buffer",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		return d.ClearLog(context.Background())
	},
}

func init() {
	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logClearCmd)
}
