// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <image>",
	Short: "Upload a compiled kernel library image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Load(context.Background(), image); err != nil {
			return err
		}
		fmt.Println("kernel loaded")
		return nil
	},
}
