// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coredev/corecomm/rpcserver"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the loaded kernel and serve its RPCs until it finishes",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		hooks := &rpcserver.Hooks{
			OnLocalError: func(err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "local RPC error: %v\n", err)
			},
		}
		if err := d.Run(context.Background(), hooks); err != nil {
			return err
		}
		fmt.Println("kernel finished")
		return nil
	},
}
