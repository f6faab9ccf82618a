// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the corectl version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("corectl %s (%s)\n", Version, Commit)
		return nil
	},
}
