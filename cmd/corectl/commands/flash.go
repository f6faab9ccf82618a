// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coredev/corecomm/embedmap"
	"github.com/coredev/corecomm/session"
)

var flashCmd = &cobra.Command{
	Use:   "flash",
	Short: "Read, write, erase, or remove entries in the device's flash key/value store",
}

var flashReadCmd = &cobra.Command{
	Use:   "read <key>",
	Short: "Read one flash key/value entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		value, err := d.FlashRead(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(value) == 0 {
			fmt.Println("(no such key)")
			return nil
		}
		_, err = os.Stdout.Write(value)
		return err
	},
}

var flashWriteCmd = &cobra.Command{
	Use:   "write <key> <file>",
	Short: "Write the contents of file to one flash key/value entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		return d.FlashWrite(context.Background(), args[0], value)
	},
}

var flashEraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase the entire flash key/value store",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		return d.FlashErase(context.Background())
	},
}

var flashRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove one flash key/value entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		return d.FlashRemove(context.Background(), args[0])
	},
}

// openSession opens the configured channel and the driver session together,
// the pattern every control subcommand shares.
func openSession() (*session.Driver, error) {
	ch, err := openChannel()
	if err != nil {
		return nil, err
	}
	return session.Open(context.Background(), ch, cfg.Device.Address, session.WithEmbeddingMap(embedmap.New()))
}

func init() {
	flashCmd.AddCommand(flashReadCmd)
	flashCmd.AddCommand(flashWriteCmd)
	flashCmd.AddCommand(flashEraseCmd)
	flashCmd.AddCommand(flashRemoveCmd)
}
