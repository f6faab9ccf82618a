// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/coredev/corecomm/session"
)

// consoleCommands lists the words the console's tab completer and dispatch
// table recognize.
var consoleCommands = []string{"ident", "clock", "log-show", "log-clear", "flash-read", "flash-write", "flash-erase", "flash-remove", "load", "run", "quit"}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open an interactive line-editing console against the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openSession()
		if err != nil {
			return err
		}
		defer d.Close()

		fmt.Printf("connected to %s (gateware %s)\n", cfg.Device.Address, d.GatewareVersion())
		fmt.Println("type 'quit' or ^d to exit")

		input := liner.NewLiner()
		defer input.Close()
		input.SetCtrlCAborts(true)
		input.SetCompleter(func(line string) []string {
			var matches []string
			for _, c := range consoleCommands {
				if strings.HasPrefix(c, line) {
					matches = append(matches, c)
				}
			}
			return matches
		})

		prompt := fmt.Sprintf("corectl:%s> ", cfg.Device.Address)
		for {
			line, err := input.Prompt(prompt)
			if err == liner.ErrPromptAborted {
				continue
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			input.AppendHistory(line)

			if line == "quit" {
				return nil
			}

			if err := dispatchConsoleLine(context.Background(), d, line); err != nil {
				fmt.Println("error:", err)
			}
		}
	},
}

func dispatchConsoleLine(ctx context.Context, d *session.Driver, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "ident":
		fmt.Printf("gateware version: %s\n", d.GatewareVersion())
	case "clock":
		if len(fields) != 2 {
			return fmt.Errorf("usage: clock internal|external")
		}
		return d.SwitchClock(ctx, fields[1] == "external")
	case "log-show":
		text, err := d.GetLog(ctx)
		if err != nil {
			return err
		}
		fmt.Print(text)
	case "log-clear":
		return d.ClearLog(ctx)
	case "flash-read":
		if len(fields) != 2 {
			return fmt.Errorf("usage: flash-read <key>")
		}
		value, err := d.FlashRead(ctx, fields[1])
		if err != nil {
			return err
		}
		fmt.Printf("%q\n", value)
	case "flash-write":
		if len(fields) != 3 {
			return fmt.Errorf("usage: flash-write <key> <value>")
		}
		return d.FlashWrite(ctx, fields[1], []byte(fields[2]))
	case "flash-erase":
		return d.FlashErase(ctx)
	case "flash-remove":
		if len(fields) != 2 {
			return fmt.Errorf("usage: flash-remove <key>")
		}
		return d.FlashRemove(ctx, fields[1])
	case "load":
		return fmt.Errorf("load takes a file path; use \"corectl load <image>\" outside the console")
	case "run":
		return d.Run(ctx, nil)
	default:
		return fmt.Errorf("unknown command %q (try: %s)", fields[0], strings.Join(consoleCommands, ", "))
	}
	return nil
}
