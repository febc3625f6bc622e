// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"zub/cmd/zub/cli"
	"zub/lib/store"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:    "init",
		Summary: "Create a new repository",
		Usage:   "zub init <path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("init requires exactly one path argument")
			}
			repo, err := store.Init(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("initialized repository at %s\n", repo.Root)
			return nil
		},
	}
}
