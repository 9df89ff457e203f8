// script.go - x86grp script: run Lua scenarios
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"github.com/spf13/cobra"

	"github.com/intuitionamiga/soft386/script"
)

func newScriptCmd(a *app) *cobra.Command {
	var memSize int

	cmd := &cobra.Command{
		Use:   "script FILE...",
		Short: "Run Lua scenario scripts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, file := range args {
				e := script.New(memSize, cmd.OutOrStdout())
				e.SetLogger(a.log)
				err := e.RunFile(file)
				e.Close()
				if err != nil {
					return err
				}
				a.log.Info("x86grp: script passed", "file", file)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&memSize, "mem-size", 1024*1024, "Memory size in bytes")
	return cmd
}
