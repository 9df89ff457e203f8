// main.go - x86grp: run x86 opcode group instructions and Lua scenarios
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app carries the settings shared by every subcommand
type app struct {
	logLevel string
	color    string

	log    *slog.Logger
	colour bool
	width  int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "x86grp",
		Short: "Execute x86 opcode group instructions",
		Long: `x86grp runs the 386 opcode group core (80-83, 8F, C0/C1, C6/C7, D0-D3,
F6/F7, FE, FF) against a flat memory, either from hex bytes on the command
line or from Lua scenario scripts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.color, "color", "auto", "Colour output (auto, always, never)")

	rootCmd.AddCommand(newExecCmd(a), newScriptCmd(a))
	return rootCmd
}

// setup builds the logger and works out colour and width for out
func (a *app) setup(out, errOut io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	a.log = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	a.width = 80
	isTerm := false
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		isTerm = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			a.width = w
		}
	}

	switch a.color {
	case "auto":
		a.colour = isTerm
	case "always":
		a.colour = true
	case "never":
		a.colour = false
	default:
		return fmt.Errorf("--color must be auto, always or never, got %q", a.color)
	}
	return nil
}
