// exec.go - x86grp exec: run hex-encoded instructions
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intuitionamiga/soft386"
)

type execOptions struct {
	code     string
	bits     int
	regs     []string
	flags    string
	steps    int
	memSize  int
	loadAddr uint32
}

func newExecCmd(a *app) *cobra.Command {
	o := &execOptions{}

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute instructions given as hex bytes",
		Example: `  x86grp exec --code "80 C0 01" --reg eax=0xFF
  x86grp exec --bits 16 --code "C7 06 34 12 CD AB"
  x86grp exec --code "D3 E0 D3 E0" --reg cl=4 --steps 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, a, o)
		},
	}

	cmd.Flags().StringVar(&o.code, "code", "", "Instruction bytes in hex (spaces allowed)")
	cmd.Flags().IntVar(&o.bits, "bits", 32, "Code segment default size (16 or 32)")
	cmd.Flags().StringArrayVar(&o.regs, "reg", nil, "Initial register value, name=value (repeatable)")
	cmd.Flags().StringVar(&o.flags, "flags", "", "Initial EFLAGS value")
	cmd.Flags().IntVar(&o.steps, "steps", 1, "Number of instructions to execute")
	cmd.Flags().IntVar(&o.memSize, "mem-size", 1024*1024, "Memory size in bytes")
	cmd.Flags().Uint32Var(&o.loadAddr, "load-addr", 0x1000, "Address the code is loaded at")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

// parseHex decodes "80 C0 01", "80c001" or "0x80,0xC0,0x01"
func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer("0x", "", "0X", "", ",", " ").Replace(s)
	s = strings.Join(strings.Fields(s), "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad --code: %w", err)
	}
	return b, nil
}

func parseValue(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func runExec(cmd *cobra.Command, a *app, o *execOptions) error {
	if o.bits != 16 && o.bits != 32 {
		return fmt.Errorf("--bits must be 16 or 32, got %d", o.bits)
	}
	if o.memSize <= 0 {
		return fmt.Errorf("--mem-size must be positive")
	}
	code, err := parseHex(o.code)
	if err != nil {
		return err
	}

	mem := soft386.NewFlatMemory(o.memSize)
	cpu := soft386.NewCPU_X86(mem)
	cpu.SetLogger(a.log)
	cpu.SetDefaultSize(o.bits)
	mem.Load(o.loadAddr, code)
	cpu.EIP = o.loadAddr
	cpu.Regs[soft386.RegESP] = uint32(o.memSize) &^ 3

	for _, r := range o.regs {
		name, value, ok := strings.Cut(r, "=")
		if !ok {
			return fmt.Errorf("--reg %q: want name=value", r)
		}
		v, err := parseValue(value)
		if err != nil {
			return fmt.Errorf("--reg %q: %w", r, err)
		}
		if !cpu.SetRegisterByName(name, v) {
			return fmt.Errorf("--reg %q: unknown register", r)
		}
	}
	if o.flags != "" {
		v, err := parseValue(o.flags)
		if err != nil {
			return fmt.Errorf("--flags: %w", err)
		}
		cpu.SetRegisterByName("eflags", v)
	}

	a.log.Info("x86grp: executing", "bytes", len(code), "bits", o.bits, "steps", o.steps)
	n, runErr := cpu.Run(o.steps)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "executed %d of %d\n", n, o.steps)
	printState(out, cpu, a.colour, a.width)
	if runErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "stopped: %v\n", runErr)
		return runErr
	}
	return nil
}
