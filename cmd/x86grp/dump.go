// dump.go - Register and flag state printer
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/intuitionamiga/soft386"
)

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

var regOrder = []string{"EAX", "ECX", "EDX", "EBX", "ESP", "EBP", "ESI", "EDI"}

// regCellWidth is the printed width of one "EAX=00000000 " cell
const regCellWidth = 13

// printState writes the general registers wrapped to width, then EIP,
// EFLAGS and any pending fault. Set flags are bold when colour is on.
func printState(w io.Writer, cpu *soft386.CPU_X86, colour bool, width int) {
	perLine := width / regCellWidth
	if perLine < 1 {
		perLine = 1
	}
	if perLine > len(regOrder) {
		perLine = len(regOrder)
	}

	var cells []string
	for i, name := range regOrder {
		cells = append(cells, fmt.Sprintf("%s=%08X", name, cpu.Regs[i]))
	}
	for len(cells) > 0 {
		n := min(perLine, len(cells))
		fmt.Fprintln(w, strings.Join(cells[:n], " "))
		cells = cells[n:]
	}

	fmt.Fprintf(w, "EIP=%08X EFLAGS=%08X [%s]\n", cpu.EIP, uint32(cpu.Flags), flagText(cpu.Flags, colour))
	if f := cpu.PendingFault(); f != nil {
		fmt.Fprintf(w, "fault: %s at %08X\n", f.Vector, f.EIP)
	}
}

func flagText(f soft386.Flags, colour bool) string {
	if !colour {
		return f.String()
	}
	names := strings.Fields(f.String())
	for i, n := range names {
		if n != strings.ToLower(n) {
			names[i] = ansiBold + n + ansiReset
		}
	}
	return strings.Join(names, " ")
}
