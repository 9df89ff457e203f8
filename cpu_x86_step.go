// cpu_x86_step.go - Prefix pre-scan and group dispatch
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import (
	"fmt"
)

// maxInstructionLength is the architectural limit. Fetching a byte past it,
// whether prefix, opcode, ModR/M, displacement or immediate, raises #GP.
const maxInstructionLength = 15

// Step executes a single instruction. Only the opcode groups are
// implemented; any other opcode returns ErrOpcodeNotImplemented with EIP
// left after the opcode byte.
func (c *CPU_X86) Step() error {
	c.clearPrefix()
	c.start = c.EIP
	c.opcode = 0
	c.length = 0
	defer func() { c.length = -1 }()

	for {
		b, err := c.ops.FetchByte(c)
		if err != nil {
			return err
		}
		c.opcode = b

		switch b {
		case 0x26: // ES:
			c.Prefix.Seg = SegES
		case 0x2E: // CS:
			c.Prefix.Seg = SegCS
		case 0x36: // SS:
			c.Prefix.Seg = SegSS
		case 0x3E: // DS:
			c.Prefix.Seg = SegDS
		case 0x64: // FS:
			c.Prefix.Seg = SegFS
		case 0x65: // GS:
			c.Prefix.Seg = SegGS
		case 0x66: // Operand size
			c.Prefix.OpSize = true
		case 0x67: // Address size
			c.Prefix.AddrSize = true
		case 0xF0: // LOCK
			c.Prefix.Lock = true
		case 0xF2, 0xF3: // REPNE, REP/REPE: no effect on group opcodes
		default:
			handler := groupOps[b]
			if handler == nil {
				c.log.Warn("x86: opcode has no group handler", "opcode", fmt.Sprintf("0x%02X", b), "eip", fmt.Sprintf("0x%08X", c.start))
				return fmt.Errorf("opcode 0x%02X at EIP=0x%08X: %w", b, c.start, ErrOpcodeNotImplemented)
			}
			return handler(c)
		}
	}
}

// Run executes up to n instructions and stops at the first error.
// It returns the number of instructions that completed.
func (c *CPU_X86) Run(n int) (int, error) {
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			return i, err
		}
	}
	return n, nil
}
