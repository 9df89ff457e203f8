// cpu_x86_operands.go - Operand access contract used by the group handlers
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

// ModRM is a decoded addressing-mode descriptor.
type ModRM struct {
	Mod      byte
	Register byte // reg field: group selector or register operand
	RM       byte

	// Memory operands only
	Memory   bool
	Segment  int
	Offset   uint32
	ESPBased bool // ESP was the SIB base
}

// Operands is the collaborator that owns the instruction stream, operand
// locations and the stack. Every method may fail with a *Fault, which the
// handler propagates unchanged.
type Operands interface {
	// ParseModRM consumes the ModR/M byte and any SIB/displacement that
	// follow, using 32-bit addressing when addr32 is set.
	ParseModRM(c *CPU_X86, addr32 bool) (ModRM, error)

	FetchByte(c *CPU_X86) (uint8, error)
	FetchWord(c *CPU_X86) (uint16, error)
	FetchDword(c *CPU_X86) (uint32, error)

	// ReadOperand/WriteOperand access the register or memory location
	// described by m at width w.
	ReadOperand(c *CPU_X86, m *ModRM, w Width) (uint32, error)
	WriteOperand(c *CPU_X86, m *ModRM, w Width, v uint32) error

	Push(c *CPU_X86, w Width, v uint32) error
	Pop(c *CPU_X86, w Width) (uint32, error)

	// LoadSegment loads a segment register from a selector.
	LoadSegment(c *CPU_X86, seg int, selector uint16) error
}

// fetchImmediate reads an immediate sized to w from the instruction stream.
func (c *CPU_X86) fetchImmediate(w Width) (uint32, error) {
	switch w {
	case Width8:
		v, err := c.ops.FetchByte(c)
		return uint32(v), err
	case Width16:
		v, err := c.ops.FetchWord(c)
		return uint32(v), err
	}
	return c.ops.FetchDword(c)
}

// readRM reads the operand described by m
func (c *CPU_X86) readRM(m *ModRM, w Width) (uint32, error) {
	v, err := c.ops.ReadOperand(c, m, w)
	return v & w.Mask(), err
}

// writeRM writes v to the operand described by m
func (c *CPU_X86) writeRM(m *ModRM, w Width, v uint32) error {
	return c.ops.WriteOperand(c, m, w, v&w.Mask())
}
