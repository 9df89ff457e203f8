// cpu_x86.go - Intel 386 processor state for the opcode group core
//
// This holds everything a group handler is allowed to touch:
// - General purpose registers with 8/16/32-bit views
// - Segment registers with base, limit and default size attribute
// - EFLAGS
// - Per-instruction prefix state
// - The pending fault, if any
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

import (
	"log/slog"
)

// Register indices in ModR/M encoding order
const (
	RegEAX = 0
	RegECX = 1
	RegEDX = 2
	RegEBX = 3
	RegESP = 4
	RegEBP = 5
	RegESI = 6
	RegEDI = 7
)

// Segment register indices in prefix/encoding order
const (
	SegES = 0
	SegCS = 1
	SegSS = 2
	SegDS = 3
	SegFS = 4
	SegGS = 5

	segNone = -1
)

// Segment is the cached descriptor state of one segment register.
type Segment struct {
	Selector uint16
	Base     uint32
	Limit    uint32
	Size     bool // D/B bit: true = 32-bit default operand and address size
}

// Prefix holds the prefix bytes seen for the current instruction.
type Prefix struct {
	OpSize   bool // 0x66
	AddrSize bool // 0x67
	Lock     bool // 0xF0
	Seg      int  // segment override, -1 = none
}

// CPU_X86 is the processor-state context every group handler operates on.
type CPU_X86 struct {
	// General purpose registers, indexed by RegEAX..RegEDI
	Regs [8]uint32

	// Instruction pointer
	EIP uint32

	// Segment registers, indexed by SegES..SegGS
	Segs [6]Segment

	// Flags register
	Flags Flags

	// Current instruction state
	Prefix Prefix
	opcode byte
	start  uint32 // EIP of the first byte of the current instruction
	length int    // bytes fetched by the current Step, -1 outside Step

	fault *Fault

	ops Operands
	log *slog.Logger
}

// NewCPU_X86 creates a CPU whose operands are resolved against bus.
func NewCPU_X86(bus X86Bus) *CPU_X86 {
	c := &CPU_X86{
		ops: NewBusOperands(bus),
		log: slog.New(slog.DiscardHandler),
	}
	c.Reset()
	return c
}

// Reset puts the CPU in a flat 32-bit state: every segment has base 0,
// a 4GB limit and 32-bit default size.
func (c *CPU_X86) Reset() {
	for i := range c.Regs {
		c.Regs[i] = 0
	}
	c.EIP = 0
	for i := range c.Segs {
		c.Segs[i] = Segment{Limit: 0xFFFFFFFF, Size: true}
	}
	c.Flags = flagsReserved
	c.clearPrefix()
	c.length = -1
	c.fault = nil
}

// SetOperands replaces the operand access collaborator.
func (c *CPU_X86) SetOperands(ops Operands) {
	c.ops = ops
}

// SetLogger replaces the logger. A nil logger discards everything.
func (c *CPU_X86) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.log = l
}

// SetDefaultSize sets the code segment default size attribute (16 or 32 bits).
// The stack segment follows so push/pop match the code size.
func (c *CPU_X86) SetDefaultSize(bits int) {
	c.Segs[SegCS].Size = bits == 32
	c.Segs[SegSS].Size = bits == 32
}

func (c *CPU_X86) clearPrefix() {
	c.Prefix = Prefix{Seg: segNone}
}

// -----------------------------------------------------------------------------
// Register access by index
// -----------------------------------------------------------------------------

// Reg8 returns an 8-bit register by index (0-7: AL, CL, DL, BL, AH, CH, DH, BH)
func (c *CPU_X86) Reg8(idx byte) byte {
	idx &= 7
	if idx < 4 {
		return byte(c.Regs[idx])
	}
	return byte(c.Regs[idx-4] >> 8)
}

// SetReg8 sets an 8-bit register by index
func (c *CPU_X86) SetReg8(idx byte, v byte) {
	idx &= 7
	if idx < 4 {
		c.Regs[idx] = (c.Regs[idx] & 0xFFFFFF00) | uint32(v)
		return
	}
	c.Regs[idx-4] = (c.Regs[idx-4] & 0xFFFF00FF) | (uint32(v) << 8)
}

// Reg16 returns a 16-bit register by index (0-7: AX, CX, DX, BX, SP, BP, SI, DI)
func (c *CPU_X86) Reg16(idx byte) uint16 {
	return uint16(c.Regs[idx&7])
}

// SetReg16 sets a 16-bit register by index, preserving the upper half
func (c *CPU_X86) SetReg16(idx byte, v uint16) {
	c.Regs[idx&7] = (c.Regs[idx&7] & 0xFFFF0000) | uint32(v)
}

// Reg32 returns a 32-bit register by index
func (c *CPU_X86) Reg32(idx byte) uint32 {
	return c.Regs[idx&7]
}

// SetReg32 sets a 32-bit register by index
func (c *CPU_X86) SetReg32(idx byte, v uint32) {
	c.Regs[idx&7] = v
}

// Reg returns a register at the given width.
func (c *CPU_X86) Reg(idx byte, w Width) uint32 {
	switch w {
	case Width8:
		return uint32(c.Reg8(idx))
	case Width16:
		return uint32(c.Reg16(idx))
	}
	return c.Reg32(idx)
}

// SetReg writes a register at the given width.
func (c *CPU_X86) SetReg(idx byte, w Width, v uint32) {
	switch w {
	case Width8:
		c.SetReg8(idx, byte(v))
	case Width16:
		c.SetReg16(idx, uint16(v))
	default:
		c.SetReg32(idx, v)
	}
}

// CL returns the low byte of ECX, the count register of the shift group
func (c *CPU_X86) CL() byte {
	return byte(c.Regs[RegECX])
}

// ip returns EIP truncated to the code segment size.
func (c *CPU_X86) ip() uint32 {
	if c.Segs[SegCS].Size {
		return c.EIP
	}
	return c.EIP & 0xFFFF
}

// setIP loads EIP, truncating to 16 bits when the operand size is 16.
func (c *CPU_X86) setIP(v uint32, w Width) {
	c.EIP = v & w.Mask()
}

// -----------------------------------------------------------------------------
// Flag Helpers
// -----------------------------------------------------------------------------

// CF returns the Carry Flag
func (c *CPU_X86) CF() bool {
	return c.Flags.Has(FlagCF)
}

// ZF returns the Zero Flag
func (c *CPU_X86) ZF() bool {
	return c.Flags.Has(FlagZF)
}

// SF returns the Sign Flag
func (c *CPU_X86) SF() bool {
	return c.Flags.Has(FlagSF)
}

// OF returns the Overflow Flag
func (c *CPU_X86) OF() bool {
	return c.Flags.Has(FlagOF)
}

// PF returns the Parity Flag
func (c *CPU_X86) PF() bool {
	return c.Flags.Has(FlagPF)
}

// AF returns the Auxiliary Carry Flag
func (c *CPU_X86) AF() bool {
	return c.Flags.Has(FlagAF)
}
