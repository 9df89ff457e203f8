// cpu_x86_bus.go - Reference operand access over a byte bus
//
// busOperands implements Operands for a flat physical bus:
// - ModR/M and SIB decoding for 16-bit and 32-bit addressing
// - Segment base/limit translation with #GP/#SS on limit violations
// - Little-endian multi-byte access
// - Push/pop at the stack segment's default size
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

// X86Bus defines the interface for x86 memory operations
type X86Bus interface {
	Read(addr uint32) byte
	Write(addr uint32, value byte)
}

// FlatMemory is a RAM-only bus. Reads past the end return 0 and writes
// past the end are dropped.
type FlatMemory struct {
	memory []byte
}

// NewFlatMemory creates size bytes of zeroed memory
func NewFlatMemory(size int) *FlatMemory {
	return &FlatMemory{memory: make([]byte, size)}
}

func (m *FlatMemory) Read(addr uint32) byte {
	if addr < uint32(len(m.memory)) {
		return m.memory[addr]
	}
	return 0
}

func (m *FlatMemory) Write(addr uint32, value byte) {
	if addr < uint32(len(m.memory)) {
		m.memory[addr] = value
	}
}

// Load copies data to addr, clipping at the end of memory
func (m *FlatMemory) Load(addr uint32, data []byte) {
	if addr >= uint32(len(m.memory)) {
		return
	}
	copy(m.memory[addr:], data)
}

// Size returns the memory size in bytes
func (m *FlatMemory) Size() int {
	return len(m.memory)
}

// Clear zeroes memory
func (m *FlatMemory) Clear() {
	clear(m.memory)
}

// busOperands resolves operands against an X86Bus.
type busOperands struct {
	bus X86Bus
}

// NewBusOperands returns the reference Operands implementation for bus.
func NewBusOperands(bus X86Bus) Operands {
	return &busOperands{bus: bus}
}

// -----------------------------------------------------------------------------
// Segmented memory access
// -----------------------------------------------------------------------------

// checkLimit raises #SS for the stack segment and #GP otherwise when
// [offset, offset+n) falls outside the segment limit.
func (b *busOperands) checkLimit(c *CPU_X86, seg int, offset uint32, n uint32) error {
	if uint64(offset)+uint64(n)-1 <= uint64(c.Segs[seg].Limit) {
		return nil
	}
	if seg == SegSS {
		return c.RaiseFault(ExceptionSS)
	}
	return c.RaiseFault(ExceptionGP)
}

func (b *busOperands) readMem(c *CPU_X86, seg int, offset uint32, w Width) (uint32, error) {
	if err := b.checkLimit(c, seg, offset, w.Bytes()); err != nil {
		return 0, err
	}
	base := c.Segs[seg].Base + offset
	var v uint32
	for i := uint32(0); i < w.Bytes(); i++ {
		v |= uint32(b.bus.Read(base+i)) << (8 * i)
	}
	return v, nil
}

func (b *busOperands) writeMem(c *CPU_X86, seg int, offset uint32, w Width, v uint32) error {
	if err := b.checkLimit(c, seg, offset, w.Bytes()); err != nil {
		return err
	}
	base := c.Segs[seg].Base + offset
	for i := uint32(0); i < w.Bytes(); i++ {
		b.bus.Write(base+i, byte(v>>(8*i)))
	}
	return nil
}

// -----------------------------------------------------------------------------
// Instruction stream
// -----------------------------------------------------------------------------

func (b *busOperands) fetch(c *CPU_X86, w Width) (uint32, error) {
	if c.length >= 0 && c.length+int(w.Bytes()) > maxInstructionLength {
		return 0, c.RaiseFault(ExceptionGP)
	}
	v, err := b.readMem(c, SegCS, c.ip(), w)
	if err != nil {
		return 0, err
	}
	if c.length >= 0 {
		c.length += int(w.Bytes())
	}
	c.EIP += w.Bytes()
	if !c.Segs[SegCS].Size {
		c.EIP &= 0xFFFF
	}
	return v, nil
}

func (b *busOperands) FetchByte(c *CPU_X86) (uint8, error) {
	v, err := b.fetch(c, Width8)
	return uint8(v), err
}

func (b *busOperands) FetchWord(c *CPU_X86) (uint16, error) {
	v, err := b.fetch(c, Width16)
	return uint16(v), err
}

func (b *busOperands) FetchDword(c *CPU_X86) (uint32, error) {
	return b.fetch(c, Width32)
}

// -----------------------------------------------------------------------------
// ModR/M and SIB Decoding
// -----------------------------------------------------------------------------

func (b *busOperands) ParseModRM(c *CPU_X86, addr32 bool) (ModRM, error) {
	modrm, err := b.FetchByte(c)
	if err != nil {
		return ModRM{}, err
	}
	m := ModRM{
		Mod:      modrm >> 6,
		Register: (modrm >> 3) & 7,
		RM:       modrm & 7,
	}
	if m.Mod == 3 {
		return m, nil
	}
	m.Memory = true
	if addr32 {
		err = b.effectiveAddress32(c, &m)
	} else {
		err = b.effectiveAddress16(c, &m)
	}
	if err != nil {
		return m, err
	}
	if c.Prefix.Seg != segNone {
		m.Segment = c.Prefix.Seg
	}
	return m, nil
}

// effectiveAddress16 calculates the offset for 16-bit addressing mode
func (b *busOperands) effectiveAddress16(c *CPU_X86, m *ModRM) error {
	var base uint16
	m.Segment = SegDS

	bx, bp := c.Reg16(RegEBX), c.Reg16(RegEBP)
	si, di := c.Reg16(RegESI), c.Reg16(RegEDI)

	switch m.RM {
	case 0: // [BX+SI]
		base = bx + si
	case 1: // [BX+DI]
		base = bx + di
	case 2: // [BP+SI]
		base = bp + si
		m.Segment = SegSS
	case 3: // [BP+DI]
		base = bp + di
		m.Segment = SegSS
	case 4: // [SI]
		base = si
	case 5: // [DI]
		base = di
	case 6: // [BP] or [disp16]
		if m.Mod == 0 {
			disp, err := b.FetchWord(c)
			if err != nil {
				return err
			}
			base = disp
		} else {
			base = bp
			m.Segment = SegSS
		}
	case 7: // [BX]
		base = bx
	}

	switch m.Mod {
	case 1: // 8-bit displacement
		disp, err := b.FetchByte(c)
		if err != nil {
			return err
		}
		base += uint16(int16(int8(disp)))
	case 2: // 16-bit displacement
		disp, err := b.FetchWord(c)
		if err != nil {
			return err
		}
		base += disp
	}

	m.Offset = uint32(base)
	return nil
}

// effectiveAddress32 calculates the offset for 32-bit addressing mode
func (b *busOperands) effectiveAddress32(c *CPU_X86, m *ModRM) error {
	var addr uint32
	m.Segment = SegDS

	switch {
	case m.RM == 4:
		// SIB byte follows
		sib, err := b.FetchByte(c)
		if err != nil {
			return err
		}
		scale := sib >> 6
		index := (sib >> 3) & 7
		base := sib & 7

		if base == 5 && m.Mod == 0 {
			disp, err := b.FetchDword(c)
			if err != nil {
				return err
			}
			addr = disp
		} else {
			addr = c.Reg32(base)
			if base == RegESP || base == RegEBP {
				m.Segment = SegSS
			}
			m.ESPBased = base == RegESP
		}

		// index 4 = no index
		if index != 4 {
			addr += c.Reg32(index) << scale
		}
	case m.RM == 5 && m.Mod == 0:
		disp, err := b.FetchDword(c)
		if err != nil {
			return err
		}
		addr = disp
	default:
		addr = c.Reg32(m.RM)
		if m.RM == RegEBP {
			m.Segment = SegSS
		}
	}

	switch m.Mod {
	case 1: // 8-bit displacement (sign-extended)
		disp, err := b.FetchByte(c)
		if err != nil {
			return err
		}
		addr += uint32(int32(int8(disp)))
	case 2: // 32-bit displacement
		disp, err := b.FetchDword(c)
		if err != nil {
			return err
		}
		addr += disp
	}

	m.Offset = addr
	return nil
}

// -----------------------------------------------------------------------------
// Operand access
// -----------------------------------------------------------------------------

func (b *busOperands) ReadOperand(c *CPU_X86, m *ModRM, w Width) (uint32, error) {
	if !m.Memory {
		return c.Reg(m.RM, w), nil
	}
	return b.readMem(c, m.Segment, m.Offset, w)
}

func (b *busOperands) WriteOperand(c *CPU_X86, m *ModRM, w Width, v uint32) error {
	if !m.Memory {
		c.SetReg(m.RM, w, v)
		return nil
	}
	return b.writeMem(c, m.Segment, m.Offset, w, v)
}

// -----------------------------------------------------------------------------
// Stack Operations
// -----------------------------------------------------------------------------

// stackPointer returns ESP or SP depending on the stack segment size
func (b *busOperands) stackPointer(c *CPU_X86) uint32 {
	if c.Segs[SegSS].Size {
		return c.Regs[RegESP]
	}
	return uint32(c.Reg16(RegESP))
}

func (b *busOperands) setStackPointer(c *CPU_X86, v uint32) {
	if c.Segs[SegSS].Size {
		c.Regs[RegESP] = v
	} else {
		c.SetReg16(RegESP, uint16(v))
	}
}

func (b *busOperands) Push(c *CPU_X86, w Width, v uint32) error {
	sp := b.stackPointer(c) - w.Bytes()
	if !c.Segs[SegSS].Size {
		sp &= 0xFFFF
	}
	if err := b.writeMem(c, SegSS, sp, w, v); err != nil {
		return err
	}
	b.setStackPointer(c, sp)
	return nil
}

func (b *busOperands) Pop(c *CPU_X86, w Width) (uint32, error) {
	sp := b.stackPointer(c)
	v, err := b.readMem(c, SegSS, sp, w)
	if err != nil {
		return 0, err
	}
	b.setStackPointer(c, sp+w.Bytes())
	return v, nil
}

// LoadSegment loads a selector in the flat model: the base and limit of
// the segment are left as they are.
func (b *busOperands) LoadSegment(c *CPU_X86, seg int, selector uint16) error {
	if seg < SegES || seg > SegGS {
		return c.RaiseFault(ExceptionUD)
	}
	if seg == SegCS && selector&^3 == 0 {
		return c.RaiseFault(ExceptionGP)
	}
	c.Segs[seg].Selector = selector
	return nil
}
