// cpu_x86_grp.go - x86 Opcode Group Handlers
//
// Each handler runs the same pipeline:
//   resolve widths -> decode ModR/M -> fetch immediate/count -> read operand
//   -> flag engine -> write back -> commit flags
// and returns the first error from any step. Flags are committed only after
// the write back succeeds.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package soft386

// OpcodeHandler executes one opcode against the processor context.
type OpcodeHandler func(c *CPU_X86) error

// decodeGroup resolves the operand width and decodes the ModR/M byte
func decodeGroup(c *CPU_X86, byteOp bool) (Width, ModRM, error) {
	w, addr32 := c.resolveSizes(byteOp)
	m, err := c.ops.ParseModRM(c, addr32)
	return w, m, err
}

// checkLock raises #UD when a LOCK prefix precedes a register destination
// or an operation that cannot be locked.
func checkLock(c *CPU_X86, m *ModRM, lockable bool) error {
	if c.Prefix.Lock && (!lockable || !m.Memory) {
		return c.RaiseFault(ExceptionUD)
	}
	return nil
}

// =============================================================================
// Group 1 (ADD, OR, ADC, SBB, AND, SUB, XOR, CMP)
// =============================================================================

// OpcodeGroup8082 handles 80 and 82: Eb, Ib
func OpcodeGroup8082(c *CPU_X86) error {
	return arithGroup(c, true, false)
}

// OpcodeGroup81 handles 81: Ev, Iv
func OpcodeGroup81(c *CPU_X86) error {
	return arithGroup(c, false, false)
}

// OpcodeGroup83 handles 83: Ev, Ib sign-extended to the operand size
func OpcodeGroup83(c *CPU_X86) error {
	return arithGroup(c, false, true)
}

func arithGroup(c *CPU_X86, byteOp, imm8 bool) error {
	w, m, err := decodeGroup(c, byteOp)
	if err != nil {
		return err
	}
	if err := checkLock(c, &m, ArithOp(m.Register) != OpCMP); err != nil {
		return err
	}

	var imm uint32
	if imm8 {
		b, err := c.ops.FetchByte(c)
		if err != nil {
			return err
		}
		imm = Width8.signExtend(uint32(b)) & w.Mask()
	} else {
		if imm, err = c.fetchImmediate(w); err != nil {
			return err
		}
	}

	dst, err := c.readRM(&m, w)
	if err != nil {
		return err
	}

	result, writeBack, flags := ArithLogic(ArithOp(m.Register), w, dst, imm, c.Flags)
	if writeBack {
		if err := c.writeRM(&m, w, result); err != nil {
			return err
		}
	}
	c.Flags = flags
	return nil
}

// =============================================================================
// Group 1A (POP Ev)
// =============================================================================

// OpcodeGroup8F handles 8F /0: POP Ev
func OpcodeGroup8F(c *CPU_X86) error {
	w, m, err := decodeGroup(c, false)
	if err != nil {
		return err
	}
	if m.Register != 0 {
		return c.RaiseFault(ExceptionUD)
	}
	if err := checkLock(c, &m, false); err != nil {
		return err
	}

	v, err := c.ops.Pop(c, w)
	if err != nil {
		return err
	}
	// An ESP-based destination is addressed with ESP after the pop
	if m.ESPBased {
		m.Offset += w.Bytes()
	}
	return c.writeRM(&m, w, v)
}

// =============================================================================
// Group 2 (ROL, ROR, RCL, RCR, SHL, SHR, SAL, SAR)
// =============================================================================

type countSource func(c *CPU_X86) (uint8, error)

func countImm(c *CPU_X86) (uint8, error) { return c.ops.FetchByte(c) }
func countOne(c *CPU_X86) (uint8, error) { return 1, nil }
func countCL(c *CPU_X86) (uint8, error)  { return c.CL(), nil }

// OpcodeGroupC0 handles C0: Eb, Ib
func OpcodeGroupC0(c *CPU_X86) error { return shiftGroup(c, true, countImm) }

// OpcodeGroupC1 handles C1: Ev, Ib
func OpcodeGroupC1(c *CPU_X86) error { return shiftGroup(c, false, countImm) }

// OpcodeGroupD0 handles D0: Eb, 1
func OpcodeGroupD0(c *CPU_X86) error { return shiftGroup(c, true, countOne) }

// OpcodeGroupD1 handles D1: Ev, 1
func OpcodeGroupD1(c *CPU_X86) error { return shiftGroup(c, false, countOne) }

// OpcodeGroupD2 handles D2: Eb, CL
func OpcodeGroupD2(c *CPU_X86) error { return shiftGroup(c, true, countCL) }

// OpcodeGroupD3 handles D3: Ev, CL
func OpcodeGroupD3(c *CPU_X86) error { return shiftGroup(c, false, countCL) }

func shiftGroup(c *CPU_X86, byteOp bool, count countSource) error {
	w, m, err := decodeGroup(c, byteOp)
	if err != nil {
		return err
	}
	if err := checkLock(c, &m, false); err != nil {
		return err
	}
	n, err := count(c)
	if err != nil {
		return err
	}
	v, err := c.readRM(&m, w)
	if err != nil {
		return err
	}

	result, flags := RotateShift(ShiftKind(m.Register), w, v, n, c.Flags)
	if err := c.writeRM(&m, w, result); err != nil {
		return err
	}
	c.Flags = flags
	return nil
}

// =============================================================================
// Group 11 (MOV Eb/Ev, imm)
// =============================================================================

// OpcodeGroupC6 handles C6 /0: MOV Eb, Ib
func OpcodeGroupC6(c *CPU_X86) error { return movGroup(c, true) }

// OpcodeGroupC7 handles C7 /0: MOV Ev, Iv
func OpcodeGroupC7(c *CPU_X86) error { return movGroup(c, false) }

func movGroup(c *CPU_X86, byteOp bool) error {
	w, m, err := decodeGroup(c, byteOp)
	if err != nil {
		return err
	}
	if m.Register != 0 {
		return c.RaiseFault(ExceptionUD)
	}
	if err := checkLock(c, &m, false); err != nil {
		return err
	}
	imm, err := c.fetchImmediate(w)
	if err != nil {
		return err
	}
	return c.writeRM(&m, w, imm)
}

// =============================================================================
// Group 3 (TEST, NOT, NEG, MUL, IMUL, DIV, IDIV)
// =============================================================================

// OpcodeGroupF6 handles F6: Eb
func OpcodeGroupF6(c *CPU_X86) error { return unaryGroup(c, true) }

// OpcodeGroupF7 handles F7: Ev
func OpcodeGroupF7(c *CPU_X86) error { return unaryGroup(c, false) }

func unaryGroup(c *CPU_X86, byteOp bool) error {
	w, m, err := decodeGroup(c, byteOp)
	if err != nil {
		return err
	}

	op := UnaryOp(m.Register)
	if err := checkLock(c, &m, op == OpNOT || op == OpNEG); err != nil {
		return err
	}
	var imm uint32
	if op == OpTEST || op == OpTEST1 {
		if imm, err = c.fetchImmediate(w); err != nil {
			return err
		}
	}

	v, err := c.readRM(&m, w)
	if err != nil {
		return err
	}

	switch op {
	case OpTEST, OpTEST1:
		c.Flags = Test(w, v, imm, c.Flags)
	case OpNOT:
		return c.writeRM(&m, w, Not(w, v))
	case OpNEG:
		result, flags := Neg(w, v, c.Flags)
		if err := c.writeRM(&m, w, result); err != nil {
			return err
		}
		c.Flags = flags
	case OpMUL, OpIMUL:
		lo, hi, flags := Multiply(w, c.Reg(RegEAX, w), v, op == OpIMUL, c.Flags)
		c.setProduct(w, lo, hi)
		c.Flags = flags
	case OpDIV, OpIDIV:
		hi, lo := c.dividend(w)
		quot, rem, ok := Divide(w, hi, lo, v, op == OpIDIV)
		if !ok {
			return c.RaiseFault(ExceptionDE)
		}
		c.setQuotient(w, quot, rem)
	}
	return nil
}

// setProduct stores a MUL/IMUL result in AX, DX:AX or EDX:EAX
func (c *CPU_X86) setProduct(w Width, lo, hi uint32) {
	if w == Width8 {
		c.SetReg16(RegEAX, uint16(hi<<8|lo))
		return
	}
	c.SetReg(RegEAX, w, lo)
	c.SetReg(RegEDX, w, hi)
}

// dividend returns the DIV/IDIV dividend halves: AH:AL, DX:AX or EDX:EAX
func (c *CPU_X86) dividend(w Width) (hi, lo uint32) {
	if w == Width8 {
		return uint32(c.Reg8(4)), uint32(c.Reg8(0))
	}
	return c.Reg(RegEDX, w), c.Reg(RegEAX, w)
}

// setQuotient stores a DIV/IDIV result: AL/AH, AX/DX or EAX/EDX
func (c *CPU_X86) setQuotient(w Width, quot, rem uint32) {
	if w == Width8 {
		c.SetReg8(0, byte(quot))
		c.SetReg8(4, byte(rem))
		return
	}
	c.SetReg(RegEAX, w, quot)
	c.SetReg(RegEDX, w, rem)
}

// =============================================================================
// Group 4 (INC/DEC Eb)
// =============================================================================

// OpcodeGroupFE handles FE /0 and /1: INC Eb, DEC Eb
func OpcodeGroupFE(c *CPU_X86) error {
	w, m, err := decodeGroup(c, true)
	if err != nil {
		return err
	}
	if m.Register > 1 {
		return c.RaiseFault(ExceptionUD)
	}
	if err := checkLock(c, &m, true); err != nil {
		return err
	}
	return incDec(c, IncDecOp(m.Register), w, &m)
}

func incDec(c *CPU_X86, op IncDecOp, w Width, m *ModRM) error {
	v, err := c.readRM(m, w)
	if err != nil {
		return err
	}
	result, flags := IncDec(op, w, v, c.Flags)
	if err := c.writeRM(m, w, result); err != nil {
		return err
	}
	c.Flags = flags
	return nil
}

// =============================================================================
// Group 5 (INC, DEC, CALL, CALL far, JMP, JMP far, PUSH)
// =============================================================================

// OpcodeGroupFF handles FF: Ev
func OpcodeGroupFF(c *CPU_X86) error {
	w, m, err := decodeGroup(c, false)
	if err != nil {
		return err
	}
	if err := checkLock(c, &m, m.Register <= 1); err != nil {
		return err
	}

	switch m.Register {
	case 0, 1: // INC, DEC
		return incDec(c, IncDecOp(m.Register), w, &m)
	case 2: // CALL near
		target, err := c.readRM(&m, w)
		if err != nil {
			return err
		}
		if err := c.ops.Push(c, w, c.EIP&w.Mask()); err != nil {
			return err
		}
		c.setIP(target, w)
	case 3, 5: // CALL far, JMP far
		if !m.Memory {
			return c.RaiseFault(ExceptionUD)
		}
		return farTransfer(c, w, &m, m.Register == 3)
	case 4: // JMP near
		target, err := c.readRM(&m, w)
		if err != nil {
			return err
		}
		c.setIP(target, w)
	case 6: // PUSH
		v, err := c.readRM(&m, w)
		if err != nil {
			return err
		}
		return c.ops.Push(c, w, v)
	default:
		return c.RaiseFault(ExceptionUD)
	}
	return nil
}

// farTransfer loads a m16:16/m16:32 pointer and jumps through it, saving
// CS:EIP first when call is set.
func farTransfer(c *CPU_X86, w Width, m *ModRM, call bool) error {
	offset, err := c.readRM(m, w)
	if err != nil {
		return err
	}
	selm := *m
	selm.Offset += w.Bytes()
	selector, err := c.readRM(&selm, Width16)
	if err != nil {
		return err
	}

	if call {
		if err := c.ops.Push(c, w, uint32(c.Segs[SegCS].Selector)); err != nil {
			return err
		}
		if err := c.ops.Push(c, w, c.EIP&w.Mask()); err != nil {
			return err
		}
	}
	if err := c.ops.LoadSegment(c, SegCS, uint16(selector)); err != nil {
		return err
	}
	c.setIP(offset, w)
	return nil
}

// =============================================================================
// Dispatch table
// =============================================================================

var groupOps = [256]OpcodeHandler{
	0x80: OpcodeGroup8082,
	0x81: OpcodeGroup81,
	0x82: OpcodeGroup8082,
	0x83: OpcodeGroup83,
	0x8F: OpcodeGroup8F,
	0xC0: OpcodeGroupC0,
	0xC1: OpcodeGroupC1,
	0xC6: OpcodeGroupC6,
	0xC7: OpcodeGroupC7,
	0xD0: OpcodeGroupD0,
	0xD1: OpcodeGroupD1,
	0xD2: OpcodeGroupD2,
	0xD3: OpcodeGroupD3,
	0xF6: OpcodeGroupF6,
	0xF7: OpcodeGroupF7,
	0xFE: OpcodeGroupFE,
	0xFF: OpcodeGroupFF,
}

// GroupHandler returns the handler for a group opcode, or nil.
func GroupHandler(opcode byte) OpcodeHandler {
	return groupOps[opcode]
}
